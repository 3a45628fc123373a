// Package web serves a read-only local UI: the live delivery note and the
// reconciliation history.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"relTime": relTime,
	"pct":     func(part, total int) string { return reconcile.FormatPct(reconcile.Percent(part, total)) },
}

// ReportFunc produces the current reconciliation.
type ReportFunc func() (reconcile.Report, error)

// Options configures a Server.
type Options struct {
	Addr   string
	Title  string
	Report ReportFunc
	// History is optional; without it /runs returns 404.
	History *history.DB
	// WatchPaths are polled for changes to drive /events.
	WatchPaths   []string
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Server is the read-only web UI server.
type Server struct {
	opts     Options
	log      *slog.Logger
	runsTmpl *template.Template
	now      func() time.Time
}

// NewServer creates a Server with parsed templates.
func NewServer(opts Options) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts:     opts,
		log:      log,
		runsTmpl: template.Must(template.New("runs.html").Funcs(funcMap).ParseFS(templateFS, "templates/runs.html")),
		now:      time.Now,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.handleReport(w, r)
	})
	mux.HandleFunc("/report.json", s.handleReportJSON)
	mux.HandleFunc("/report.pdf", s.handleReportPDF)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.routeRun)
	return mux
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("delivery note UI", "url", "http://"+s.opts.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) routeRun(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	s.handleRunDetail(w, r, id)
}

// relTime renders a timestamp as a short relative age.
func relTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
