package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/lucasnoah/deliverynote/internal/config"
	"github.com/lucasnoah/deliverynote/internal/logging"
	"github.com/lucasnoah/deliverynote/internal/manifest"
	"github.com/lucasnoah/deliverynote/internal/reconcile"
	"github.com/lucasnoah/deliverynote/internal/render"
	"github.com/lucasnoah/deliverynote/internal/results"
)

type reportOptions struct {
	manifest string
	pdf      string
	html     string
	json     string
	title    string
	noPDF    bool
	watch    bool
}

var reportOpts reportOptions

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reconcile results and render the delivery note",
	Long: `Read the test case list, look up every automated case in the result store
of its kind and render the delivery note: a text report on stdout and a PDF
document (delivery_note.pdf by default).

A missing test case list is fatal and nothing is written. Missing or
unreadable result stores are treated as empty, so their cases show up as
"Not found".

With --watch the report is rendered again whenever the test case list or a
result store changes.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := reportOpts.resolve(cfg)

		if err := generateReport(cmd, cfg, opts); err != nil {
			return err
		}
		if !opts.watch {
			return nil
		}
		return watchReport(cmd, cfg, opts)
	},
}

// resolve fills unset flags from the config.
func (o reportOptions) resolve(cfg *config.Config) reportOptions {
	if o.manifest == "" {
		o.manifest = cfg.Manifest
	}
	if o.pdf == "" {
		o.pdf = cfg.Output.PDF
	}
	if o.html == "" {
		o.html = cfg.Output.HTML
	}
	if o.json == "" {
		o.json = cfg.Output.JSON
	}
	if o.title == "" {
		o.title = cfg.Output.Title
	}
	return o
}

// buildReport loads the manifest and reconciles it against store.
func buildReport(path string, store results.Source) (reconcile.Report, error) {
	cases, err := manifest.Load(path)
	if err != nil {
		return reconcile.Report{}, err
	}
	if problems := manifest.Validate(cases); len(problems) > 0 {
		for _, p := range problems {
			slog.Warn("test case list problem", "entry", p.String())
		}
	}
	return reconcile.Reconcile(cases, store), nil
}

func generateReport(cmd *cobra.Command, cfg *config.Config, opts reportOptions) error {
	store := openStore(cfg)
	rep, err := buildReport(opts.manifest, store)
	if err != nil {
		return err
	}

	meta := render.Meta{Title: opts.title, Generated: now()}
	if db, err := openHistory(cfg); err != nil {
		slog.Warn("history unavailable", "error", err)
	} else if db != nil {
		run, err := db.SaveRun(opts.manifest, rep)
		db.Close()
		if err != nil {
			slog.Warn("history write failed", "error", err)
		} else {
			meta.RunID = run.ID
		}
	}

	printText(cmd.OutOrStdout(), rep)

	if !opts.noPDF && opts.pdf != "" {
		data, err := render.Document(rep, meta)
		if err != nil {
			return err
		}
		if err := writeOutput(opts.pdf, data); err != nil {
			return err
		}
		slog.Info("delivery note written", "path", opts.pdf)
	}
	if opts.html != "" {
		data, err := render.HTML(rep, meta)
		if err != nil {
			return err
		}
		if err := writeOutput(opts.html, data); err != nil {
			return err
		}
	}
	if opts.json != "" {
		data, err := render.JSON(rep, meta)
		if err != nil {
			return err
		}
		if err := writeOutput(opts.json, data); err != nil {
			return err
		}
	}
	return nil
}

// printText writes the styled report on a color terminal, plain text otherwise.
func printText(w io.Writer, rep reconcile.Report) {
	if logging.IsTerminal(w) && os.Getenv("NO_COLOR") == "" {
		fmt.Fprint(w, render.Styled(rep, render.DefaultTheme()))
		return
	}
	fmt.Fprint(w, render.Text(rep))
}

const watchDebounce = 300 * time.Millisecond

// watchReport re-renders the report when the manifest or a store file
// changes. Directories are watched since stores are replaced by rename.
func watchReport(cmd *cobra.Command, cfg *config.Config, opts reportOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	targets := watchTargets(opts.manifest, storePaths(openStore(cfg)))
	dirs := make(map[string]bool)
	for p := range targets {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			slog.Warn("cannot watch directory", "dir", d, "error", err)
		}
	}
	slog.Info("watching for changes", "files", len(targets))

	return runWatchLoop(cmd.Context(), watcher.Events, watcher.Errors, targets, func() {
		fmt.Fprintln(cmd.OutOrStdout())
		if err := generateReport(cmd, cfg, opts); err != nil {
			slog.Error("report failed", "error", err)
		}
	})
}

func watchTargets(manifestPath string, stores []string) map[string]bool {
	targets := make(map[string]bool)
	for _, p := range append([]string{manifestPath}, stores...) {
		if abs, err := filepath.Abs(p); err == nil {
			targets[abs] = true
		}
	}
	return targets
}

// runWatchLoop calls fn once per burst of events on targets until ctx ends.
func runWatchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, targets map[string]bool, fn func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !targets[abs] {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			fn()
		}
	}
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOpts.manifest, "manifest", "m", "", "test case list (default from config: test_list.yaml)")
	f.StringVar(&reportOpts.pdf, "pdf", "", "PDF output path (default from config: delivery_note.pdf)")
	f.StringVar(&reportOpts.html, "html", "", "also write an HTML report to this path")
	f.StringVar(&reportOpts.json, "json", "", "also write a JSON report to this path")
	f.StringVar(&reportOpts.title, "title", "", "document title")
	f.BoolVar(&reportOpts.noPDF, "no-pdf", false, "print the text report only")
	f.BoolVarP(&reportOpts.watch, "watch", "w", false, "re-render when the test case list or a store changes")
}
