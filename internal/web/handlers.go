package web

import (
	"net/http"

	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/render"
)

func (s *Server) meta(eventsURL string) render.Meta {
	return render.Meta{Title: s.opts.Title, Generated: s.now(), EventsURL: eventsURL}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.opts.Report()
	if err != nil {
		s.log.Warn("report unavailable", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := render.HTML(rep, s.meta("/events"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	rep, err := s.opts.Report()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := render.JSON(rep, s.meta(""))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	rep, err := s.opts.Report()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := render.Document(rep, s.meta(""))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="delivery_note.pdf"`)
	w.Write(data)
}

type runsData struct {
	Title  string
	Runs   []history.Run
	Writes []history.StoreWrite
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		http.NotFound(w, r)
		return
	}
	runs, err := s.opts.History.ListRuns(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writes, err := s.opts.History.ListStoreWrites(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.runsTmpl.Execute(w, runsData{Title: "Reconciliation history", Runs: runs, Writes: writes}); err != nil {
		s.log.Warn("render runs page", "error", err)
	}
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request, id string) {
	if s.opts.History == nil {
		http.NotFound(w, r)
		return
	}
	run, err := s.opts.History.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}
	data, err := render.HTML(run.Report(), render.Meta{Title: s.opts.Title, Generated: run.CreatedAt, RunID: run.ID})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}
