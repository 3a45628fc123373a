package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"catClass": func(c reconcile.Category) string {
		return "cat-" + string(c)
	},
}

var reportTmpl = template.Must(template.New("report.html").Funcs(funcMap).ParseFS(templateFS, "templates/report.html"))

type htmlData struct {
	Title     string
	Generated string
	RunID     string
	EventsURL string
	Rows      []reconcile.Row
	Summary   []string
}

// HTML renders the delivery note as a standalone HTML page.
func HTML(rep reconcile.Report, meta Meta) ([]byte, error) {
	data := htmlData{
		Title:     meta.title(),
		Generated: meta.timestamp(),
		RunID:     meta.RunID,
		EventsURL: meta.EventsURL,
		Rows:      rep.Rows,
	}
	for _, l := range summary(rep.Stats) {
		data.Summary = append(data.Summary, l.text())
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
