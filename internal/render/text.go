// Package render turns a reconciliation report into delivery artifacts.
// Every renderer is a pure function of the report (plus Meta where a title
// or timestamp is shown); none of them recompute categories or percentages.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

// DefaultTitle is the document title used when Meta.Title is empty.
const DefaultTitle = "Test delivery note"

// TimeLayout is how the execution timestamp is printed.
const TimeLayout = "2006-01-02 15:04:05 UTC"

// Meta carries the inputs that are not part of the reconciliation itself.
type Meta struct {
	Title     string
	Generated time.Time
	RunID     string

	// EventsURL, when set, makes the HTML page reload on "changed" events
	// from that server-sent events endpoint.
	EventsURL string
}

func (m Meta) title() string {
	if m.Title == "" {
		return DefaultTitle
	}
	return m.Title
}

func (m Meta) timestamp() string {
	return m.Generated.UTC().Format(TimeLayout)
}

// summaryLine is one of the six aggregate lines shown under every report.
type summaryLine struct {
	Icon     string
	Label    string // text report label, after the icon
	DocLabel string // plain label for documents that cannot show icons
	Count    int
	Pct      float64
	HasPct   bool
}

func (l summaryLine) text() string {
	if !l.HasPct {
		return fmt.Sprintf("%s%s: %d", l.Icon, l.Label, l.Count)
	}
	return fmt.Sprintf("%s%s: %d (%s%%)", l.Icon, l.Label, l.Count, reconcile.FormatPct(l.Pct))
}

func (l summaryLine) doc() string {
	if !l.HasPct {
		return fmt.Sprintf("%s: %d", l.DocLabel, l.Count)
	}
	return fmt.Sprintf("%s: %d (%s%%)", l.DocLabel, l.Count, reconcile.FormatPct(l.Pct))
}

func summary(s reconcile.Stats) []summaryLine {
	return []summaryLine{
		{Label: "Number of tests", DocLabel: "Number of tests", Count: s.Total},
		{Icon: reconcile.IconPassed, Label: "Passed tests", DocLabel: "Passed", Count: s.Passed, Pct: s.PassedPct(), HasPct: true},
		{Icon: reconcile.IconFailed, Label: "Failed tests", DocLabel: "Failed", Count: s.Failed, Pct: s.FailedPct(), HasPct: true},
		{Icon: reconcile.IconNotFound, Label: "Not found tests", DocLabel: "Not found", Count: s.NotFound, Pct: s.NotFoundPct(), HasPct: true},
		{Icon: reconcile.IconManual, Label: "Test to pass manually", DocLabel: "Manual tests", Count: s.Manual, Pct: s.ManualPct(), HasPct: true},
		{
			Icon:     reconcile.IconPassed,
			Label:    "Passed + " + reconcile.IconManual + "Manual",
			DocLabel: "Passed + manual",
			Count:    s.PassedOrManual(),
			Pct:      s.PassedOrManualPct(),
			HasPct:   true,
		},
	}
}

// Text renders the plain text report: one "id | type | status" line per
// row, a blank line, then the six summary lines.
func Text(rep reconcile.Report) string {
	var b strings.Builder
	for _, r := range rep.Rows {
		fmt.Fprintf(&b, "%s | %s | %s\n", r.ID, r.DisplayKind, r.Status())
	}
	b.WriteString("\n")
	for _, l := range summary(rep.Stats) {
		b.WriteString(l.text())
		b.WriteString("\n")
	}
	return b.String()
}
