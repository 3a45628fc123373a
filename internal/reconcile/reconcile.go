// Package reconcile joins the manifest against the per-kind result stores.
package reconcile

import (
	"log/slog"

	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/manifest"
	"github.com/lucasnoah/deliverynote/internal/results"
)

// Category is the reconciled status of a test case.
type Category string

const (
	Passed   Category = "passed"
	Failed   Category = "failed"
	NotFound Category = "notFound"
	Manual   Category = "manual"
)

// Status icons, also used by the summary lines.
const (
	IconPassed   = "✅"
	IconFailed   = "❌"
	IconOther    = "❔"
	IconNotFound = "🕳"
	IconManual   = "🫱"
)

// Row is one reconciled test case.
type Row struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	DisplayKind string   `json:"display_kind"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	StatusText  string   `json:"status"`
	// Outcome is the raw stored outcome; empty for manual and not-found rows.
	Outcome string `json:"outcome,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Status returns the icon and label as shown in the text report.
func (r Row) Status() string {
	return r.Icon + r.StatusText
}

// Report is the full output of a reconciliation.
type Report struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`
}

// Reconcile produces one row per test case, in manifest order, plus counts.
// Each automated kind's store is read at most once. A store that cannot be
// read is logged and treated as empty; Reconcile itself never fails.
func Reconcile(cases []manifest.TestCase, src results.Source) Report {
	stores := make(map[kind.Kind]map[string]string)
	lookup := func(k kind.Kind, id string) (string, bool) {
		m, ok := stores[k]
		if !ok {
			var err error
			m, err = src.ReadAll(k)
			if err != nil {
				slog.Warn("reading result store failed, treating as empty", "kind", k.String(), "error", err)
				m = map[string]string{}
			}
			stores[k] = m
		}
		outcome, found := m[id]
		return outcome, found
	}

	rep := Report{Rows: make([]Row, 0, len(cases))}
	rep.Stats.Total = len(cases)

	for _, tc := range cases {
		k := kind.Classify(tc.Label)
		row := Row{
			ID:          tc.ID,
			Kind:        k.String(),
			DisplayKind: kind.Display(k),
			Title:       tc.Title,
		}

		if k == kind.Manual {
			row.Category, row.Icon, row.StatusText = Manual, IconManual, "Manual test needed"
		} else if outcome, ok := lookup(k, tc.ID); !ok {
			row.Category, row.Icon, row.StatusText = NotFound, IconNotFound, "Not found"
		} else {
			row.Outcome = outcome
			row.Category, row.Icon, row.StatusText = classifyOutcome(outcome)
		}

		rep.Stats.add(row.Category)
		rep.Rows = append(rep.Rows, row)
	}
	return rep
}

// classifyOutcome maps a stored outcome to its category. Anything but
// success is a failure; unrecognized values keep their raw text.
func classifyOutcome(outcome string) (Category, string, string) {
	switch outcome {
	case results.OutcomeSuccess:
		return Passed, IconPassed, "Passed"
	case results.OutcomeFailure:
		return Failed, IconFailed, "Failed"
	case "":
		return Failed, IconOther, "Unknown"
	default:
		return Failed, IconOther, outcome
	}
}
