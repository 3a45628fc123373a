package render

import (
	"encoding/json"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

type jsonPercentages struct {
	Passed         float64 `json:"passed"`
	Failed         float64 `json:"failed"`
	NotFound       float64 `json:"not_found"`
	Manual         float64 `json:"manual"`
	PassedOrManual float64 `json:"passed_or_manual"`
}

type jsonReport struct {
	Title          string          `json:"title"`
	Generated      string          `json:"generated"`
	RunID          string          `json:"run_id,omitempty"`
	Rows           []reconcile.Row `json:"rows"`
	Stats          reconcile.Stats `json:"stats"`
	PassedOrManual int             `json:"passed_or_manual"`
	Percentages    jsonPercentages `json:"percentages"`
}

// JSON renders the report as indented JSON for automation.
func JSON(rep reconcile.Report, meta Meta) ([]byte, error) {
	rows := rep.Rows
	if rows == nil {
		rows = []reconcile.Row{}
	}
	s := rep.Stats
	out := jsonReport{
		Title:          meta.title(),
		Generated:      meta.timestamp(),
		RunID:          meta.RunID,
		Rows:           rows,
		Stats:          s,
		PassedOrManual: s.PassedOrManual(),
		Percentages: jsonPercentages{
			Passed:         s.PassedPct(),
			Failed:         s.FailedPct(),
			NotFound:       s.NotFoundPct(),
			Manual:         s.ManualPct(),
			PassedOrManual: s.PassedOrManualPct(),
		},
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
