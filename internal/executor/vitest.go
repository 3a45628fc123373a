package executor

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lucasnoah/deliverynote/internal/results"
)

// VitestParser parses vitest/jest JSON reporter output. Each assertion is
// one record; its id is the first TC<digits> token in its full name or in
// one of its ancestor describe titles.
type VitestParser struct{}

type vitestOutput struct {
	TestResults []vitestSuiteResult `json:"testResults"`
}

type vitestSuiteResult struct {
	Name             string                  `json:"name"`
	AssertionResults []vitestAssertionResult `json:"assertionResults"`
}

type vitestAssertionResult struct {
	AncestorTitles []string `json:"ancestorTitles"`
	FullName       string   `json:"fullName"`
	Title          string   `json:"title"`
	Status         string   `json:"status"`
}

func (p *VitestParser) Name() string { return "vitest" }

func (p *VitestParser) Parse(r io.Reader, acc *Accumulator) (Summary, error) {
	var raw vitestOutput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Summary{Malformed: 1}, fmt.Errorf("parse vitest json: %w", err)
	}

	for _, suite := range raw.TestResults {
		for _, a := range suite.AssertionResults {
			name := a.FullName
			if name == "" {
				name = a.Title
			}
			acc.Add(results.Record{
				TestCaseID: vitestID(a),
				TestName:   name,
				Package:    suite.Name,
				Outcome:    vitestOutcome(a.Status),
			})
		}
	}
	return Summary{Observed: acc.Len(), Attributed: acc.Attributed()}, nil
}

func vitestID(a vitestAssertionResult) string {
	if id := nameID(a.FullName); id != "" {
		return id
	}
	if id := nameID(a.Title); id != "" {
		return id
	}
	for _, t := range a.AncestorTitles {
		if id := nameID(t); id != "" {
			return id
		}
	}
	return ""
}

func vitestOutcome(status string) string {
	switch status {
	case "passed":
		return results.OutcomeSuccess
	case "failed":
		return results.OutcomeFailure
	case "pending", "skipped", "todo", "disabled":
		return results.OutcomeSkipped
	default:
		return results.OutcomeError
	}
}
