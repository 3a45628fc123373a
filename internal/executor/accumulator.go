// Package executor runs batch test commands and turns their machine-readable
// output into result records.
//
// A batch run collects every outcome it observes into an Accumulator, which
// the caller hands to results.Store.WriteReplace once the run is over.
package executor

import (
	"regexp"

	"github.com/lucasnoah/deliverynote/internal/results"
)

// Accumulator collects the records observed during one batch run.
type Accumulator struct {
	records []results.Record
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add records one observed outcome.
func (a *Accumulator) Add(rec results.Record) {
	a.records = append(a.records, rec)
}

// Records returns the observed records in observation order.
func (a *Accumulator) Records() []results.Record {
	return append([]results.Record(nil), a.records...)
}

// Len returns the number of records observed.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Attributed returns how many records carry a test case id.
func (a *Accumulator) Attributed() int {
	n := 0
	for _, r := range a.records {
		if r.TestCaseID != "" {
			n++
		}
	}
	return n
}

// Counts returns the number of records per outcome.
func (a *Accumulator) Counts() map[string]int {
	m := make(map[string]int)
	for _, r := range a.records {
		m[r.Outcome]++
	}
	return m
}

var (
	markerRe = regexp.MustCompile(`test_case_id\s*[:=]\s*([^\s,;]+)`)
	nameIDRe = regexp.MustCompile(`TC\d+`)
)

// markerID extracts an id from an output line such as "test_case_id: TC022".
func markerID(line string) string {
	if m := markerRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// nameID extracts an id embedded in a test name, e.g. TestTC016_CRUD.
func nameID(name string) string {
	return nameIDRe.FindString(name)
}
