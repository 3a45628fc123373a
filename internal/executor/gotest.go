package executor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lucasnoah/deliverynote/internal/results"
)

// GoTestParser reads `go test -json` output.
//
// A test is attributed to a case by a "test_case_id: TC022" line in its
// output (t.Log), or else by a TC<digits> token in its name. Subtests
// without their own id inherit their parent's. Tests still running when
// their package fails (panic, timeout) are recorded as errors.
type GoTestParser struct{}

type goTestEvent struct {
	Action  string `json:"Action"`
	Package string `json:"Package"`
	Test    string `json:"Test"`
	Output  string `json:"Output"`
}

type goTestState struct {
	pkg    string
	name   string
	marker string
	done   bool
}

type goTestRun struct {
	acc   *Accumulator
	tests map[string]*goTestState
	order []string
}

func (p *GoTestParser) Name() string { return "gotest" }

// Parse consumes the NDJSON stream. Malformed lines are counted and skipped.
func (p *GoTestParser) Parse(r io.Reader, acc *Accumulator) (Summary, error) {
	run := &goTestRun{acc: acc, tests: make(map[string]*goTestState)}
	var sum Summary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev goTestEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			sum.Malformed++
			continue
		}
		run.process(ev)
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("scanning test output: %w", err)
	}

	sum.Observed = acc.Len()
	sum.Attributed = acc.Attributed()
	return sum, nil
}

func testKey(pkg, test string) string {
	return pkg + "\x00" + test
}

func (g *goTestRun) state(pkg, test string) *goTestState {
	key := testKey(pkg, test)
	st, ok := g.tests[key]
	if !ok {
		st = &goTestState{pkg: pkg, name: test}
		g.tests[key] = st
		g.order = append(g.order, key)
	}
	return st
}

func (g *goTestRun) process(ev goTestEvent) {
	if ev.Test == "" {
		if ev.Action == "fail" {
			g.failPackage(ev.Package)
		}
		return
	}

	st := g.state(ev.Package, ev.Test)
	switch ev.Action {
	case "output":
		if st.marker == "" {
			st.marker = markerID(ev.Output)
		}
	case "pass":
		g.finish(st, results.OutcomeSuccess)
	case "fail":
		g.finish(st, results.OutcomeFailure)
	case "skip":
		g.finish(st, results.OutcomeSkipped)
	}
}

func (g *goTestRun) finish(st *goTestState, outcome string) {
	if st.done {
		return
	}
	st.done = true
	g.acc.Add(results.Record{
		TestCaseID: g.caseID(st),
		TestName:   st.name,
		Package:    st.pkg,
		Outcome:    outcome,
	})
}

// failPackage marks every unfinished test of pkg as an error.
func (g *goTestRun) failPackage(pkg string) {
	for _, key := range g.order {
		st := g.tests[key]
		if st.pkg == pkg && !st.done {
			g.finish(st, results.OutcomeError)
		}
	}
}

func (g *goTestRun) caseID(st *goTestState) string {
	if st.marker != "" {
		return st.marker
	}
	if id := nameID(st.name); id != "" {
		return id
	}
	if i := strings.LastIndex(st.name, "/"); i > 0 {
		if parent, ok := g.tests[testKey(st.pkg, st.name[:i])]; ok {
			return g.caseID(parent)
		}
	}
	return ""
}
