// Package kind classifies manifest test cases by how they are executed.
package kind

import (
	"fmt"
	"strings"
)

// Kind is the way a test case is carried out.
type Kind int

const (
	AutoUnitTest Kind = iota
	Manual
	AutoSelenium
	AutoAxe
)

// String returns the internal name of the kind.
func (k Kind) String() string {
	switch k {
	case Manual:
		return "manual"
	case AutoSelenium:
		return "auto-selenium"
	case AutoAxe:
		return "auto-axe"
	default:
		return "auto-unittest"
	}
}

// Automated reports whether results for k are kept in a result store.
func (k Kind) Automated() bool {
	return k != Manual
}

// rule is one step of the classification chain.
type rule struct {
	match func(label string) bool
	kind  Kind
}

func containsAny(subs ...string) func(string) bool {
	return func(label string) bool {
		for _, s := range subs {
			if strings.Contains(label, s) {
				return true
			}
		}
		return false
	}
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{match: containsAny("manual", "manuel"), kind: Manual},
	{match: containsAny("selenium"), kind: AutoSelenium},
	{match: containsAny("axe", "access"), kind: AutoAxe},
}

// Classify maps a free-text manifest label to a Kind. It never fails:
// empty or unrecognized labels fall through to AutoUnitTest.
func Classify(label string) Kind {
	l := strings.ToLower(label)
	for _, r := range rules {
		if r.match(l) {
			return r.kind
		}
	}
	return AutoUnitTest
}

// Display returns the user-facing label used in reports.
func Display(k Kind) string {
	switch k {
	case AutoUnitTest:
		return "auto"
	case AutoSelenium:
		return "auto-selenium"
	case AutoAxe:
		return "auto-axe"
	default:
		return "manual"
	}
}

// Automated returns the kinds that have a result store, in report order.
func Automated() []Kind {
	return []Kind{AutoUnitTest, AutoSelenium, AutoAxe}
}

// Parse resolves a CLI kind name. Both internal names and display names are accepted.
func Parse(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "auto-unittest", "unittest", "unit":
		return AutoUnitTest, nil
	case "auto-selenium", "selenium", "e2e":
		return AutoSelenium, nil
	case "auto-axe", "axe", "accessibility":
		return AutoAxe, nil
	case "manual":
		return Manual, nil
	}
	return AutoUnitTest, fmt.Errorf("unknown kind %q (expected auto, selenium, axe, or manual)", s)
}
