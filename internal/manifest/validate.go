package manifest

import (
	"fmt"
	"regexp"
)

// Problem is a data-quality warning about a manifest entry. Problems never
// block reconciliation; malformed ids are reported as-is.
type Problem struct {
	Index   int
	ID      string
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("tests[%d] (%s): %s", p.Index, p.ID, p.Message)
}

var canonicalID = regexp.MustCompile(`^TC\d{3,}$`)

// Validate reports duplicate ids, entries that resolved to UnknownID, and
// explicit ids that are not in canonical TCnnn form.
func Validate(cases []TestCase) []Problem {
	var problems []Problem
	seen := make(map[string]int)

	for i, tc := range cases {
		if tc.ID == UnknownID && !tc.Explicit {
			problems = append(problems, Problem{Index: i, ID: tc.ID, Message: "no test_case_id and no numero"})
			continue
		}
		if first, ok := seen[tc.ID]; ok {
			problems = append(problems, Problem{
				Index:   i,
				ID:      tc.ID,
				Message: fmt.Sprintf("duplicate id (first seen at tests[%d])", first),
			})
		} else {
			seen[tc.ID] = i
		}
		if tc.Explicit && !canonicalID.MatchString(tc.ID) {
			problems = append(problems, Problem{Index: i, ID: tc.ID, Message: "explicit id is not in TCnnn form"})
		}
	}
	return problems
}
