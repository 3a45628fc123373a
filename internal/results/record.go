package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Outcome values written by the bundled executors. Stores may contain any
// other string; reconciliation treats those as failures and keeps the text.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Record is one executor observation. Only TestCaseID and Outcome take part
// in reconciliation; the rest is descriptive. Unknown keys written by other
// tools are kept in Extra and survive a merge round-trip.
type Record struct {
	TestCaseID string
	Outcome    string
	Name       string
	TestName   string
	TestClass  string
	Package    string
	RecordedAt string
	Extra      map[string]json.RawMessage

	// noOutcome is set when the stored outcome was JSON null.
	noOutcome bool
}

// HasOutcome reports whether the record carries an outcome value at all.
// A null outcome counts as "no evidence" for its id.
func (r Record) HasOutcome() bool {
	return !r.noOutcome
}

type recordJSON struct {
	TestCaseID *string `json:"test_case_id"`
	Name       string  `json:"name,omitempty"`
	TestName   string  `json:"test_name,omitempty"`
	TestClass  string  `json:"test_class,omitempty"`
	Package    string  `json:"package,omitempty"`
	Outcome    *string `json:"outcome"`
	RecordedAt string  `json:"recorded_at,omitempty"`
}

var knownKeys = map[string]bool{
	"test_case_id": true, "name": true, "test_name": true, "test_class": true,
	"package": true, "outcome": true, "recorded_at": true,
}

// MarshalJSON writes known fields first, then Extra keys in sorted order.
// An empty TestCaseID is written as null, matching executors that could not
// attribute a test to a case.
func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Name:       r.Name,
		TestName:   r.TestName,
		TestClass:  r.TestClass,
		Package:    r.Package,
		RecordedAt: r.RecordedAt,
	}
	if r.TestCaseID != "" {
		id := r.TestCaseID
		out.TestCaseID = &id
	}
	if !r.noOutcome {
		o := r.Outcome
		out.Outcome = &o
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return data, nil
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !knownKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(r.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON is lenient: ids and outcomes that are not strings are kept
// as their raw JSON text rather than rejecting the whole store.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	*r = Record{}
	var ok bool
	r.TestCaseID, _ = scalar(raw["test_case_id"])
	r.Outcome, ok = scalar(raw["outcome"])
	r.noOutcome = !ok
	r.Name, _ = scalar(raw["name"])
	r.TestName, _ = scalar(raw["test_name"])
	r.TestClass, _ = scalar(raw["test_class"])
	r.Package, _ = scalar(raw["package"])
	r.RecordedAt, _ = scalar(raw["recorded_at"])

	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return nil
}

// scalar returns a JSON value as text. The bool is false for absent or null values.
func scalar(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, true
	}
	return string(v), true
}
