// Package manifest loads the declarative registry of expected test cases.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownID is the id given to entries with neither an explicit id nor a number.
const UnknownID = "TC???"

// ErrNotFound is returned by Load when the manifest file does not exist.
var ErrNotFound = errors.New("manifest file not found")

// TestCase is one expected test case, in manifest order.
type TestCase struct {
	ID     string
	Label  string
	Number *int
	// Explicit is true when ID came from test_case_id rather than being derived.
	Explicit bool
	Title    string
}

type file struct {
	Tests []entry `yaml:"tests"`
}

type entry struct {
	TestCaseID yaml.Node   `yaml:"test_case_id"`
	Numero     yaml.Node   `yaml:"numero"`
	Type       interface{} `yaml:"type"`
	Title      string      `yaml:"title"`
	Titre      string      `yaml:"titre"`
}

// parseNumero accepts both `numero: 7` and `numero: "7"`. An absent or
// null numero yields nil.
func parseNumero(node yaml.Node) (*int, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: numero must be an integer", node.Line)
	}
	v, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		return nil, fmt.Errorf("line %d: numero %q is not an integer", node.Line, node.Value)
	}
	return &v, nil
}

// Load reads the manifest at path. A missing file yields an error wrapping
// ErrNotFound; everything else about the entries is parsed tolerantly.
func Load(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest YAML. Entries keep their file order.
func Parse(data []byte) ([]TestCase, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing manifest YAML: %w", err)
	}

	cases := make([]TestCase, 0, len(f.Tests))
	for _, e := range f.Tests {
		tc, err := e.toTestCase()
		if err != nil {
			return nil, fmt.Errorf("parsing manifest YAML: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// toTestCase resolves the entry's id. numero is only required to be an
// integer when it is the source of the id.
func (e entry) toTestCase() (TestCase, error) {
	tc := TestCase{Label: label(e.Type), Title: e.Title}
	if tc.Title == "" {
		tc.Title = e.Titre
	}
	n, err := parseNumero(e.Numero)

	if e.TestCaseID.Kind == yaml.ScalarNode && e.TestCaseID.Tag != "!!null" {
		tc.ID = e.TestCaseID.Value
		tc.Explicit = true
		if err == nil {
			tc.Number = n
		}
		return tc, nil
	}
	if err != nil {
		return TestCase{}, err
	}
	tc.Number = n
	tc.ID = DeriveID(n)
	return tc, nil
}

// DeriveID builds the canonical TCnnn id from a sequence number.
func DeriveID(n *int) string {
	if n == nil {
		return UnknownID
	}
	return fmt.Sprintf("TC%03d", *n)
}

func label(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
