// Package browser drives a headless Chromium through rod to run axe-core
// accessibility scans.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lucasnoah/deliverynote/internal/results"
)

// DefaultTimeout bounds navigation plus the axe run.
const DefaultTimeout = 30 * time.Second

// Options configures the browser and the axe-core script to inject.
type Options struct {
	Bin        string
	Headless   bool
	Timeout    time.Duration
	ScriptPath string
}

// Scan is the outcome of one accessibility scan.
type Scan struct {
	URL        string
	Violations int
	Raw        json.RawMessage
	Err        error
}

// Outcome maps the scan to a store outcome: success with no violations,
// failure with any, error when the page or script could not run.
func (s *Scan) Outcome() string {
	switch {
	case s.Err != nil:
		return results.OutcomeError
	case s.Violations == 0:
		return results.OutcomeSuccess
	default:
		return results.OutcomeFailure
	}
}

// Record builds the store record for test case id.
func (s *Scan) Record(id string) results.Record {
	rec := results.Record{
		TestCaseID: id,
		Outcome:    s.Outcome(),
		Name:       s.URL,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if s.Err == nil {
		rec.Extra = map[string]json.RawMessage{
			"violations": json.RawMessage(strconv.Itoa(s.Violations)),
		}
	}
	return rec
}

// Scanner runs axe-core against pages.
type Scanner struct {
	opts Options
	log  *slog.Logger
}

// NewScanner creates a Scanner.
func NewScanner(opts Options) *Scanner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Scanner{opts: opts, log: slog.Default()}
}

// WithLogger sets the logger used for browser diagnostics.
func (s *Scanner) WithLogger(l *slog.Logger) *Scanner {
	s.log = l
	return s
}

const axeRun = `() => axe.run(document, { resultTypes: ["violations"] })`

// Scan opens url, injects axe-core and runs it. Failures to reach the page
// or run the script are reported in Scan.Err, not as an error; the error
// return is reserved for setup problems (missing script, no browser).
func (s *Scanner) Scan(ctx context.Context, url string) (*Scan, error) {
	script, err := os.ReadFile(s.opts.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("read axe script: %w", err)
	}

	l := launcher.New().Headless(s.opts.Headless)
	if s.opts.Bin != "" {
		l = l.Bin(s.opts.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	scan := &Scan{URL: url}
	raw, err := s.run(page.Timeout(s.opts.Timeout), url, string(script))
	if err != nil {
		s.log.Warn("accessibility scan failed", "url", url, "error", err)
		scan.Err = err
		return scan, nil
	}
	n, err := CountViolations(raw)
	if err != nil {
		scan.Err = err
		return scan, nil
	}
	scan.Raw = raw
	scan.Violations = n
	s.log.Debug("accessibility scan finished", "url", url, "violations", n)
	return scan, nil
}

func (s *Scanner) run(page *rod.Page, url, script string) (json.RawMessage, error) {
	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for load: %w", err)
	}
	if err := page.AddScriptTag("", script); err != nil {
		return nil, fmt.Errorf("inject axe: %w", err)
	}
	res, err := page.Evaluate(&rod.EvalOptions{
		JS:           axeRun,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("run axe: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode axe results: %w", err)
	}
	return raw, nil
}

// CountViolations returns the number of entries in the axe result's
// violations array.
func CountViolations(raw []byte) (int, error) {
	var res struct {
		Violations []json.RawMessage `json:"violations"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("parse axe results: %w", err)
	}
	return len(res.Violations), nil
}

var unsafeLabel = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportPath returns dir/axe_<label>.json with label made filename-safe.
func ReportPath(dir, label string) string {
	label = unsafeLabel.ReplaceAllString(label, "_")
	if label == "" {
		label = "scan"
	}
	return filepath.Join(dir, "axe_"+label+".json")
}

// WriteReport writes the raw axe JSON, indented, to path.
func WriteReport(path string, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse axe results: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal axe results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
