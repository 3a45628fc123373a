package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

var testMeta = Meta{Generated: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}

func exampleReport() reconcile.Report {
	return reconcile.Report{
		Rows: []reconcile.Row{
			{ID: "TC001", Kind: "auto-unittest", DisplayKind: "auto", Category: reconcile.Passed, Icon: reconcile.IconPassed, StatusText: "Passed", Outcome: "success"},
			{ID: "TC002", Kind: "manual", DisplayKind: "manual", Category: reconcile.Manual, Icon: reconcile.IconManual, StatusText: "Manual test needed"},
			{ID: "TC003", Kind: "auto-selenium", DisplayKind: "auto-selenium", Category: reconcile.NotFound, Icon: reconcile.IconNotFound, StatusText: "Not found"},
		},
		Stats: reconcile.Stats{Total: 3, Passed: 1, NotFound: 1, Manual: 1},
	}
}

// pdfText renders the document uncompressed so its text operators can be searched.
func pdfText(t *testing.T, rep reconcile.Report, meta Meta) (string, int) {
	t.Helper()
	pdf := buildDocument(rep, meta)
	pdf.SetCompression(false)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("pdf output: %v", err)
	}
	return buf.String(), pdf.PageCount()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTextGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "delivery_text", []byte(Text(exampleReport())))
}

func TestTextEmptyReport(t *testing.T) {
	want := "\n" +
		"Number of tests: 0\n" +
		"✅Passed tests: 0 (0.0%)\n" +
		"❌Failed tests: 0 (0.0%)\n" +
		"🕳Not found tests: 0 (0.0%)\n" +
		"🫱Test to pass manually: 0 (0.0%)\n" +
		"✅Passed + 🫱Manual: 0 (0.0%)\n"
	if got := Text(reconcile.Report{}); got != want {
		t.Errorf("Text() =\n%s\nwant:\n%s", got, want)
	}
}

func TestTextRawOutcome(t *testing.T) {
	rep := reconcile.Report{
		Rows: []reconcile.Row{
			{ID: "TC004", DisplayKind: "auto", Category: reconcile.Failed, Icon: reconcile.IconOther, StatusText: "skipped"},
		},
		Stats: reconcile.Stats{Total: 1, Failed: 1},
	}
	out := Text(rep)
	if !strings.HasPrefix(out, "TC004 | auto | ❔skipped\n") {
		t.Errorf("unexpected first line: %s", out)
	}
	assertContains(t, out, "❌Failed tests: 1 (100.0%)")
}

func TestTextUsesStatsAsGiven(t *testing.T) {
	// The renderer must not recount rows.
	rep := exampleReport()
	rep.Stats.Passed = 2
	assertContains(t, Text(rep), "✅Passed tests: 2 (66.7%)")
}

func TestStyledKeepsContent(t *testing.T) {
	out := Styled(exampleReport(), DefaultTheme())
	assertContains(t, out, "TC001", "auto-selenium", "Manual test needed", "Number of tests: 3", "(66.7%)")
	if got, want := strings.Count(out, "\n"), strings.Count(Text(exampleReport()), "\n"); got != want {
		t.Errorf("styled output has %d lines, plain has %d", got, want)
	}
}

func TestDocument(t *testing.T) {
	data, err := Document(exampleReport(), testMeta)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("not a PDF")
	}
}

func TestDocumentContent(t *testing.T) {
	out, pages := pdfText(t, exampleReport(), Meta{Title: "Bon de livraison", Generated: testMeta.Generated})
	assertContains(t, out,
		"Execution date: 2026-03-14 09:26:53 UTC",
		"(Test case)", "(Type)", "(Result)",
		"(TC001)", "(auto-selenium)", "(Manual test needed)",
		"Passed + manual: 2 \\(66.7%\\)",
	)
	if pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
}

func TestDocumentKeepsLongOutcome(t *testing.T) {
	words := make([]string, 12)
	for i := range words {
		words[i] = fmt.Sprintf("step%02d-timed-out", i)
	}
	outcome := strings.Join(words, " ")
	rep := reconcile.Report{
		Rows:  []reconcile.Row{{ID: "TC007", DisplayKind: "auto", Category: reconcile.Failed, Icon: reconcile.IconOther, StatusText: outcome}},
		Stats: reconcile.Stats{Total: 1, Failed: 1},
	}

	out, _ := pdfText(t, rep, testMeta)
	for _, w := range words {
		if !strings.Contains(out, w) {
			t.Errorf("outcome word %q missing from the document", w)
		}
	}
	if strings.Contains(out, "...") {
		t.Error("outcome must not be truncated")
	}
}

func TestDocumentPaginates(t *testing.T) {
	rep := reconcile.Report{}
	for i := 1; i <= 120; i++ {
		rep.Rows = append(rep.Rows, reconcile.Row{
			ID: fmt.Sprintf("TC%03d", i), DisplayKind: "auto",
			Category: reconcile.Passed, Icon: reconcile.IconPassed, StatusText: "Passed",
		})
	}
	rep.Stats = reconcile.Stats{Total: 120, Passed: 120}

	pdf := buildDocument(rep, testMeta)
	if err := pdf.Error(); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
	if pdf.PageCount() < 2 {
		t.Errorf("expected more than 1 page, got %d", pdf.PageCount())
	}
}

func TestHTML(t *testing.T) {
	data, err := HTML(exampleReport(), Meta{Generated: testMeta.Generated, RunID: "run-1"})
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	assertContains(t, string(data),
		"<title>Test delivery note</title>",
		"Execution date: 2026-03-14 09:26:53 UTC",
		`<tr class="cat-notFound"><td>TC003</td><td>auto-selenium</td><td>🕳Not found</td></tr>`,
		"<p>✅Passed + 🫱Manual: 2 (66.7%)</p>",
		"Run: run-1",
	)
}

func TestHTMLEscapesOutcome(t *testing.T) {
	rep := reconcile.Report{
		Rows:  []reconcile.Row{{ID: "TC001", DisplayKind: "auto", Category: reconcile.Failed, Icon: reconcile.IconOther, StatusText: "<script>"}},
		Stats: reconcile.Stats{Total: 1, Failed: 1},
	}
	data, err := HTML(rep, testMeta)
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	if strings.Contains(string(data), "<script>") {
		t.Error("outcome text was not escaped")
	}
	assertContains(t, string(data), "&lt;script&gt;")
}

func TestJSON(t *testing.T) {
	data, err := JSON(exampleReport(), testMeta)
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var got struct {
		Generated      string          `json:"generated"`
		Rows           []reconcile.Row `json:"rows"`
		Stats          reconcile.Stats `json:"stats"`
		PassedOrManual int             `json:"passed_or_manual"`
		Percentages    map[string]float64
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Generated != "2026-03-14 09:26:53 UTC" {
		t.Errorf("generated = %q", got.Generated)
	}
	if len(got.Rows) != 3 || got.Rows[2].Category != reconcile.NotFound {
		t.Errorf("unexpected rows: %+v", got.Rows)
	}
	if got.Stats.Total != 3 || got.PassedOrManual != 2 {
		t.Errorf("total/passed_or_manual = %d/%d, want 3/2", got.Stats.Total, got.PassedOrManual)
	}
	if got.Percentages["passed_or_manual"] != 66.7 || got.Percentages["not_found"] != 33.3 {
		t.Errorf("unexpected percentages: %v", got.Percentages)
	}
}
