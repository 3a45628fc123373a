package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/manifest"
	"github.com/lucasnoah/deliverynote/internal/results"
)

func num(n int) *int { return &n }

func tc(n int, label string) manifest.TestCase {
	return manifest.TestCase{ID: manifest.DeriveID(num(n)), Number: num(n), Label: label}
}

func TestReconcileEndToEndExample(t *testing.T) {
	cases := []manifest.TestCase{
		tc(1, "auto"),
		tc(2, "manual"),
		tc(3, "selenium e2e"),
	}
	store := results.NewMemStore()
	if err := store.WriteReplace(kind.AutoUnitTest, []results.Record{
		{TestCaseID: "TC001", Outcome: "success"},
	}); err != nil {
		t.Fatal(err)
	}

	rep := Reconcile(cases, store)

	want := []Row{
		{ID: "TC001", Kind: "auto-unittest", DisplayKind: "auto", Category: Passed, Icon: IconPassed, StatusText: "Passed", Outcome: "success"},
		{ID: "TC002", Kind: "manual", DisplayKind: "manual", Category: Manual, Icon: IconManual, StatusText: "Manual test needed"},
		{ID: "TC003", Kind: "auto-selenium", DisplayKind: "auto-selenium", Category: NotFound, Icon: IconNotFound, StatusText: "Not found"},
	}
	if diff := cmp.Diff(want, rep.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if want := (Stats{Total: 3, Passed: 1, Failed: 0, NotFound: 1, Manual: 1}); rep.Stats != want {
		t.Errorf("Stats = %+v, want %+v", rep.Stats, want)
	}
	s := rep.Stats
	pcts := []struct {
		name      string
		got, want float64
	}{
		{"passed", s.PassedPct(), 33.3},
		{"failed", s.FailedPct(), 0.0},
		{"not found", s.NotFoundPct(), 33.3},
		{"manual", s.ManualPct(), 33.3},
		{"passed or manual", s.PassedOrManualPct(), 66.7},
	}
	for _, p := range pcts {
		if p.got != p.want {
			t.Errorf("%s pct = %v, want %v", p.name, p.got, p.want)
		}
	}
	if got := s.PassedOrManual(); got != 2 {
		t.Errorf("PassedOrManual() = %d, want 2", got)
	}
}

func TestReconcileOutcomes(t *testing.T) {
	cases := []manifest.TestCase{
		tc(1, "auto"), tc(2, "auto"), tc(3, "auto"), tc(4, "auto"), tc(5, "auto"), tc(6, "auto"),
	}
	store := results.NewMemStore()
	if err := store.WriteReplace(kind.AutoUnitTest, []results.Record{
		{TestCaseID: "TC001", Outcome: "success"},
		{TestCaseID: "TC002", Outcome: "failure"},
		{TestCaseID: "TC003", Outcome: "error"},
		{TestCaseID: "TC004", Outcome: "skipped"},
		{TestCaseID: "TC005", Outcome: "flaky-timeout"},
		{TestCaseID: "TC006", Outcome: ""},
	}); err != nil {
		t.Fatal(err)
	}

	rep := Reconcile(cases, store)
	if len(rep.Rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rep.Rows))
	}

	wantStatus := []string{"✅Passed", "❌Failed", "❔error", "❔skipped", "❔flaky-timeout", "❔Unknown"}
	for i, want := range wantStatus {
		if got := rep.Rows[i].Status(); got != want {
			t.Errorf("row %d status = %q, want %q", i, got, want)
		}
	}
	for _, r := range rep.Rows[1:] {
		if r.Category != Failed {
			t.Errorf("%s category = %s, want failed", r.ID, r.Category)
		}
	}
	if rep.Rows[4].Outcome != "flaky-timeout" {
		t.Errorf("raw outcome = %q, want flaky-timeout", rep.Rows[4].Outcome)
	}
	if rep.Stats.Passed != 1 || rep.Stats.Failed != 5 {
		t.Errorf("passed/failed = %d/%d, want 1/5", rep.Stats.Passed, rep.Stats.Failed)
	}
}

func TestReconcileUsesStorePerKind(t *testing.T) {
	cases := []manifest.TestCase{
		tc(16, "selenium"),
		tc(22, "accessibility/axe"),
		{ID: "TC016", Label: "auto"},
	}
	store := results.NewMemStore()
	if err := store.WriteMerge(kind.AutoSelenium, results.Record{TestCaseID: "TC016", Outcome: "success"}); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteMerge(kind.AutoAxe, results.Record{TestCaseID: "TC022", Outcome: "failure"}); err != nil {
		t.Fatal(err)
	}

	rep := Reconcile(cases, store)

	if rep.Rows[0].Category != Passed {
		t.Errorf("selenium TC016 = %s, want passed", rep.Rows[0].Category)
	}
	if rep.Rows[1].Category != Failed || rep.Rows[1].DisplayKind != "auto-axe" {
		t.Errorf("axe TC022 = %+v, want failed auto-axe", rep.Rows[1])
	}
	// Same id, different kind: the auto store has no TC016.
	if rep.Rows[2].Category != NotFound {
		t.Errorf("auto TC016 = %s, want notFound", rep.Rows[2].Category)
	}
}

func TestReconcileKeepsManifestOrder(t *testing.T) {
	cases := []manifest.TestCase{tc(9, "auto"), tc(1, "manual"), {ID: "X9"}, tc(5, "auto")}
	rep := Reconcile(cases, results.NewMemStore())

	var ids []string
	for _, r := range rep.Rows {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"TC009", "TC001", "X9", "TC005"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileManualSkipsLookup(t *testing.T) {
	src := &countingSource{}
	Reconcile([]manifest.TestCase{tc(1, "manual"), tc(2, "Manuel")}, src)
	if len(src.reads) != 0 {
		t.Errorf("manual cases must not read stores, got %v", src.reads)
	}
}

func TestReconcileReadsEachStoreOnce(t *testing.T) {
	src := &countingSource{}
	Reconcile([]manifest.TestCase{tc(1, "auto"), tc(2, "auto"), tc(3, "selenium"), tc(4, "selenium")}, src)
	want := map[kind.Kind]int{kind.AutoUnitTest: 1, kind.AutoSelenium: 1}
	if diff := cmp.Diff(want, src.reads); diff != "" {
		t.Errorf("reads mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileSourceErrorIsNotFound(t *testing.T) {
	src := &countingSource{err: errors.New("disk on fire")}
	rep := Reconcile([]manifest.TestCase{tc(1, "auto")}, src)
	if rep.Rows[0].Category != NotFound {
		t.Errorf("category = %s, want notFound", rep.Rows[0].Category)
	}
}

func TestReconcileEmptyManifest(t *testing.T) {
	rep := Reconcile(nil, results.NewMemStore())
	if len(rep.Rows) != 0 || rep.Stats.Total != 0 {
		t.Errorf("expected an empty report, got %+v", rep)
	}
	if rep.Stats.PassedPct() != 0 || rep.Stats.PassedOrManualPct() != 0 {
		t.Error("percentages of an empty report must be 0.0")
	}
}

func TestPartitionInvariant(t *testing.T) {
	labels := []string{"auto", "manual", "selenium", "axe", "", "manual selenium", "access"}
	outcomes := []string{"success", "failure", "error", "skipped", "weird"}

	store := results.NewMemStore()
	var cases []manifest.TestCase
	for i := 0; i < 60; i++ {
		c := tc(i, labels[i%len(labels)])
		cases = append(cases, c)
		k := kind.Classify(c.Label)
		if k.Automated() && i%3 != 0 {
			if err := store.WriteMerge(k, results.Record{TestCaseID: c.ID, Outcome: outcomes[i%len(outcomes)]}); err != nil {
				t.Fatal(err)
			}
		}
	}

	rep := Reconcile(cases, store)
	s := rep.Stats
	if s.Total != len(cases) {
		t.Errorf("Total = %d, want %d", s.Total, len(cases))
	}
	if sum := s.Passed + s.Failed + s.NotFound + s.Manual; sum != s.Total {
		t.Errorf("categories sum to %d, want %d", sum, s.Total)
	}
	if len(rep.Rows) != s.Total {
		t.Errorf("%d rows for %d cases", len(rep.Rows), s.Total)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0.0},
		{5, 0, 0.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{3, 3, 100.0},
		{1, 8, 12.5},
		{1, 16, 6.2},
		{21, 2000, 1.1},
		{0, 7, 0.0},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := map[float64]string{0: "0.0", 33.3: "33.3", 100: "100.0"}
	for in, want := range tests {
		if got := FormatPct(in); got != want {
			t.Errorf("FormatPct(%v) = %q, want %q", in, got, want)
		}
	}
}

type countingSource struct {
	reads map[kind.Kind]int
	err   error
}

func (c *countingSource) ReadAll(k kind.Kind) (map[string]string, error) {
	if c.reads == nil {
		c.reads = make(map[kind.Kind]int)
	}
	c.reads[k]++
	if c.err != nil {
		return nil, c.err
	}
	return map[string]string{}, nil
}
