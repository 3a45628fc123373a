package kind

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  Kind
	}{
		{"manual", Manual},
		{"Test MANUEL", Manual},
		{"manual selenium", Manual},
		{"selenium manual check", Manual},
		{"selenium E2E", AutoSelenium},
		{"Selenium accessibility", AutoSelenium},
		{"accessibility/axe", AutoAxe},
		{"axe", AutoAxe},
		{"Access check", AutoAxe},
		{"auto", AutoUnitTest},
		{"unit test", AutoUnitTest},
		{"", AutoUnitTest},
		{"something else entirely", AutoUnitTest},
	}
	for _, tt := range tests {
		if got := Classify(tt.label); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := map[Kind]string{
		AutoUnitTest: "auto",
		AutoSelenium: "auto-selenium",
		AutoAxe:      "auto-axe",
		Manual:       "manual",
	}
	for k, want := range tests {
		if got := Display(k); got != want {
			t.Errorf("Display(%v) = %q, want %q", k, got, want)
		}
	}
}

func TestAutomated(t *testing.T) {
	if Manual.Automated() {
		t.Error("manual should not be automated")
	}
	for _, k := range Automated() {
		if !k.Automated() {
			t.Errorf("%v should be automated", k)
		}
	}
	if len(Automated()) != 3 {
		t.Errorf("expected 3 automated kinds, got %d", len(Automated()))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"auto", AutoUnitTest},
		{"auto-unittest", AutoUnitTest},
		{"selenium", AutoSelenium},
		{"Auto-Selenium", AutoSelenium},
		{"axe", AutoAxe},
		{"manual", Manual},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("robot"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
