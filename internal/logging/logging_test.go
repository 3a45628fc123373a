package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSetupPlainHandler(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l, err := Setup("warn", &buf)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}

	l.Info("hidden")
	slog.Warn("result store unreadable", "kind", "auto-axe")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record must be filtered at warn level")
	}
	for _, want := range []string{"level=warn", "kind=auto-axe"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("expected 1 line, got %d: %s", n, out)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, err := Setup("loud", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
