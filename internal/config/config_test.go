package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `
manifest: qa/test_list.yaml
results_dir: qa/results
stores:
  auto: unit.json
  selenium: e2e.json
output:
  pdf: out/delivery_note.pdf
  html: out/delivery_note.html
  title: Bon de livraison
history_db: qa/history.db
log_level: debug
gotest:
  command: go test -json ./internal/...
  timeout: 5m
axe:
  script: node_modules/axe-core/axe.min.js
  headless: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deliverynote.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Manifest != "qa/test_list.yaml" {
		t.Errorf("expected manifest qa/test_list.yaml, got %q", cfg.Manifest)
	}
	if cfg.ResultsDir != "qa/results" {
		t.Errorf("expected results_dir qa/results, got %q", cfg.ResultsDir)
	}
	if cfg.Stores.Auto != "unit.json" || cfg.Stores.Selenium != "e2e.json" || cfg.Stores.Axe != "" {
		t.Errorf("unexpected stores: %+v", cfg.Stores)
	}
	if cfg.Output.Title != "Bon de livraison" {
		t.Errorf("expected title, got %q", cfg.Output.Title)
	}
	if cfg.GoTest.TimeoutDuration() != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.GoTest.TimeoutDuration())
	}
	if cfg.Axe.IsHeadless() {
		t.Error("expected headless=false")
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: warn\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Manifest != DefaultManifest {
		t.Errorf("expected default manifest, got %q", cfg.Manifest)
	}
	if cfg.ResultsDir != "." {
		t.Errorf("expected results_dir '.', got %q", cfg.ResultsDir)
	}
	if cfg.Output.PDF != DefaultPDF {
		t.Errorf("expected default pdf, got %q", cfg.Output.PDF)
	}
	if cfg.GoTest.Command != DefaultGoTestCmd {
		t.Errorf("expected default gotest command, got %q", cfg.GoTest.Command)
	}
	if cfg.Axe.TimeoutDuration() != 30*time.Second {
		t.Errorf("expected axe timeout 30s, got %v", cfg.Axe.TimeoutDuration())
	}
	if !cfg.Axe.IsHeadless() {
		t.Error("expected headless by default")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level warn, got %q", cfg.LogLevel)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "manifest: [unterminated\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config YAML") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadDefault_FallsBackToBuiltins(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	cfg, path, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no path, got %q", path)
	}
	if cfg.Manifest != DefaultManifest {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadDefault_PrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)
	if err := os.WriteFile("deliverynote.yaml", []byte("manifest: local.yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "deliverynote.yaml" {
		t.Errorf("expected deliverynote.yaml, got %q", path)
	}
	if cfg.Manifest != "local.yaml" {
		t.Errorf("expected local.yaml, got %q", cfg.Manifest)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatal(err)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if errs := Validate(Default()); len(errs) != 0 {
		t.Errorf("expected defaults to validate, got %v", errs)
	}
}

func TestValidate_Errors(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "chatty"
	cfg.GoTest.Timeout = "soon"
	cfg.Axe.Timeout = "-1s"
	cfg.Stores.Auto = "results.json"
	cfg.Stores.Selenium = "./results.json"
	cfg.Output.PDF = "note.txt"

	errs := Validate(cfg)
	want := []string{"log_level", "gotest.timeout", "axe.timeout", "stores.selenium", "output.pdf"}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for i, field := range want {
		if errs[i].Field != field {
			t.Errorf("error %d: expected field %q, got %q", i, field, errs[i].Field)
		}
	}
	if !strings.Contains(errs[3].Error(), "stores.auto") {
		t.Errorf("expected duplicate to name stores.auto, got %v", errs[3])
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
