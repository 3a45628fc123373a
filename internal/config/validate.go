package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/lucasnoah/deliverynote/internal/logging"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a Config for semantic errors. It returns every problem
// found (empty if valid).
func Validate(cfg *Config) []ValidationError {
	var errs []ValidationError

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: err.Error()})
	}

	for _, t := range []struct {
		field, value string
	}{
		{"gotest.timeout", cfg.GoTest.Timeout},
		{"vitest.timeout", cfg.Vitest.Timeout},
		{"axe.timeout", cfg.Axe.Timeout},
	} {
		if t.value == "" {
			continue
		}
		d, err := time.ParseDuration(t.value)
		if err != nil {
			errs = append(errs, ValidationError{Field: t.field, Message: fmt.Sprintf("invalid duration %q", t.value)})
		} else if d <= 0 {
			errs = append(errs, ValidationError{Field: t.field, Message: "must be positive"})
		}
	}

	// Each kind needs its own store file.
	seen := make(map[string]string)
	for _, s := range []struct {
		field, name string
	}{
		{"stores.auto", cfg.Stores.Auto},
		{"stores.selenium", cfg.Stores.Selenium},
		{"stores.axe", cfg.Stores.Axe},
	} {
		if s.name == "" {
			continue
		}
		clean := filepath.Clean(s.name)
		if other, ok := seen[clean]; ok {
			errs = append(errs, ValidationError{
				Field:   s.field,
				Message: fmt.Sprintf("same file as %s (%q)", other, s.name),
			})
			continue
		}
		seen[clean] = s.field
	}

	if cfg.Output.PDF != "" && filepath.Ext(cfg.Output.PDF) != ".pdf" {
		errs = append(errs, ValidationError{Field: "output.pdf", Message: "should end in .pdf"})
	}

	return errs
}
