package config

import "time"

// Config is the top-level configuration parsed from deliverynote.yaml.
type Config struct {
	Manifest   string `yaml:"manifest"`
	ResultsDir string `yaml:"results_dir"`
	Stores     Stores `yaml:"stores"`
	Output     Output `yaml:"output"`
	HistoryDB  string `yaml:"history_db"`
	LogLevel   string `yaml:"log_level"`
	GoTest     Batch  `yaml:"gotest"`
	Vitest     Batch  `yaml:"vitest"`
	Axe        Axe    `yaml:"axe"`
	Serve      Serve  `yaml:"serve"`
}

// Stores names the result store file of each automated kind, relative to
// ResultsDir unless absolute.
type Stores struct {
	Auto     string `yaml:"auto"`
	Selenium string `yaml:"selenium"`
	Axe      string `yaml:"axe"`
}

// Output controls where the report renderers write.
type Output struct {
	PDF   string `yaml:"pdf"`
	HTML  string `yaml:"html"`
	JSON  string `yaml:"json"`
	Title string `yaml:"title"`
}

// Batch configures a batch executor command.
type Batch struct {
	Command string `yaml:"command"`
	Dir     string `yaml:"dir"`
	Timeout string `yaml:"timeout"`
}

// Axe configures the browser accessibility scan.
type Axe struct {
	Script   string `yaml:"script"`
	Timeout  string `yaml:"timeout"`
	Headless *bool  `yaml:"headless"`
	Bin      string `yaml:"bin"`
}

// Serve configures the local web UI.
type Serve struct {
	Addr string `yaml:"addr"`
}

// TimeoutDuration parses Timeout, returning 0 when it is empty or invalid.
func (b Batch) TimeoutDuration() time.Duration {
	return parseDuration(b.Timeout)
}

// TimeoutDuration parses Timeout, returning 0 when it is empty or invalid.
func (a Axe) TimeoutDuration() time.Duration {
	return parseDuration(a.Timeout)
}

// IsHeadless reports whether the browser runs headless (the default).
func (a Axe) IsHeadless() bool {
	return a.Headless == nil || *a.Headless
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
