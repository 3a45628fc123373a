package executor

import "io"

// Summary describes what a parser saw in one stream.
type Summary struct {
	Observed   int `json:"observed"`
	Attributed int `json:"attributed"`
	Malformed  int `json:"malformed"`
}

// Parser converts raw runner output into records added to acc.
type Parser interface {
	Name() string
	Parse(r io.Reader, acc *Accumulator) (Summary, error)
}
