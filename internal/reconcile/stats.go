package reconcile

import "strconv"

// Stats holds the aggregate counts of a reconciliation. Passed, Failed,
// NotFound and Manual always sum to Total.
type Stats struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	NotFound int `json:"not_found"`
	Manual   int `json:"manual"`
}

func (s *Stats) add(c Category) {
	switch c {
	case Passed:
		s.Passed++
	case Failed:
		s.Failed++
	case NotFound:
		s.NotFound++
	case Manual:
		s.Manual++
	}
}

// PassedOrManual counts passed and manual cases together. It is a reporting
// convenience: manual cases are not verified evidence until someone runs them.
func (s Stats) PassedOrManual() int {
	return s.Passed + s.Manual
}

func (s Stats) PassedPct() float64         { return Percent(s.Passed, s.Total) }
func (s Stats) FailedPct() float64         { return Percent(s.Failed, s.Total) }
func (s Stats) NotFoundPct() float64       { return Percent(s.NotFound, s.Total) }
func (s Stats) ManualPct() float64         { return Percent(s.Manual, s.Total) }
func (s Stats) PassedOrManualPct() float64 { return Percent(s.PassedOrManual(), s.Total) }

// Percent returns part as a percentage of total rounded to one decimal, or
// 0 when total is 0. Rounding is decimal rounding of the exact float value
// with ties to even.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(part) * 100.0 / float64(total)
	v, _ := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 1, 64), 64)
	return v
}

// FormatPct formats a percentage the way reports print it, e.g. "33.3".
func FormatPct(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}
