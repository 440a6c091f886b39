package transform

import (
	"time"

	"portfolio-graphs/internal/domain"
)

// TrimRange keeps the rows dated strictly after today - days, compared at day precision in UTC.
// Rows without a date are kept. Order is preserved.
func TrimRange(s domain.Series, days int, today time.Time) (domain.Series, int) {
	out := s.Clone()
	if days <= 0 {
		return out, 0
	}

	cutoff := domain.TruncateDay(today).AddDate(0, 0, -days)
	kept := out.Rows[:0]
	for _, r := range out.Rows {
		if r.Date.IsZero() || domain.TruncateDay(r.Date).After(cutoff) {
			kept = append(kept, r)
		}
	}
	discarded := len(out.Rows) - len(kept)
	out.Rows = kept
	return out, discarded
}

// Span returns the inclusive number of days from the oldest dated row to today, or 0.
func Span(s domain.Series, today time.Time) int {
	var oldest time.Time
	for _, r := range s.Rows {
		if r.Date.IsZero() {
			continue
		}
		if oldest.IsZero() || r.Date.Before(oldest) {
			oldest = r.Date
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return int(domain.TruncateDay(today).Sub(domain.TruncateDay(oldest)).Hours()/24) + 1
}
