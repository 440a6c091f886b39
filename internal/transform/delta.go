package transform

import (
	"portfolio-graphs/internal/domain"
)

// DeltaOptions configures ApplyDelta.
type DeltaOptions struct {
	// DropFirstRow removes the first row, which has no predecessor. When false the
	// first row is kept with its numeric cells set to 0.
	DropFirstRow bool
}

// DefaultDeltaOptions drops the first row.
var DefaultDeltaOptions = DeltaOptions{DropFirstRow: true}

// ApplyDelta converts absolute values into period-over-period changes.
//
//	none:     identity (a copy)
//	absolute: v[i] - v[i-1]
//	percent:  (v[i] - v[i-1]) / v[i-1] * 100, 0 when v[i-1] is 0
//
// A null on either side yields null. Only number and percent columns are rewritten.
func ApplyDelta(s domain.Series, mode domain.DeltaMode, opts DeltaOptions) (domain.Series, error) {
	switch mode {
	case domain.DeltaNone:
		return s.Clone(), nil
	case domain.DeltaAbsolute, domain.DeltaPercent:
	default:
		return domain.Series{}, domain.InvalidArgument("unknown delta mode %q", mode)
	}
	if err := s.Validate(); err != nil {
		return domain.Series{}, err
	}

	out := s.Clone()
	if out.IsEmpty() {
		return out, nil
	}

	// walk backwards so each row still sees its predecessor's absolute value
	for i := len(out.Rows) - 1; i >= 1; i-- {
		cur, prev := out.Rows[i].Values, s.Rows[i-1].Values
		for c, col := range out.Columns {
			if !col.Type.IsNumeric() {
				continue
			}
			cur[c] = delta(cur[c], prev[c], mode)
		}
	}

	if opts.DropFirstRow {
		out.Rows = out.Rows[1:]
		return out, nil
	}
	for c, col := range out.Columns {
		if col.Type.IsNumeric() {
			out.Rows[0].Values[c] = domain.Float(0)
		}
	}
	return out, nil
}

func delta(cur, prev *float64, mode domain.DeltaMode) *float64 {
	if cur == nil || prev == nil {
		return nil
	}
	d := *cur - *prev
	if mode == domain.DeltaAbsolute {
		return domain.Float(d)
	}
	if *prev == 0 {
		return domain.Float(0)
	}
	return domain.Float(d / *prev * 100)
}
