package transform

import (
	"fmt"
	"strings"

	talib "github.com/markcheno/go-talib"

	"portfolio-graphs/internal/domain"
)

// Indicator types
const (
	IndicatorSMA       = "sma"
	IndicatorEMA       = "ema"
	IndicatorRSI       = "rsi"
	IndicatorBollinger = "bollinger"
	IndicatorROC       = "roc"
)

// bollingerDeviations is the band width in standard deviations.
const bollingerDeviations = 2.0

// indicator computes one or more output series of the same length as its input.
// Lookback entries must be left at index < lookback.
type indicator struct {
	minPeriod int
	lookback  func(period int) int
	outputs   []string // column key suffixes; "" for a single output
	compute   func(in []float64, period int) [][]float64
}

var indicators = map[string]indicator{
	IndicatorSMA: {
		minPeriod: 1,
		lookback:  func(p int) int { return p - 1 },
		outputs:   []string{""},
		compute: func(in []float64, p int) [][]float64 {
			return [][]float64{talib.Sma(in, p)}
		},
	},
	IndicatorEMA: {
		minPeriod: 1,
		lookback:  func(p int) int { return p - 1 },
		outputs:   []string{""},
		compute: func(in []float64, p int) [][]float64 {
			return [][]float64{talib.Ema(in, p)}
		},
	},
	IndicatorRSI: {
		minPeriod: 2,
		lookback:  func(p int) int { return p },
		outputs:   []string{""},
		compute: func(in []float64, p int) [][]float64 {
			return [][]float64{talib.Rsi(in, p)}
		},
	},
	IndicatorBollinger: {
		minPeriod: 2,
		lookback:  func(p int) int { return p - 1 },
		outputs:   []string{"upper", "lower"},
		compute: func(in []float64, p int) [][]float64 {
			upper, _, lower := talib.BBands(in, p, bollingerDeviations, bollingerDeviations, talib.SMA)
			return [][]float64{upper, lower}
		},
	},
	IndicatorROC: {
		minPeriod: 1,
		lookback:  func(p int) int { return p },
		outputs:   []string{""},
		compute: func(in []float64, p int) [][]float64 {
			return [][]float64{talib.Roc(in, p)}
		},
	},
}

// IsIndicator reports whether typ names a supported indicator.
func IsIndicator(typ string) bool {
	_, ok := indicators[typ]
	return ok
}

// Lookback returns how many extra leading rows an indicator needs before its first defined value.
// Unknown types and invalid periods return 0; ApplyTechnicals reports those.
func Lookback(spec domain.TechnicalSpec) int {
	ind, ok := indicators[spec.Type]
	if !ok || spec.Period < ind.minPeriod {
		return 0
	}
	return ind.lookback(spec.Period)
}

// ApplyTechnicals appends indicator columns computed over the first numeric non-technical column.
// The result holds the base columns followed by the indicator columns, flagged technical.
// Leading cells without enough lookback are null.
func ApplyTechnicals(s domain.Series, spec domain.TechnicalSpec) (domain.Series, error) {
	ind, ok := indicators[spec.Type]
	if !ok {
		return domain.Series{}, domain.InvalidArgument("unknown technical type %q", spec.Type)
	}
	if spec.Period <= 0 {
		return domain.Series{}, domain.InvalidArgument("technical period must be positive, got %d", spec.Period)
	}
	if spec.Period < ind.minPeriod {
		return domain.Series{}, domain.InvalidArgument("%s period must be at least %d, got %d", spec.Type, ind.minPeriod, spec.Period)
	}
	if spec.Period > s.Len() {
		return domain.Series{}, domain.InvalidArgument("technical period %d exceeds %d available rows", spec.Period, s.Len())
	}
	if err := s.Validate(); err != nil {
		return domain.Series{}, err
	}

	base := -1
	for i, c := range s.Columns {
		if c.Type.IsNumeric() && !c.Technical {
			base = i
			break
		}
	}
	if base < 0 {
		return domain.Series{}, domain.InvalidArgument("series has no numeric column for %s", spec.Type)
	}

	in, first := baseValues(s, base)

	out := s.Clone()
	for _, suffix := range ind.outputs {
		out.Columns = append(out.Columns, indicatorColumn(spec, suffix, s.Columns[base].Type))
	}
	for i := range out.Rows {
		out.Rows[i].Values = append(out.Rows[i].Values, make([]*float64, len(ind.outputs))...)
	}
	lookback := ind.lookback(spec.Period)
	if first < 0 || len(in)-first <= lookback {
		return out, nil
	}

	results := ind.compute(in[first:], spec.Period)
	width := len(s.Columns)
	for k, values := range results {
		for j := lookback; j < len(values); j++ {
			out.Rows[first+j].Values[width+k] = domain.Float(values[j])
		}
	}
	return out, nil
}

// baseValues extracts column c as a dense slice, carrying the last known value over nulls.
// first is the index of the first non-null cell, or -1.
func baseValues(s domain.Series, c int) ([]float64, int) {
	in := make([]float64, len(s.Rows))
	first := -1
	var last float64
	for i, r := range s.Rows {
		if v := r.Values[c]; v != nil {
			last = *v
			if first < 0 {
				first = i
			}
		}
		in[i] = last
	}
	return in, first
}

func indicatorColumn(spec domain.TechnicalSpec, suffix string, typ domain.ColumnType) domain.Column {
	key := fmt.Sprintf("%s_%d", spec.Type, spec.Period)
	title := fmt.Sprintf("%s (%d)", strings.ToUpper(spec.Type), spec.Period)
	if suffix != "" {
		key = fmt.Sprintf("%s_%s_%d", spec.Type, suffix, spec.Period)
		title = fmt.Sprintf("%s %s (%d)", strings.ToUpper(spec.Type), suffix, spec.Period)
	}
	if spec.Type == IndicatorRSI || spec.Type == IndicatorROC {
		typ = domain.ColumnPercent
	}
	return domain.Column{Key: key, Title: title, Type: typ, Technical: true}
}
