package transform

import (
	"github.com/shopspring/decimal"

	"portfolio-graphs/internal/domain"
)

// subheadingPlaces is the maximum number of decimals shown in a subheading.
const subheadingPlaces = 8

// SumRow adds the numeric non-technical cells of row r. Null cells count as 0.
func SumRow(columns []domain.Column, r domain.Row) decimal.Decimal {
	sum := decimal.Zero
	for i, c := range columns {
		if !c.Type.IsNumeric() || c.Technical || i >= len(r.Values) || r.Values[i] == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*r.Values[i]))
	}
	return sum
}

// FormatSubheading returns the sum of the last row, or "" for an empty series.
func FormatSubheading(s domain.Series) string {
	if s.IsEmpty() {
		return ""
	}
	return FormatNumber(SumRow(s.Columns, s.Rows[len(s.Rows)-1]))
}

// FormatNumber rounds d to at most 8 decimals without trailing zeros.
func FormatNumber(d decimal.Decimal) string {
	return d.Round(subheadingPlaces).String()
}
