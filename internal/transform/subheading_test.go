package transform

import (
	"testing"

	"github.com/shopspring/decimal"

	"portfolio-graphs/internal/domain"
)

func TestSumRow_PieRow(t *testing.T) {
	columns := []domain.Column{
		{Key: "a", Type: domain.ColumnNumber},
		{Key: "b", Type: domain.ColumnNumber},
	}
	row := domain.Row{Key: "latest", Values: []*float64{domain.Float(3), domain.Float(7)}}

	if got := FormatNumber(SumRow(columns, row)); got != "10" {
		t.Errorf("expected 10, got %s", got)
	}
}

func TestFormatSubheading(t *testing.T) {
	s := dailySeries(1, 2)
	s.Columns = append(s.Columns,
		domain.Column{Key: "eth", Type: domain.ColumnNumber},
		domain.Column{Key: "sma_2", Type: domain.ColumnNumber, Technical: true},
	)
	s.Rows[0].Values = append(s.Rows[0].Values, nil, nil)
	s.Rows[1].Values = append(s.Rows[1].Values, domain.Float(0.1), domain.Float(100))

	// 2 + 0.1; the technical cell is not part of the total
	if got := FormatSubheading(s); got != "2.1" {
		t.Errorf("expected 2.1, got %s", got)
	}

	if got := FormatSubheading(domain.Series{}); got != "" {
		t.Errorf("expected empty subheading, got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{0.123456789123, "0.12345679"},
		{-1.5, "-1.5"},
		{0.00000001, "0.00000001"},
	}
	for _, tt := range tests {
		if got := FormatNumber(decimal.NewFromFloat(tt.in)); got != tt.want {
			t.Errorf("FormatNumber(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
