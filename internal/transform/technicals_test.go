package transform

import (
	"errors"
	"math"
	"testing"

	"portfolio-graphs/internal/domain"
)

func TestApplyTechnicals_SMA(t *testing.T) {
	out, err := ApplyTechnicals(dailySeries(1, 2, 3, 4, 5), domain.TechnicalSpec{Type: IndicatorSMA, Period: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.Columns) != 2 {
		t.Fatalf("expected base + 1 indicator column, got %d", len(out.Columns))
	}
	col := out.Columns[1]
	if !col.Technical || col.Key != "sma_3" {
		t.Errorf("unexpected indicator column %+v", col)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("output breaks fixed schema: %v", err)
	}

	got := values(out, 1)
	want := []*float64{nil, nil, domain.Float(2), domain.Float(3), domain.Float(4)}
	for i := range want {
		switch {
		case want[i] == nil && got[i] != nil:
			t.Errorf("row %d: expected null lookback cell, got %v", i, *got[i])
		case want[i] != nil && (got[i] == nil || math.Abs(*got[i]-*want[i]) > 1e-9):
			t.Errorf("row %d: got %v, want %v", i, got[i], *want[i])
		}
	}
}

func TestApplyTechnicals_Bollinger(t *testing.T) {
	out, err := ApplyTechnicals(dailySeries(2, 4, 4, 4, 5, 5, 7, 9), domain.TechnicalSpec{Type: IndicatorBollinger, Period: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Columns) != 3 {
		t.Fatalf("expected upper and lower band columns, got %d columns", len(out.Columns))
	}
	if out.Columns[1].Key != "bollinger_upper_4" || out.Columns[2].Key != "bollinger_lower_4" {
		t.Errorf("unexpected band keys %s, %s", out.Columns[1].Key, out.Columns[2].Key)
	}
	last := out.Rows[out.Len()-1]
	if last.Values[1] == nil || last.Values[2] == nil || *last.Values[1] <= *last.Values[2] {
		t.Errorf("expected upper > lower on last row, got %v", last.Values)
	}
	if out.Rows[2].Values[1] != nil {
		t.Error("expected null band inside lookback")
	}
}

func TestApplyTechnicals_RSIAndROCArePercent(t *testing.T) {
	for _, typ := range []string{IndicatorRSI, IndicatorROC} {
		out, err := ApplyTechnicals(dailySeries(1, 2, 3, 2, 4, 5, 4), domain.TechnicalSpec{Type: typ, Period: 3})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", typ, err)
		}
		if out.Columns[1].Type != domain.ColumnPercent {
			t.Errorf("%s: expected percent column, got %s", typ, out.Columns[1].Type)
		}
		if out.Rows[2].Values[1] != nil {
			t.Errorf("%s: expected null before lookback is complete", typ)
		}
		if out.Rows[3].Values[1] == nil {
			t.Errorf("%s: expected value after lookback", typ)
		}
	}
}

func TestApplyTechnicals_LeadingNulls(t *testing.T) {
	in := dailySeries(0, 0, 3, 6, 9)
	in.Rows[0].Values[0] = nil
	in.Rows[1].Values[0] = nil

	out, err := ApplyTechnicals(in, domain.TechnicalSpec{Type: IndicatorSMA, Period: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := values(out, 1)
	if got[2] != nil {
		t.Errorf("expected null at first known value, got %v", *got[2])
	}
	if got[3] == nil || *got[3] != 4.5 {
		t.Errorf("expected 4.5, got %v", got[3])
	}
}

func TestApplyTechnicals_InvalidArguments(t *testing.T) {
	s := dailySeries(1, 2, 3)
	tests := []struct {
		name string
		spec domain.TechnicalSpec
	}{
		{name: "zero period", spec: domain.TechnicalSpec{Type: IndicatorSMA, Period: 0}},
		{name: "negative period", spec: domain.TechnicalSpec{Type: IndicatorEMA, Period: -2}},
		{name: "period exceeds rows", spec: domain.TechnicalSpec{Type: IndicatorSMA, Period: 4}},
		{name: "rsi period one", spec: domain.TechnicalSpec{Type: IndicatorRSI, Period: 1}},
		{name: "unknown type", spec: domain.TechnicalSpec{Type: "macd", Period: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ApplyTechnicals(s, tt.spec); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestLookback(t *testing.T) {
	tests := []struct {
		spec domain.TechnicalSpec
		want int
	}{
		{domain.TechnicalSpec{Type: IndicatorSMA, Period: 20}, 19},
		{domain.TechnicalSpec{Type: IndicatorRSI, Period: 14}, 14},
		{domain.TechnicalSpec{Type: IndicatorROC, Period: 5}, 5},
		{domain.TechnicalSpec{Type: "macd", Period: 5}, 0},
		{domain.TechnicalSpec{Type: IndicatorSMA, Period: 0}, 0},
	}
	for _, tt := range tests {
		if got := Lookback(tt.spec); got != tt.want {
			t.Errorf("Lookback(%+v) = %d, want %d", tt.spec, got, tt.want)
		}
	}
}
