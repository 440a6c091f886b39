package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestSeries_CloneDoesNotAlias(t *testing.T) {
	s := Series{
		Columns: []Column{{Key: "a", Type: ColumnNumber}},
		Rows:    []Row{DateRow(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC), Float(1))},
	}

	c := s.Clone()
	*c.Rows[0].Values[0] = 42

	if *s.Rows[0].Values[0] != 1 {
		t.Errorf("clone aliased source row: got %v", *s.Rows[0].Values[0])
	}
	if c.Rows[0].Key != "2024-01-01" {
		t.Errorf("expected key 2024-01-01, got %s", c.Rows[0].Key)
	}
}

func TestSeries_Validate(t *testing.T) {
	s := Series{
		Columns: []Column{{Key: "a", Type: ColumnNumber}, {Key: "b", Type: ColumnNumber}},
		Rows:    []Row{{Key: "x", Values: []*float64{Float(1)}}},
	}

	err := s.Validate()
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}

	s.Rows[0].Values = append(s.Rows[0].Values, nil)
	if err := s.Validate(); err != nil {
		t.Errorf("expected valid series, got %v", err)
	}
}

func TestSeries_NormalizeValues(t *testing.T) {
	s := Series{
		Columns: []Column{{Key: "a", Type: ColumnNumber}, {Key: "b", Type: ColumnPercent}},
		Rows:    []Row{{Key: "x", Values: []*float64{Float(math.NaN()), Float(math.Inf(1))}}},
	}

	out := s.NormalizeValues()
	for i, v := range out.Rows[0].Values {
		if v != nil {
			t.Errorf("cell %d: expected null, got %v", i, *v)
		}
	}
	if s.Rows[0].Values[0] == nil {
		t.Error("source series was modified")
	}
}

func TestResultRow_MarshalsAsArray(t *testing.T) {
	row := ResultRow{Key: "2024-01-01", Values: []*float64{Float(1.5), nil}}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["2024-01-01",1.5,null]` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back ResultRow
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Key != row.Key || len(back.Values) != 2 || *back.Values[0] != 1.5 || back.Values[1] != nil {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestUser_NeedsSummaryRefresh(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{name: "onboarding incomplete", user: User{FirstReportSent: false}, want: true},
		{name: "no account changes", user: User{FirstReportSent: true}, want: false},
		{name: "change after sum job", user: User{FirstReportSent: true, LastAccountChange: &t1, LastSumJob: &t0}, want: true},
		{name: "change before sum job", user: User{FirstReportSent: true, LastAccountChange: &t0, LastSumJob: &t1}, want: false},
		{name: "change but never summed", user: User{FirstReportSent: true, LastAccountChange: &t0}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.NeedsSummaryRefresh(); got != tt.want {
				t.Errorf("NeedsSummaryRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDeltaMode(t *testing.T) {
	for _, in := range []string{"", "none"} {
		if m, err := ParseDeltaMode(in); err != nil || m != DeltaNone {
			t.Errorf("ParseDeltaMode(%q) = %q, %v", in, m, err)
		}
	}
	if m, _ := ParseDeltaMode("percent"); m != DeltaPercent {
		t.Errorf("expected percent, got %q", m)
	}
	if _, err := ParseDeltaMode("ratio"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
