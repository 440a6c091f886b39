package domain

import (
	"math"
	"time"
)

// ColumnType is the value type of a column.
type ColumnType string

// Column types
const (
	ColumnDate    ColumnType = "date"
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnPercent ColumnType = "percent"
)

// IsNumeric reports whether cells of this type hold numbers.
func (t ColumnType) IsNumeric() bool {
	return t == ColumnNumber || t == ColumnPercent
}

// Column describes one column of a series.
type Column struct {
	Key       string     `json:"key"`
	Title     string     `json:"title"`
	Type      ColumnType `json:"type"`
	Technical bool       `json:"technical,omitempty"`
}

// Row is one fixed-schema row: Values[i] belongs to Columns[i]; nil is a null cell.
type Row struct {
	Key    string    // date (2006-01-02) or label
	Date   time.Time // zero for non-dated rows
	Values []*float64
}

// Series is an ordered sequence of rows plus its column descriptors.
type Series struct {
	KeyColumn   Column
	Columns     []Column
	Rows        []Row
	LastUpdated *time.Time // nil when unknown
}

// DateKeyFormat is the row key format of dated rows.
const DateKeyFormat = "2006-01-02"

// Len returns the number of rows.
func (s Series) Len() int {
	return len(s.Rows)
}

// IsEmpty reports whether the series has no rows.
func (s Series) IsEmpty() bool {
	return len(s.Rows) == 0
}

// Clone returns a deep copy, so stages never alias each other's rows.
func (s Series) Clone() Series {
	out := Series{
		KeyColumn: s.KeyColumn,
		Columns:   append([]Column(nil), s.Columns...),
		Rows:      make([]Row, len(s.Rows)),
	}
	if s.LastUpdated != nil {
		t := *s.LastUpdated
		out.LastUpdated = &t
	}
	for i, r := range s.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	vals := make([]*float64, len(r.Values))
	for i, v := range r.Values {
		if v != nil {
			vals[i] = Float(*v)
		}
	}
	return Row{Key: r.Key, Date: r.Date, Values: vals}
}

// Validate checks the fixed-schema invariant: every row has one cell per column.
func (s Series) Validate() error {
	for i, r := range s.Rows {
		if len(r.Values) != len(s.Columns) {
			return InvalidState("row %d (%s) has %d cells for %d columns", i, r.Key, len(r.Values), len(s.Columns))
		}
	}
	return nil
}

// NormalizeValues returns a copy in which non-finite numeric cells become null.
func (s Series) NormalizeValues() Series {
	out := s.Clone()
	for _, r := range out.Rows {
		for i, v := range r.Values {
			if v == nil || i >= len(out.Columns) || !out.Columns[i].Type.IsNumeric() {
				continue
			}
			if math.IsNaN(*v) || math.IsInf(*v, 0) {
				r.Values[i] = nil
			}
		}
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// DateRow builds a dated row keyed by its day.
func DateRow(day time.Time, values ...*float64) Row {
	d := TruncateDay(day)
	return Row{Key: d.Format(DateKeyFormat), Date: d, Values: values}
}

// TruncateDay returns midnight UTC of t's day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
