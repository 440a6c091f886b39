package renderer

import (
	"time"

	"portfolio-graphs/internal/domain"
)

// dateKeyColumn is the key column of daily series.
var dateKeyColumn = domain.Column{Key: "date", Title: "Date", Type: domain.ColumnDate}

// observation is one value of one column at one instant. Observations must be in time order.
type observation struct {
	column int
	at     time.Time
	value  float64
}

// windowStart returns midnight of the first day of a days-long window ending today.
func windowStart(today time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	return domain.TruncateDay(today).AddDate(0, 0, -(days - 1))
}

// dailySeries buckets observations into one row per day of the window ending today.
// Each cell holds the last value of its day; once a column has a value it is carried
// forward over days without observations, earlier cells stay null.
func dailySeries(columns []domain.Column, obs []observation, today time.Time, days int) domain.Series {
	s := domain.Series{KeyColumn: dateKeyColumn, Columns: columns}
	if len(obs) == 0 {
		return s
	}

	start := windowStart(today, days)
	end := domain.TruncateDay(today)
	carry := make([]*float64, len(columns))

	i := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		for ; i < len(obs) && obs[i].at.Before(next); i++ {
			carry[obs[i].column] = domain.Float(obs[i].value)
		}
		values := make([]*float64, len(columns))
		for c, v := range carry {
			if v != nil {
				values[c] = domain.Float(*v)
			}
		}
		s.Rows = append(s.Rows, domain.DateRow(day, values...))
	}

	last := obs[len(obs)-1].at
	s.LastUpdated = &last
	return s
}
