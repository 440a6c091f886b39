package renderer

import (
	"context"
	"fmt"
	"time"

	"portfolio-graphs/internal/domain"
)

// adminSignups charts new users per day. Admin only.
type adminSignups struct {
	userBinding
	noCustomSubheading
	deps Deps
}

func newAdminSignups(deps Deps, _, _ string) (DataRenderer, error) {
	return &adminSignups{deps: deps}, nil
}

func (r *adminSignups) GraphType() string { return TypeAdminSignups }

func (r *adminSignups) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		RequiresUser:  true,
		RequiresAdmin: true,
		UsesDays:      true,
		ChartType:     domain.ChartLine,
	}
}

func (r *adminSignups) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:   "New users",
		URL:     "/admin/statistics",
		Label:   "Signups",
		Classes: "admin",
		H1:      "Administration",
	}
}

func (r *adminSignups) GetData(ctx context.Context, days int) (Data, error) {
	today := r.deps.now()
	start := windowStart(today, days)
	counts, err := r.deps.Users.CountSignupsByDay(ctx, start)
	if err != nil {
		return Data{}, fmt.Errorf("count signups: %w", err)
	}

	byDay := make(map[string]int64, len(counts))
	var latest *time.Time
	for _, c := range counts {
		day := domain.TruncateDay(c.Day)
		byDay[day.Format(domain.DateKeyFormat)] = c.Count
		if c.Count > 0 && (latest == nil || day.After(*latest)) {
			latest = &day
		}
	}

	// every day gets a value; a day without signups is 0, not unknown
	s := domain.Series{
		KeyColumn: dateKeyColumn,
		Columns:   []domain.Column{{Key: "signups", Title: "Signups", Type: domain.ColumnNumber}},
	}
	end := domain.TruncateDay(today)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		s.Rows = append(s.Rows, domain.DateRow(day, domain.Float(float64(byDay[day.Format(domain.DateKeyFormat)]))))
	}
	// the day of the most recent signup; nil when the window has none
	s.LastUpdated = latest
	return Data{Series: s}, nil
}
