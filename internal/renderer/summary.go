package renderer

import (
	"context"
	"fmt"
	"strings"

	"portfolio-graphs/internal/domain"
)

// totalSummary charts a user's daily converted total of one summary type (e.g. "totalbtc").
type totalSummary struct {
	userBinding
	noCustomSubheading
	deps        Deps
	summaryType string
}

func newTotalSummary(deps Deps, arg0, _ string) (DataRenderer, error) {
	if arg0 == "" {
		return nil, domain.InvalidArgument("total_summary graph needs a summary type")
	}
	return &totalSummary{deps: deps, summaryType: strings.ToLower(arg0)}, nil
}

func (r *totalSummary) GraphType() string { return TypeTotalSummary }

func (r *totalSummary) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		RequiresUser:      true,
		UsesDays:          true,
		CanHaveTechnicals: true,
		HasSubheading:     true,
		UsesSummaries:     true,
		ChartType:         domain.ChartLine,
	}
}

func (r *totalSummary) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:     "Total converted balance",
		TitleArgs: map[string]string{"summary": r.summaryType},
		URL:       "/summary/" + r.summaryType,
		Label:     r.summaryType,
		Classes:   "summary " + r.summaryType,
	}
}

func (r *totalSummary) GetData(ctx context.Context, days int) (Data, error) {
	if err := r.requireUser(TypeTotalSummary); err != nil {
		return Data{}, err
	}

	instances, err := r.deps.Summaries.GetInstances(ctx, r.userID)
	if err != nil {
		return Data{}, fmt.Errorf("get summary instances of user %d: %w", r.userID, err)
	}
	enabled := false
	for _, si := range instances {
		if si.SummaryType == r.summaryType {
			enabled = true
			break
		}
	}
	if !enabled {
		return noData(domain.NoDataMissingCurrencies), nil
	}

	today := r.deps.now()
	points, err := r.deps.Summaries.GetSince(ctx, r.userID, r.summaryType, windowStart(today, days))
	if err != nil {
		return Data{}, fmt.Errorf("get %s summaries of user %d: %w", r.summaryType, r.userID, err)
	}
	if len(points) == 0 {
		return noData(domain.NoDataMissingCurrencies), nil
	}

	columns := []domain.Column{{Key: r.summaryType, Title: "Total", Type: domain.ColumnNumber}}
	obs := make([]observation, len(points))
	for i, p := range points {
		obs[i] = observation{at: p.CreatedAt, value: p.Balance}
	}
	return Data{Series: dailySeries(columns, obs, today, days)}, nil
}
