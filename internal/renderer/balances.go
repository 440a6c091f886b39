package renderer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portfolio-graphs/internal/domain"
)

// balances charts a user's daily balance of one currency, one column per exchange.
type balances struct {
	userBinding
	noCustomSubheading
	deps     Deps
	currency string
}

func newBalances(deps Deps, arg0, _ string) (DataRenderer, error) {
	if arg0 == "" {
		return nil, domain.InvalidArgument("balances graph needs a currency")
	}
	return &balances{deps: deps, currency: strings.ToLower(arg0)}, nil
}

func (r *balances) GraphType() string { return TypeBalances }

func (r *balances) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		RequiresUser:      true,
		UsesDays:          true,
		CanHaveTechnicals: true,
		HasSubheading:     true,
		UsesSummaries:     true,
		ChartType:         domain.ChartLine,
	}
}

func (r *balances) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:     "Balance history",
		TitleArgs: map[string]string{"currency": strings.ToUpper(r.currency)},
		URL:       "/balances/" + r.currency,
		Label:     strings.ToUpper(r.currency),
		Classes:   "balances " + r.currency,
	}
}

func (r *balances) GetData(ctx context.Context, days int) (Data, error) {
	if err := r.requireUser(TypeBalances); err != nil {
		return Data{}, err
	}

	accounts, err := r.deps.Accounts.GetByUser(ctx, r.userID)
	if err != nil {
		return Data{}, fmt.Errorf("get accounts of user %d: %w", r.userID, err)
	}
	if len(accounts) == 0 {
		return noData(domain.NoDataMissingAccounts), nil
	}

	today := r.deps.now()
	points, err := r.deps.Balances.GetSince(ctx, r.userID, r.currency, windowStart(today, days))
	if err != nil {
		return Data{}, fmt.Errorf("get %s balances of user %d: %w", r.currency, r.userID, err)
	}
	if len(points) == 0 {
		return noData(domain.NoDataMissingAccounts), nil
	}

	exchanges := make(map[string]int)
	var names []string
	for _, p := range points {
		if _, ok := exchanges[p.Exchange]; !ok {
			exchanges[p.Exchange] = 0
			names = append(names, p.Exchange)
		}
	}
	sort.Strings(names)
	columns := make([]domain.Column, len(names))
	for i, name := range names {
		exchanges[name] = i
		columns[i] = domain.Column{Key: name, Title: name, Type: domain.ColumnNumber}
	}

	obs := make([]observation, len(points))
	for i, p := range points {
		obs[i] = observation{column: exchanges[p.Exchange], at: p.CreatedAt, value: p.Balance}
	}
	return Data{Series: dailySeries(columns, obs, today, days)}, nil
}
