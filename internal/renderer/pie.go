package renderer

import (
	"context"
	"fmt"
	"strings"

	"portfolio-graphs/internal/domain"
)

// compositionPie shows how a user's latest balance of one currency splits across exchanges.
// The series is a single row with one column per exchange.
type compositionPie struct {
	userBinding
	noCustomSubheading
	deps     Deps
	currency string
}

func newCompositionPie(deps Deps, arg0, _ string) (DataRenderer, error) {
	if arg0 == "" {
		return nil, domain.InvalidArgument("composition_pie graph needs a currency")
	}
	return &compositionPie{deps: deps, currency: strings.ToLower(arg0)}, nil
}

func (r *compositionPie) GraphType() string { return TypeCompositionPie }

func (r *compositionPie) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		RequiresUser:  true,
		HasSubheading: true,
		UsesSummaries: true,
		ChartType:     domain.ChartPie,
	}
}

func (r *compositionPie) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:     "Balance composition",
		TitleArgs: map[string]string{"currency": strings.ToUpper(r.currency)},
		URL:       "/balances/" + r.currency,
		Label:     strings.ToUpper(r.currency),
		Classes:   "composition " + r.currency,
		NoHeader:  true,
	}
}

func (r *compositionPie) GetData(ctx context.Context, _ int) (Data, error) {
	if err := r.requireUser(TypeCompositionPie); err != nil {
		return Data{}, err
	}

	points, err := r.deps.Balances.GetLatest(ctx, r.userID, r.currency)
	if err != nil {
		return Data{}, fmt.Errorf("get latest %s balances of user %d: %w", r.currency, r.userID, err)
	}
	if len(points) == 0 {
		return noData(domain.NoDataMissingAccounts), nil
	}

	s := domain.Series{
		KeyColumn: domain.Column{Key: "currency", Title: "Currency", Type: domain.ColumnString},
		Columns:   make([]domain.Column, len(points)),
	}
	row := domain.Row{Key: r.currency, Values: make([]*float64, len(points))}
	for i, p := range points {
		s.Columns[i] = domain.Column{Key: p.Exchange, Title: p.Exchange, Type: domain.ColumnNumber}
		row.Values[i] = domain.Float(p.Balance)
		if s.LastUpdated == nil || p.CreatedAt.After(*s.LastUpdated) {
			at := p.CreatedAt
			s.LastUpdated = &at
		}
	}
	s.Rows = []domain.Row{row}
	return Data{Series: s}, nil
}
