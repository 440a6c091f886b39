package renderer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"portfolio-graphs/internal/domain"
)

// ticker charts the daily closing bid and ask of one exchange pair.
// arg0 is the exchange, arg0Resolved the pair (e.g. "usdbtc").
type ticker struct {
	userBinding
	deps     Deps
	exchange string
	pair     string
	last     *domain.TickerPoint
}

func newTicker(deps Deps, arg0, arg0Resolved string) (DataRenderer, error) {
	if arg0 == "" || arg0Resolved == "" {
		return nil, domain.InvalidArgument("ticker graph needs an exchange and a currency pair")
	}
	return &ticker{deps: deps, exchange: arg0, pair: arg0Resolved}, nil
}

func (r *ticker) GraphType() string { return TypeTicker }

func (r *ticker) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		UsesDays:          true,
		CanHaveTechnicals: true,
		HasSubheading:     true,
		ChartType:         domain.ChartLine,
	}
}

func (r *ticker) Metadata() domain.Metadata {
	return domain.Metadata{
		Title:     "Exchange rate history",
		TitleArgs: map[string]string{"exchange": r.exchange, "pair": r.pair},
		URL:       fmt.Sprintf("/ticker/%s/%s", r.exchange, r.pair),
		Label:     fmt.Sprintf("%s %s", r.exchange, r.pair),
		Classes:   "ticker",
	}
}

func (r *ticker) GetData(ctx context.Context, days int) (Data, error) {
	today := r.deps.now()
	points, err := r.deps.Tickers.GetSince(ctx, r.exchange, r.pair, windowStart(today, days))
	if err != nil {
		return Data{}, fmt.Errorf("get ticker %s/%s: %w", r.exchange, r.pair, err)
	}

	columns := []domain.Column{
		{Key: "bid", Title: "Bid", Type: domain.ColumnNumber},
		{Key: "ask", Title: "Ask", Type: domain.ColumnNumber},
	}
	obs := make([]observation, 0, 2*len(points))
	for _, p := range points {
		obs = append(obs,
			observation{column: 0, at: p.CreatedAt, value: p.Bid},
			observation{column: 1, at: p.CreatedAt, value: p.Ask},
		)
	}
	if len(points) > 0 {
		last := *points[len(points)-1]
		r.last = &last
	}
	return Data{Series: dailySeries(columns, obs, today, days)}, nil
}

// CustomSubheading shows the latest bid and ask.
func (r *ticker) CustomSubheading() (string, bool) {
	if r.last == nil {
		return "", false
	}
	bid := decimal.NewFromFloat(r.last.Bid).Round(8).String()
	ask := decimal.NewFromFloat(r.last.Ask).Round(8).String()
	return bid + " / " + ask, true
}
