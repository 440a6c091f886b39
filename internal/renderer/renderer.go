// Package renderer supplies the raw series of each graph type.
package renderer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/storage"
)

// DataRenderer is the data source of one graph type.
type DataRenderer interface {
	// GraphType returns the registered type name.
	GraphType() string

	// Capabilities returns the static flags the orchestrator branches on.
	Capabilities() domain.Capabilities

	// Metadata returns the display fields.
	Metadata() domain.Metadata

	// SetUser binds the user a user-scoped renderer reads data for.
	SetUser(id int64)

	// UserID returns the bound user, 0 when none.
	UserID() int64

	// GetData returns one row per day for the last days days (today included), or a NoData kind.
	// Storage failures are returned as errors.
	GetData(ctx context.Context, days int) (Data, error)

	// CustomSubheading returns a renderer-specific subheading. ok is false when the
	// renderer has none and the computed subheading applies. Valid after GetData.
	CustomSubheading() (value string, ok bool)
}

// Data is the outcome of GetData: a series, or a NoData kind explaining why there is none.
type Data struct {
	Series domain.Series
	NoData domain.NoDataKind
}

// IsNoData reports whether the renderer had nothing to return.
func (d Data) IsNoData() bool {
	return d.NoData != domain.NoDataNone
}

func noData(kind domain.NoDataKind) Data {
	return Data{NoData: kind}
}

// Deps are the collaborators renderers read from. A nil store disables the graph types that need it.
type Deps struct {
	Users     storage.UserStore
	Accounts  storage.AccountStore
	Balances  storage.BalanceStore
	Summaries storage.SummaryStore
	Tickers   storage.TickerStore
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// Factory builds a renderer for one request's arguments.
type Factory func(deps Deps, arg0, arg0Resolved string) (DataRenderer, error)

// Registry maps graph types to factories.
// Register must not be called concurrently with Construct.
type Registry struct {
	deps      Deps
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, factories: make(map[string]Factory)}
}

// Register adds or replaces the factory of a graph type.
func (r *Registry) Register(graphType string, f Factory) {
	r.factories[graphType] = f
}

// Construct builds the renderer of graphType. Returns ErrUnknownGraphType when none is registered.
func (r *Registry) Construct(graphType, arg0, arg0Resolved string) (DataRenderer, error) {
	f, ok := r.factories[graphType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownGraphType, graphType)
	}
	return f(r.deps, arg0, arg0Resolved)
}

// Types returns the registered graph types, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Graph types
const (
	TypeTicker         = "ticker"
	TypeBalances       = "balances"
	TypeTotalSummary   = "total_summary"
	TypeCompositionPie = "composition_pie"
	TypeAdminSignups   = "admin_signups"
)

// NewDefaultRegistry registers every graph type whose stores are available in deps.
func NewDefaultRegistry(deps Deps) *Registry {
	r := NewRegistry(deps)
	if deps.Tickers != nil {
		r.Register(TypeTicker, newTicker)
	}
	if deps.Accounts != nil && deps.Balances != nil {
		r.Register(TypeBalances, newBalances)
		r.Register(TypeCompositionPie, newCompositionPie)
	}
	if deps.Summaries != nil {
		r.Register(TypeTotalSummary, newTotalSummary)
	}
	if deps.Users != nil {
		r.Register(TypeAdminSignups, newAdminSignups)
	}
	return r
}

// userBinding implements SetUser/UserID for user-scoped renderers.
type userBinding struct {
	userID int64
}

func (b *userBinding) SetUser(id int64) { b.userID = id }

func (b *userBinding) UserID() int64 { return b.userID }

func (b *userBinding) requireUser(graphType string) error {
	if b.userID == 0 {
		return domain.InvalidState("%s renderer used without a bound user", graphType)
	}
	return nil
}

// noCustomSubheading is embedded by renderers without a custom subheading.
type noCustomSubheading struct{}

func (noCustomSubheading) CustomSubheading() (string, bool) { return "", false }
