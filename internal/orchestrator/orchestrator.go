// Package orchestrator renders graph requests.
// It coordinates: renderer → auth and day checks → data → delta → technicals → trim → result
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"portfolio-graphs/internal/cache"
	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/identity"
	"portfolio-graphs/internal/idhash"
	"portfolio-graphs/internal/observability"
	"portfolio-graphs/internal/renderer"
	"portfolio-graphs/internal/transform"
)

// RendererFactory builds renderers by graph type.
type RendererFactory interface {
	Construct(graphType, arg0, arg0Resolved string) (renderer.DataRenderer, error)
}

// UserDirectory resolves user ids.
type UserDirectory interface {
	LookupUser(ctx context.Context, id int64) (*domain.User, error)
}

// AuthHasher verifies user authentication hashes.
type AuthHasher interface {
	Verify(u *domain.User, hash string) bool
}

// Orchestrator renders graph requests and caches their serialized results.
type Orchestrator struct {
	registry RendererFactory
	users    UserDirectory
	hasher   AuthHasher
	cache    *cache.Cache

	permittedDays    []int
	siteName         string
	debug            bool
	timeDecimals     int32
	deltaOpts        transform.DeltaOptions
	addAccountsURL   string
	addCurrenciesURL string
	cacheTTL         time.Duration

	now    func() time.Time
	logger *slog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Collaborators
	Registry RendererFactory
	Users    UserDirectory
	Hasher   AuthHasher
	Cache    *cache.Cache // nil renders every RenderJSON call

	// Rendering
	PermittedDays []int // day windows besides domain.MaxDays
	SiteName      string
	Debug         bool  // adds the request and diagnostics to results
	TimeDecimals  int32 // decimals of the elapsed time field
	DropFirstRow  bool  // delta drops (true) or zeroes (false) the first row

	// Call-to-action links of no-data results
	AddAccountsURL   string
	AddCurrenciesURL string

	CacheTTL time.Duration // 0 disables caching

	Now    func() time.Time
	Logger *slog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		registry:         opts.Registry,
		users:            opts.Users,
		hasher:           opts.Hasher,
		cache:            opts.Cache,
		permittedDays:    append([]int(nil), opts.PermittedDays...),
		siteName:         opts.SiteName,
		debug:            opts.Debug,
		timeDecimals:     opts.TimeDecimals,
		deltaOpts:        transform.DeltaOptions{DropFirstRow: opts.DropFirstRow},
		addAccountsURL:   opts.AddAccountsURL,
		addCurrenciesURL: opts.AddCurrenciesURL,
		cacheTTL:         opts.CacheTTL,
		now:              opts.Now,
		logger:           opts.Logger,
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// renderState carries the values a render accumulates between steps.
type renderState struct {
	req       domain.GraphRequest
	renderer  renderer.DataRenderer
	caps      domain.Capabilities
	user      *domain.User
	series    domain.Series
	chartType domain.ChartType
	noData    domain.NoDataKind
	text      string
	diag      domain.Diagnostics
}

// Render runs the pipeline for one request.
// Steps:
//  1. Build the renderer
//  2. Authenticate and bind the user
//  3. Check the day window
//  4. Fetch data, including the lookback rows delta and technicals need
//  5. Delta
//  6. Empty series short-circuit
//  7. Technicals
//  8. Trim to the requested window
//  9. No-data message
//  10. Assemble the result
//
// Fatal errors wrap one of the domain error kinds; no-data outcomes are successful results.
func (o *Orchestrator) Render(ctx context.Context, req domain.GraphRequest) (*domain.Result, error) {
	began := time.Now()

	res, err := o.render(ctx, req, began)
	seconds := time.Since(began).Seconds()
	if err != nil {
		observability.RecordRender(req.GraphType, errorOutcome(err), seconds)
		o.logger.Warn("render failed", "graph_type", req.GraphType, "user_id", req.UserID, "error", err)
		return nil, err
	}

	outcome := "ok"
	if res.Type == domain.ChartNoData {
		outcome = "nodata"
	}
	observability.RecordRender(req.GraphType, outcome, seconds)
	o.logger.Debug("rendered graph",
		"graph_type", req.GraphType,
		"type", res.Type,
		"rows", len(res.Data),
		"ms", res.Time,
	)
	return res, nil
}

func (o *Orchestrator) render(ctx context.Context, req domain.GraphRequest, began time.Time) (*domain.Result, error) {
	// Step 1: renderer
	r, err := o.registry.Construct(req.GraphType, req.Arg0, req.Arg0Resolved)
	if err != nil {
		return nil, err
	}
	st := &renderState{req: req, renderer: r, caps: r.Capabilities()}
	st.chartType = st.caps.ChartType

	// Step 2: user
	if st.caps.RequiresUser {
		if err := o.bindUser(ctx, st); err != nil {
			return nil, err
		}
	}

	// Step 3: day window, and the indicator before any data is fetched
	if st.caps.UsesDays && !o.dayPermitted(req.Days) {
		return nil, domain.InvalidArgument("day window %d is not permitted", req.Days)
	}
	if o.technicalsApply(st) && !transform.IsIndicator(req.Technical.Type) {
		return nil, domain.InvalidArgument("unknown technical type %q", req.Technical.Type)
	}

	// Step 4: data
	data, err := r.GetData(ctx, o.fetchDays(st))
	if err != nil {
		return nil, err
	}

	if data.IsNoData() {
		// Step 9: no-data branch
		o.setNoData(st, data.NoData)
	} else {
		if err := o.transformSeries(st, data.Series); err != nil {
			return nil, err
		}
	}

	return o.assemble(st, began)
}

// bindUser authenticates the request's user and binds it to the renderer.
func (o *Orchestrator) bindUser(ctx context.Context, st *renderState) error {
	req := st.req
	if !req.HasUser() || req.UserHash == "" {
		return domain.AuthError("%s requires a user id and hash", req.GraphType)
	}

	user, err := o.users.LookupUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return domain.AuthError("unknown user %d", req.UserID)
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if !o.hasher.Verify(user, req.UserHash) {
		return domain.AuthError("hash mismatch for user %d", req.UserID)
	}
	if st.caps.RequiresAdmin && !user.IsAdmin {
		return domain.AuthError("%s requires an administrator", req.GraphType)
	}

	st.user = user
	st.renderer.SetUser(user.ID)
	return nil
}

func (o *Orchestrator) dayPermitted(days int) bool {
	return days == domain.MaxDays || slices.Contains(o.permittedDays, days)
}

func (o *Orchestrator) technicalsApply(st *renderState) bool {
	return st.caps.CanHaveTechnicals && st.req.HasTechnical()
}

// fetchDays widens the requested window by the rows that delta and technicals consume.
func (o *Orchestrator) fetchDays(st *renderState) int {
	if !st.caps.UsesDays {
		return st.req.Days
	}
	days := st.req.Days
	if o.technicalsApply(st) {
		days += transform.Lookback(*st.req.Technical)
	}
	if st.req.Delta != domain.DeltaNone {
		days++
	}
	return days
}

// transformSeries runs steps 5 to 8.
func (o *Orchestrator) transformSeries(st *renderState, raw domain.Series) error {
	st.diag.RowsFetched = raw.Len()

	// Step 5: delta
	series, err := transform.ApplyDelta(raw, st.req.Delta, o.deltaOpts)
	if err != nil {
		return err
	}
	st.diag.RowsAfterDelta = series.Len()

	// Step 6: nothing to chart
	if series.IsEmpty() {
		st.chartType = domain.ChartNoData
		st.text = "There is not yet any data to display for this graph."
		st.series = series
		return nil
	}

	// Step 7: technicals
	if o.technicalsApply(st) {
		series, err = transform.ApplyTechnicals(series, *st.req.Technical)
		if err != nil {
			return err
		}
	}

	// Step 8: trim the lookback rows
	if st.caps.UsesDays {
		var discarded int
		series, discarded = transform.TrimRange(series, st.req.Days, o.now())
		st.diag.RowsDiscarded = discarded
		observability.RecordRowsDiscarded(st.req.GraphType, discarded)
	}

	st.series = series
	return nil
}

func (o *Orchestrator) setNoData(st *renderState, kind domain.NoDataKind) {
	st.chartType = domain.ChartNoData
	st.noData = kind
	st.series = domain.Series{}
	switch kind {
	case domain.NoDataMissingAccounts:
		st.text = fmt.Sprintf("Either you have not specified any accounts or addresses, or these addresses and accounts have not yet been updated by %s.", o.siteName)
	case domain.NoDataMissingCurrencies:
		st.text = fmt.Sprintf("You need to enable some currencies in your preferences, or these summaries have not yet been updated by %s.", o.siteName)
	}
	observability.RecordNoData(st.req.GraphType, string(kind))
}

// assemble runs steps 10 to 16.
func (o *Orchestrator) assemble(st *renderState, began time.Time) (*domain.Result, error) {
	meta := st.renderer.Metadata()
	now := o.now()

	res := &domain.Result{
		Success: true,
		Type:    st.chartType,
		Text:    st.text,
		Heading: domain.Heading{
			Label: meta.Label,
			Args:  meta.TitleArgs,
			URL:   meta.URL,
			Title: meta.Title,
		},
		H1:        meta.H1,
		H2:        meta.H2,
		NoHeader:  meta.NoHeader,
		Classes:   meta.Classes,
		GraphType: st.req.GraphType,
	}

	// Step 11: subheading
	if st.chartType != domain.ChartNoData && st.caps.HasSubheading {
		sub, err := o.subheading(st)
		if err != nil {
			return nil, err
		}
		res.Subheading = sub
	}

	// Step 12: call to action
	res.Extra = o.extra(st.noData)

	// Steps 13 and 14: finite values only, one cell per column
	series := st.series.NormalizeValues()
	if err := series.Validate(); err != nil {
		return nil, err
	}
	res.Key = series.KeyColumn.Key
	res.Columns = make([]domain.Column, 0, len(series.Columns)+1)
	if res.Key != "" {
		res.Columns = append(res.Columns, series.KeyColumn)
	}
	res.Columns = append(res.Columns, series.Columns...)
	res.Data = make([]domain.ResultRow, len(series.Rows))
	for i, r := range series.Rows {
		res.Data[i] = domain.ResultRow{Key: r.Key, Values: r.Values}
	}
	if series.LastUpdated != nil && st.chartType != domain.ChartNoData {
		res.LastUpdated = humanize.RelTime(*series.LastUpdated, now, "ago", "from now")
	}

	// Step 15: stale summaries
	if st.caps.RequiresUser && st.user != nil && st.caps.UsesSummaries {
		res.OutOfDate = st.user.NeedsSummaryRefresh()
	}

	// Step 16: stamps
	res.Timestamp = now.Unix()
	elapsedMs := float64(time.Since(began).Microseconds()) / 1000
	res.Time = decimal.NewFromFloat(elapsedMs).Round(o.timeDecimals).InexactFloat64()

	if o.debug {
		req := st.req
		diag := st.diag
		res.Request = &req
		res.Diagnostics = &diag
	}
	return res, nil
}

func (o *Orchestrator) subheading(st *renderState) (string, error) {
	// custom subheadings report raw values, never the delta series
	if custom, ok := st.renderer.CustomSubheading(); ok {
		return custom, nil
	}
	var sub string
	if st.chartType == domain.ChartPie {
		if st.series.Len() != 1 {
			return "", domain.InvalidState("piechart %s has %d rows, want 1", st.req.GraphType, st.series.Len())
		}
		sub = transform.FormatNumber(transform.SumRow(st.series.Columns, st.series.Rows[0]))
	} else {
		sub = transform.FormatSubheading(st.series)
	}
	if sub != "" && st.req.Delta == domain.DeltaPercent && !strings.HasSuffix(sub, "%") {
		sub += "%"
	}
	return sub, nil
}

func (o *Orchestrator) extra(kind domain.NoDataKind) *domain.Extra {
	switch kind {
	case domain.NoDataMissingAccounts:
		return &domain.Extra{Kind: domain.ExtraAddAccounts, Label: "Add accounts and addresses", URL: o.addAccountsURL}
	case domain.NoDataMissingCurrencies:
		return &domain.Extra{Kind: domain.ExtraAddCurrencies, Label: "Configure currencies", URL: o.addCurrenciesURL}
	default:
		return nil
	}
}

// RenderJSON returns the serialized result of req, from the cache while it is fresh.
// NoCache requests skip the cache read but still store their result. Failed renders are never cached.
func (o *Orchestrator) RenderJSON(ctx context.Context, req domain.GraphRequest) ([]byte, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		res, err := o.Render(ctx, req)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return data, nil
	}

	if o.cache == nil {
		return compute(ctx)
	}

	namespace := idhash.GraphNamespace(req.GraphType)
	hash := idhash.ComputeGraphHash(req)
	if req.NoCache {
		return o.cache.Refresh(ctx, namespace, hash, o.cacheTTL, compute)
	}

	data, hit, err := o.cache.GetOrCompute(ctx, namespace, hash, o.cacheTTL, compute)
	if err != nil {
		return nil, err
	}
	if hit {
		o.logger.Debug("served cached graph", "namespace", namespace, "hash", hash)
	}
	return data, nil
}

// errorOutcome names the error kind of a failed render for metrics.
func errorOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownGraphType):
		return "unknown_graph_type"
	case errors.Is(err, domain.ErrAuth):
		return "auth"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}
