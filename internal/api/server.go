// Package api exposes graph rendering over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"portfolio-graphs/internal/domain"
	"portfolio-graphs/internal/observability"
)

// GraphService renders serialized graph results.
type GraphService interface {
	RenderJSON(ctx context.Context, req domain.GraphRequest) ([]byte, error)
}

type graphInput struct {
	GraphType       string `path:"graph_type" doc:"Registered graph type, e.g. balances"`
	Arg0            string `query:"arg0" doc:"First graph argument (currency, exchange or summary type)"`
	Arg0Resolved    string `query:"arg0_resolved" doc:"Resolved form of arg0, e.g. the ticker pair"`
	Days            int    `query:"days" default:"45" doc:"Day window; one of the permitted windows or 366 for all data"`
	Delta           string `query:"delta" doc:"Period-over-period transform: none, absolute or percent"`
	Technical       string `query:"technical" doc:"Technical indicator: sma, ema, rsi, bollinger or roc"`
	TechnicalPeriod int    `query:"period" doc:"Technical indicator period"`
	UserID          int64  `query:"user_id" doc:"User the graph is rendered for"`
	UserHash        string `query:"user_hash" doc:"Authentication hash of the user"`
	NoCache         bool   `query:"no_cache" doc:"Recompute and replace the cached result"`
}

type graphOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type healthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

// NewServer returns the HTTP handler serving /graph/{graph_type}, /health and /metrics.
func NewServer(svc GraphService) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Portfolio Graphs API", "1.0.0")
	api := humachi.New(router, cfg)

	router.Handle("/metrics", observability.Handler())

	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "render-graph", Method: http.MethodGet, Path: "/graph/{graph_type}", Summary: "Render a graph", Tags: []string{"Graphs"}},
		func(ctx context.Context, input *graphInput) (*graphOutput, error) {
			req, err := input.request()
			if err != nil {
				return nil, mapErr(err)
			}
			data, err := svc.RenderJSON(ctx, req)
			if err != nil {
				return nil, mapErr(err)
			}
			return &graphOutput{ContentType: "application/json", Body: data}, nil
		})

	return router
}

func (in *graphInput) request() (domain.GraphRequest, error) {
	delta, err := domain.ParseDeltaMode(in.Delta)
	if err != nil {
		return domain.GraphRequest{}, err
	}
	req := domain.GraphRequest{
		GraphType:    in.GraphType,
		Arg0:         in.Arg0,
		Arg0Resolved: in.Arg0Resolved,
		Days:         in.Days,
		Delta:        delta,
		UserID:       in.UserID,
		UserHash:     in.UserHash,
		NoCache:      in.NoCache,
	}
	if in.Technical != "" {
		req.Technical = &domain.TechnicalSpec{Type: in.Technical, Period: in.TechnicalPeriod}
	}
	return req, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, domain.ErrAuth):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrUnknownGraphType):
		return huma.Error404NotFound(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
