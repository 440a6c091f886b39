package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"portfolio-graphs/internal/domain"
)

type renderCmd struct {
	common       commonFlags
	arg0         string
	arg0Resolved string
	days         int
	delta        string
	technical    string
	period       int
	userID       int64
	userHash     string
	noCache      bool
}

func (*renderCmd) Name() string     { return "render" }
func (*renderCmd) Synopsis() string { return "render one graph as JSON" }
func (*renderCmd) Usage() string {
	return `graphs render [-arg0 <arg>] [-days <n>] [-delta absolute|percent] [-technical <type> -period <n>] <graph_type>

  Runs the render pipeline for one request and prints the result JSON,
  going through the graph cache like the HTTP API.
`
}

func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	c.common.register(f)
	f.StringVar(&c.arg0, "arg0", "", "First graph argument (currency, exchange or summary type)")
	f.StringVar(&c.arg0Resolved, "arg0-resolved", "", "Resolved form of arg0, e.g. the ticker pair")
	f.IntVar(&c.days, "days", 45, "Day window")
	f.StringVar(&c.delta, "delta", "", "Delta mode: absolute or percent")
	f.StringVar(&c.technical, "technical", "", "Technical indicator: sma, ema, rsi, bollinger or roc")
	f.IntVar(&c.period, "period", 0, "Technical indicator period")
	f.Int64Var(&c.userID, "user-id", 0, "User the graph is rendered for")
	f.StringVar(&c.userHash, "user-hash", "", "Authentication hash of the user")
	f.BoolVar(&c.noCache, "no-cache", false, "Recompute and replace the cached result")
}

func (c *renderCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one graph type is required.")
		return subcommands.ExitUsageError
	}
	delta, err := domain.ParseDeltaMode(c.delta)
	if err != nil {
		return fail("%v", err)
	}

	cfg, err := c.common.load()
	if err != nil {
		return fail("%v", err)
	}
	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		return fail("create stores: %v", err)
	}
	defer cleanup()

	orch, _, err := newOrchestrator(cfg, stores)
	if err != nil {
		return fail("%v", err)
	}

	req := domain.GraphRequest{
		GraphType:    f.Arg(0),
		Arg0:         c.arg0,
		Arg0Resolved: c.arg0Resolved,
		Days:         c.days,
		Delta:        delta,
		UserID:       c.userID,
		UserHash:     c.userHash,
		NoCache:      c.noCache,
	}
	if c.technical != "" {
		req.Technical = &domain.TechnicalSpec{Type: c.technical, Period: c.period}
	}

	data, err := orch.RenderJSON(ctx, req)
	if err != nil {
		return fail("render %s: %v", req.GraphType, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fail("format result: %v", err)
	}
	fmt.Println(out.String())
	return subcommands.ExitSuccess
}
