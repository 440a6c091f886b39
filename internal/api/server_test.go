package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-graphs/internal/domain"
)

type fakeService struct {
	got domain.GraphRequest
	err error
}

func (f *fakeService) RenderJSON(_ context.Context, req domain.GraphRequest) ([]byte, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"success":true,"graph_type":"` + req.GraphType + `"}`), nil
}

func TestServer_Graph(t *testing.T) {
	svc := &fakeService{}
	h := NewServer(svc)

	req := httptest.NewRequest(http.MethodGet, "/graph/balances?arg0=btc&days=30&delta=percent&technical=sma&period=5&user_id=7&user_hash=abc&no_cache=true", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"graph_type":"balances"}`, w.Body.String())

	assert.Equal(t, domain.GraphRequest{
		GraphType: "balances",
		Arg0:      "btc",
		Days:      30,
		Delta:     domain.DeltaPercent,
		Technical: &domain.TechnicalSpec{Type: "sma", Period: 5},
		UserID:    7,
		UserHash:  "abc",
		NoCache:   true,
	}, svc.got)
}

func TestServer_GraphDefaults(t *testing.T) {
	svc := &fakeService{}
	w := httptest.NewRecorder()
	NewServer(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph/ticker?arg0=bitstamp&arg0_resolved=usdbtc", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 45, svc.got.Days)
	assert.Equal(t, domain.DeltaNone, svc.got.Delta)
	assert.Nil(t, svc.got.Technical)
	assert.Equal(t, "usdbtc", svc.got.Arg0Resolved)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", domain.InvalidArgument("day window 8 is not permitted"), http.StatusBadRequest},
		{"auth", domain.AuthError("hash mismatch"), http.StatusForbidden},
		{"unknown type", fmt.Errorf("%w: nope", domain.ErrUnknownGraphType), http.StatusNotFound},
		{"invalid state", domain.InvalidState("row 0 has 1 cells for 2 columns"), http.StatusInternalServerError},
		{"storage", fmt.Errorf("get accounts: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewServer(&fakeService{err: tt.err}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph/balances", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_BadDelta(t *testing.T) {
	svc := &fakeService{}
	w := httptest.NewRecorder()
	NewServer(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph/ticker?delta=sideways", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.got.GraphType, "service must not be called")
}

func TestServer_HealthAndMetrics(t *testing.T) {
	h := NewServer(&fakeService{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
