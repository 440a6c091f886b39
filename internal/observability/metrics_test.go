package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCacheCompute(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.CacheComputes.WithLabelValues("graph_test", "error"))
	RecordCacheCompute("graph_test", errors.New("boom"))
	after := testutil.ToFloat64(DefaultMetrics.CacheComputes.WithLabelValues("graph_test", "error"))
	if after-before != 1 {
		t.Errorf("expected error counter to increase by 1, got %v", after-before)
	}
}

func TestRecordDBQuery_CountsErrors(t *testing.T) {
	c := DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "test_op")
	before := testutil.ToFloat64(c)
	RecordDBQuery("postgres", "test_op", 0.01, nil)
	RecordDBQuery("postgres", "test_op", 0.01, errors.New("x"))
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("expected 1 error recorded, got %v", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "2xx", 304: "3xx", 404: "4xx", 503: "5xx"}
	for code, want := range tests {
		if got := statusLabel(code); got != want {
			t.Errorf("statusLabel(%d) = %s, want %s", code, got, want)
		}
	}
}
