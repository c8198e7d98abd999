package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterAppMetrics_Idempotent(t *testing.T) {
	RegisterAppMetrics()
	RegisterAppMetrics()

	if err := prometheus.Register(SearchRequestsTotal); err == nil {
		t.Fatal("expected AlreadyRegisteredError after RegisterAppMetrics")
	}
}

func TestSearchRequestsTotal_ByMode(t *testing.T) {
	before := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("fallback"))
	SearchRequestsTotal.WithLabelValues("fallback").Inc()

	if got := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("fallback")); got != before+1 {
		t.Errorf("search_requests_total{mode=fallback} = %f, want %f", got, before+1)
	}
}

func TestImportRowsTotal_ByOutcome(t *testing.T) {
	ImportRowsTotal.WithLabelValues("indexed").Add(3)
	ImportRowsTotal.WithLabelValues("failed").Add(1)

	if n := testutil.CollectAndCount(ImportRowsTotal); n < 2 {
		t.Errorf("expected at least 2 series, got %d", n)
	}
}
