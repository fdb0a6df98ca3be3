package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBudgetOp(t *testing.T) {
	m := New()
	m.ObserveBudgetOp("create", OutcomeSuccess)
	m.ObserveBudgetOp("create", OutcomeSuccess)
	m.ObserveBudgetOp("delete", OutcomeError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.budgetOps.WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.budgetOps.WithLabelValues("delete", OutcomeError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBudgetOp("create", OutcomeSuccess)
	m.ObserveEvent("budget.created", OutcomeSuccess)
	m.ObserveRequest(http.MethodGet, "/", 200, time.Millisecond)
}

func TestHandlerExposesRequests(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "POST /budgets", 201, 10*time.Millisecond)
	m.ObserveEvent("budget.created", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{code="201",method="POST",route="POST /budgets"} 1`), body)
	assert.True(t, strings.Contains(body, `budget_events_total{kind="budget.created",outcome="success"} 1`), body)
	assert.True(t, strings.Contains(body, "http_request_duration_seconds_bucket"))
}
