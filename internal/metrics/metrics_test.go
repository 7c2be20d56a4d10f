package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.QuotesTotal.Inc()
	m.QuotedMonthsTotal.Add(3)
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/preco_fixo", "200").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QuotedMonthsTotal))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `soy_fixed_price_http_requests_total{method="POST",route="/api/preco_fixo",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "soy_fixed_price_quotes_total 1")
}

func TestNewUsesIsolatedRegistries(t *testing.T) {
	// registering twice would panic on a shared registry
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
