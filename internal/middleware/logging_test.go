package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysql-graphql/internal/logging"
)

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Level: "error"})

	var seenID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware(logger)(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoggingMiddleware_PropagatesClientRequestID(t *testing.T) {
	logger := logging.NewLogger(logging.Config{Level: "error"})

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client-supplied", logging.GetRequestID(r.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec := httptest.NewRecorder()
	LoggingMiddleware(logger)(inner).ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	MetricsMiddleware(metrics)(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	count := testutil.ToFloat64(metrics.requests.WithLabelValues("POST", "/graphql", "418"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.inflight))
}
