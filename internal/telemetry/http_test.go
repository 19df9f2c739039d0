package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestRouter(mw ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/syncers/{name}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "name") == "missing" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewHTTPMetrics(mp)
	require.NoError(t, err)

	router := newTestRouter(metrics.Middleware)
	for _, path := range []string{"/syncers/a", "/syncers/b", "/syncers/missing"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	found := collect(t, reader, HTTPMetricsMeterName)
	total, ok := found["buildasaur_http_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value("route")
		assert.Equal(t, "/syncers/{name}", route.AsString())
		status, _ := dp.Attributes.Value("status_code")
		byStatus[status.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"200": 2, "404": 1}, byStatus)
}

func TestHTTPMetrics_NilPassesThrough(t *testing.T) {
	t.Parallel()

	var metrics *HTTPMetrics
	router := newTestRouter(metrics.Middleware)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/syncers/a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	router := newTestRouter(TracingMiddleware(tp))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/syncers/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /syncers/{name}", spans[0].Name)
	assert.Equal(t, "Error", spans[0].Status.Code.String())
}

func TestTracingMiddleware_NilProvider(t *testing.T) {
	t.Parallel()

	router := newTestRouter(TracingMiddleware(nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/syncers/a", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
