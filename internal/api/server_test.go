package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildasaur/buildasaur/internal/api"
	"github.com/buildasaur/buildasaur/internal/api/v0/mocks"
	storagemocks "github.com/buildasaur/buildasaur/internal/storage/mocks"
	"github.com/buildasaur/buildasaur/internal/syncer"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	server := api.NewServer(mocks.NewMockStatusProvider(ctrl), storagemocks.NewMockTemplateStore(ctrl))

	rr := get(t, server, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestServerRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		setup      func(*mocks.MockStatusProvider, *storagemocks.MockTemplateStore)
		wantStatus int
	}{
		{
			name: "readiness",
			path: "/readiness",
			setup: func(p *mocks.MockStatusProvider, _ *storagemocks.MockTemplateStore) {
				p.EXPECT().Statuses().Return([]syncer.Status{{Name: "app", Active: true}})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "version",
			path:       "/version",
			setup:      func(*mocks.MockStatusProvider, *storagemocks.MockTemplateStore) {},
			wantStatus: http.StatusOK,
		},
		{
			name: "syncers",
			path: "/syncers",
			setup: func(p *mocks.MockStatusProvider, _ *storagemocks.MockTemplateStore) {
				p.EXPECT().Statuses().Return([]syncer.Status{{Name: "app", Interval: time.Minute}})
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "one syncer",
			path: "/syncers/app",
			setup: func(p *mocks.MockStatusProvider, _ *storagemocks.MockTemplateStore) {
				p.EXPECT().Status("app").Return(syncer.Status{Name: "app"}, true)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "templates",
			path: "/templates?project=app",
			setup: func(_ *mocks.MockStatusProvider, s *storagemocks.MockTemplateStore) {
				s.EXPECT().ListForProject(gomock.Any(), "app").Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "metrics not enabled",
			path:       "/metrics",
			setup:      func(*mocks.MockStatusProvider, *storagemocks.MockTemplateStore) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown path",
			path:       "/registry/v0.1/servers",
			setup:      func(*mocks.MockStatusProvider, *storagemocks.MockTemplateStore) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			provider := mocks.NewMockStatusProvider(ctrl)
			store := storagemocks.NewMockTemplateStore(ctrl)
			tt.setup(provider, store)

			rr := get(t, api.NewServer(provider, store), tt.path)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestServerOptions(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	var seen []string
	record := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# HELP buildasaur_sync_cycles_total\n"))
	})

	server := api.NewServer(
		mocks.NewMockStatusProvider(ctrl),
		storagemocks.NewMockTemplateStore(ctrl),
		api.WithMiddlewares(record, api.LoggingMiddleware),
		api.WithMetricsHandler(metrics),
	)

	rr := get(t, server, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "buildasaur_sync_cycles_total")

	get(t, server, "/health")
	assert.Equal(t, []string{"/metrics", "/health"}, seen)
}
