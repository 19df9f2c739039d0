package v0_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	v0 "github.com/buildasaur/buildasaur/internal/api/v0"
	"github.com/buildasaur/buildasaur/internal/api/v0/mocks"
	"github.com/buildasaur/buildasaur/internal/buildtemplate"
	storagemocks "github.com/buildasaur/buildasaur/internal/storage/mocks"
	"github.com/buildasaur/buildasaur/internal/syncer"
)

func sampleStatuses() []syncer.Status {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Second)
	return []syncer.Status{
		{
			Name:             "zeta",
			Active:           true,
			Syncing:          true,
			Interval:         30 * time.Second,
			LastSyncStart:    &started,
			LastSyncFinished: &finished,
			LastSyncError:    errors.New("Syncing encountered a problem. Error: boom. Context: listing bots"),
			Reports:          map[string]string{"pull_requests": "2"},
			SkippedTicks:     4,
		},
		{
			Name:     "alpha",
			Interval: 15 * time.Second,
		},
	}
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		statuses   []syncer.Status
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "health",
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "ok"},
		},
		{
			name:       "ready when all syncers run",
			path:       "/readiness",
			statuses:   []syncer.Status{{Name: "a", Active: true}},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "ready"},
		},
		{
			name:       "not ready with stopped syncers",
			path:       "/readiness",
			statuses:   []syncer.Status{{Name: "b"}, {Name: "a", Active: true}, {Name: "c"}},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]any{"status": "not ready", "stopped": []any{"b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			provider := mocks.NewMockStatusProvider(ctrl)
			provider.EXPECT().Statuses().Return(tt.statuses).AnyTimes()

			rr := serve(t, v0.HealthRouter(provider), tt.path)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestHealthRouter_Version(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	rr := serve(t, v0.HealthRouter(mocks.NewMockStatusProvider(ctrl)), "/version")

	assert.Equal(t, http.StatusOK, rr.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
		assert.Contains(t, response, key)
	}
}

func TestRouter_ListSyncers(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)

	provider := mocks.NewMockStatusProvider(ctrl)
	provider.EXPECT().Statuses().Return(sampleStatuses())

	rr := serve(t, v0.Router(provider, storagemocks.NewMockTemplateStore(ctrl)), "/syncers")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp v0.SyncerListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Syncers, 2)

	alpha, zeta := resp.Syncers[0], resp.Syncers[1]
	assert.Equal(t, "alpha", alpha.Name, "sorted by name")
	assert.Equal(t, "stopped", alpha.State)
	assert.Equal(t, "15s", alpha.SyncInterval)
	assert.Empty(t, alpha.LastSyncError)
	assert.NotNil(t, alpha.Reports)

	assert.Equal(t, "syncing", zeta.State)
	assert.Contains(t, zeta.LastSyncError, "Context: listing bots")
	assert.Equal(t, int64(4), zeta.SkippedTicks)
	assert.Equal(t, "2", zeta.Reports["pull_requests"])
	require.NotNil(t, zeta.LastSyncFinished)
	assert.Nil(t, zeta.LastSuccessfulSyncFinished)
}

func TestRouter_GetSyncer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		setup      func(*mocks.MockStatusProvider)
		wantStatus int
		wantName   string
		wantError  string
	}{
		{
			name: "found",
			path: "/syncers/zeta",
			setup: func(m *mocks.MockStatusProvider) {
				m.EXPECT().Status("zeta").Return(sampleStatuses()[0], true)
			},
			wantStatus: http.StatusOK,
			wantName:   "zeta",
		},
		{
			name: "unknown",
			path: "/syncers/nope",
			setup: func(m *mocks.MockStatusProvider) {
				m.EXPECT().Status("nope").Return(syncer.Status{}, false)
			},
			wantStatus: http.StatusNotFound,
			wantError:  "syncer nope not found",
		},
		{
			name:       "whitespace in name",
			path:       "/syncers/my%20app",
			setup:      func(*mocks.MockStatusProvider) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "name cannot contain whitespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			provider := mocks.NewMockStatusProvider(ctrl)
			tt.setup(provider)

			rr := serve(t, v0.Router(provider, storagemocks.NewMockTemplateStore(ctrl)), tt.path)
			assert.Equal(t, tt.wantStatus, rr.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			assert.Equal(t, tt.wantName, body["name"])
		})
	}
}

func TestRouter_ListTemplates(t *testing.T) {
	t.Parallel()

	name, scheme := "Default", "App"
	tpl := buildtemplate.New("Buildasaur")
	tpl.Name, tpl.Scheme = &name, &scheme
	shared := buildtemplate.New("")
	shared.ProjectName = nil

	tests := []struct {
		name       string
		path       string
		setup      func(*storagemocks.MockTemplateStore)
		wantStatus int
		wantIDs    []string
	}{
		{
			name: "for project",
			path: "/templates?project=Buildasaur",
			setup: func(m *storagemocks.MockTemplateStore) {
				m.EXPECT().ListForProject(gomock.Any(), "Buildasaur").
					Return([]*buildtemplate.BuildTemplate{tpl, shared}, nil)
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{tpl.ID, shared.ID},
		},
		{
			name: "all",
			path: "/templates",
			setup: func(m *storagemocks.MockTemplateStore) {
				m.EXPECT().List(gomock.Any()).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
		},
		{
			name: "store failure",
			path: "/templates",
			setup: func(m *storagemocks.MockTemplateStore) {
				m.EXPECT().List(gomock.Any()).Return(nil, errors.New("permission denied"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)

			store := storagemocks.NewMockTemplateStore(ctrl)
			tt.setup(store)

			rr := serve(t, v0.Router(mocks.NewMockStatusProvider(ctrl), store), tt.path)
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, rr.Body.String(), "Failed to list templates")
				return
			}

			var body struct {
				Templates []map[string]any `json:"templates"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			ids := make([]string, 0, len(body.Templates))
			for _, tpl := range body.Templates {
				ids = append(ids, tpl["id"].(string))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
