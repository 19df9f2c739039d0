package ciserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildasaur/buildasaur/internal/ciserver"
	"github.com/buildasaur/buildasaur/internal/httpclient"
	httpmocks "github.com/buildasaur/buildasaur/internal/httpclient/mocks"
)

// fakeServer is a tiny in-memory CI server.
type fakeServer struct {
	mu       sync.Mutex
	requests []string
	handlers map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	fs := &fakeServer{handlers: handlers}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "builder" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := r.Method + " " + r.URL.Path
		fs.mu.Lock()
		fs.requests = append(fs.requests, key)
		h, ok := fs.handlers[key]
		fs.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"no route ` + key + `"}`))
			return
		}
		h(w, r)
	}))
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t, map[string]http.HandlerFunc{
		"GET /api/ping": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
	})

	require.NoError(t, ciserver.NewClient(server.URL, "builder", "secret").Ping(context.Background()))
	require.NoError(t, ciserver.NewClient(server.URL+"/api/", "builder", "secret").Ping(context.Background()))

	err := ciserver.NewClient(server.URL, "builder", "wrong").Ping(context.Background())
	require.Error(t, err)
	assert.True(t, httpclient.IsStatus(err, http.StatusUnauthorized))
}

func TestClient_ListBots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		wantNames     []string
		errorContains string
	}{
		{
			name: "results envelope",
			body: `{"count":2,"results":[
				{"_id":"1","_rev":"r1","name":"BuildaBot [me/app] PR #1","type":1,
				 "configuration":{"schemeName":"App","performsTestAction":true}},
				{"_id":"2","_rev":"r2","name":"Nightly","type":1,"configuration":{}}
			]}`,
			wantNames: []string{"BuildaBot [me/app] PR #1", "Nightly"},
		},
		{
			name:      "empty results",
			body:      `{"count":0,"results":[]}`,
			wantNames: []string{},
		},
		{
			name:          "missing results",
			body:          `{"count":0}`,
			errorContains: "response has no results",
		},
		{
			name:          "not JSON",
			body:          `<html>`,
			errorContains: "not valid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newFakeServer(t, map[string]http.HandlerFunc{"GET /api/bots": respond(tt.body)})
			bots, err := ciserver.NewClient(server.URL, "builder", "secret").ListBots(context.Background())

			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(bots))
			for _, b := range bots {
				names = append(names, b.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestClient_CreateUpdateDeleteBot(t *testing.T) {
	t.Parallel()

	var created, updated map[string]any
	var updateQuery string
	server := newFakeServer(t, map[string]http.HandlerFunc{
		"POST /api/bots": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &created)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"_id":"bot-1","_rev":"1-a","name":"BuildaBot [me/app] PR #7","type":1,"configuration":{"schemeName":"App"}}`))
		},
		"PATCH /api/bots/bot-1": func(w http.ResponseWriter, r *http.Request) {
			updateQuery = r.URL.RawQuery
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &updated)
			_, _ = w.Write([]byte(`{"_id":"bot-1","_rev":"2-b","name":"BuildaBot [me/app] PR #7","type":1,"configuration":{"schemeName":"AppTests"}}`))
		},
		"DELETE /api/bots/bot-1/2-b": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})
	client := ciserver.NewClient(server.URL, "builder", "secret")
	ctx := context.Background()

	bot, err := client.CreateBot(ctx, ciserver.Bot{
		ID:            "ignored",
		Name:          "BuildaBot [me/app] PR #7",
		Type:          ciserver.BotTypeIntegration,
		Configuration: ciserver.BotConfiguration{SchemeName: "App"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bot-1", bot.ID)
	assert.Equal(t, "1-a", bot.Rev)
	assert.NotContains(t, created, "_id", "server assigns ids")
	assert.Equal(t, "App", created["configuration"].(map[string]any)["schemeName"])

	bot.Configuration.SchemeName = "AppTests"
	bot, err = client.UpdateBot(ctx, *bot)
	require.NoError(t, err)
	assert.Equal(t, "2-b", bot.Rev)
	assert.Equal(t, "overwriteBlueprint=true", updateQuery)
	assert.Equal(t, "AppTests", updated["configuration"].(map[string]any)["schemeName"])

	require.NoError(t, client.DeleteBot(ctx, bot.ID, bot.Rev))
}

func TestClient_UpdateBot_RequiresID(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := ciserver.NewClient("https://ci.local", "", "", ciserver.WithHTTPClient(httpmocks.NewMockClient(ctrl)))

	_, err := client.UpdateBot(context.Background(), ciserver.Bot{Name: "x"})
	require.Error(t, err)
}

func TestClient_LatestIntegration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantNil      bool
		wantNumber   int
		wantRevision string
		wantDone     bool
	}{
		{
			name:    "never integrated",
			body:    `{"count":0,"results":[]}`,
			wantNil: true,
		},
		{
			name: "picks the highest number",
			body: `{"count":2,"results":[
				{"_id":"i1","number":1,"currentStep":"completed","result":"succeeded"},
				{"_id":"i2","number":2,"currentStep":"building","result":"unknown",
				 "revisionBlueprint":{"DVTSourceControlWorkspaceBlueprintLocationsKey":{
				   "A1B2":{"DVTSourceControlLocationRevisionKey":"deadbeef"}}}}
			]}`,
			wantNumber:   2,
			wantRevision: "deadbeef",
		},
		{
			name:       "completed integration",
			body:       `{"count":1,"results":[{"_id":"i3","number":3,"currentStep":"completed","result":"test-failures","buildResultSummary":{"testFailureCount":2}}]}`,
			wantNumber: 3,
			wantDone:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newFakeServer(t, map[string]http.HandlerFunc{
				"GET /api/bots/bot-1/integrations": func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "1", r.URL.Query().Get("last"))
					_, _ = w.Write([]byte(tt.body))
				},
			})

			integration, err := ciserver.NewClient(server.URL, "builder", "secret").
				LatestIntegration(context.Background(), "bot-1")
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, integration)
				return
			}
			require.NotNil(t, integration)
			assert.Equal(t, tt.wantNumber, integration.Number)
			assert.Equal(t, tt.wantRevision, integration.Revision)
			assert.Equal(t, tt.wantDone, integration.Completed())
		})
	}
}

func TestClient_StartIntegration(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t, map[string]http.HandlerFunc{
		"POST /api/bots/bot-1/integrations": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"_id":"i9","number":9,"currentStep":"pending"}`))
		},
	})

	integration, err := ciserver.NewClient(server.URL, "builder", "secret").
		StartIntegration(context.Background(), "bot-1")
	require.NoError(t, err)
	assert.Equal(t, 9, integration.Number)
	assert.False(t, integration.Completed())
}

func TestBlueprint_Branch(t *testing.T) {
	t.Parallel()

	bp := ciserver.Blueprint{
		PrimaryRemoteRepository: "A1B2",
		Locations: map[string]ciserver.BlueprintLocation{
			"A1B2": {BranchIdentifier: "feature/x"},
		},
	}
	assert.Equal(t, "feature/x", bp.Branch())
	assert.Empty(t, ciserver.Blueprint{}.Branch())
}
