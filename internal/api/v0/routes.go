// Package v0 provides the REST handlers of the buildasaur status API.
package v0

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buildasaur/buildasaur/internal/api/common"
	"github.com/buildasaur/buildasaur/internal/buildtemplate"
	"github.com/buildasaur/buildasaur/internal/storage"
	"github.com/buildasaur/buildasaur/internal/syncer"
	"github.com/buildasaur/buildasaur/internal/versions"
)

//go:generate mockgen -destination=mocks/mock_status_provider.go -package=mocks -source=routes.go StatusProvider

// StatusProvider exposes the syncers of the running process.
type StatusProvider interface {
	// Statuses returns a snapshot of every syncer.
	Statuses() []syncer.Status
	// Status returns the snapshot of the syncer called name.
	Status(name string) (syncer.Status, bool)
}

// SyncerStatusResponse is the JSON form of a syncer snapshot
type SyncerStatusResponse struct {
	Name                       string            `json:"name"`
	State                      string            `json:"state"`
	Active                     bool              `json:"active"`
	Syncing                    bool              `json:"syncing"`
	SyncInterval               string            `json:"syncInterval"`
	LastSyncStart              *time.Time        `json:"lastSyncStart,omitempty"`
	LastSyncFinished           *time.Time        `json:"lastSyncFinished,omitempty"`
	LastSuccessfulSyncFinished *time.Time        `json:"lastSuccessfulSyncFinished,omitempty"`
	LastSyncError              string            `json:"lastSyncError,omitempty"`
	Reports                    map[string]string `json:"reports"`
	SkippedTicks               int64             `json:"skippedTicks"`
}

// NewSyncerStatusResponse converts a syncer snapshot.
func NewSyncerStatusResponse(s syncer.Status) SyncerStatusResponse {
	resp := SyncerStatusResponse{
		Name:                       s.Name,
		State:                      s.State(),
		Active:                     s.Active,
		Syncing:                    s.Syncing,
		SyncInterval:               s.Interval.String(),
		LastSyncStart:              s.LastSyncStart,
		LastSyncFinished:           s.LastSyncFinished,
		LastSuccessfulSyncFinished: s.LastSuccessfulSyncFinished,
		Reports:                    s.Reports,
		SkippedTicks:               s.SkippedTicks,
	}
	if s.LastSyncError != nil {
		resp.LastSyncError = s.LastSyncError.Error()
	}
	if resp.Reports == nil {
		resp.Reports = map[string]string{}
	}
	return resp
}

// SyncerListResponse lists all syncers
type SyncerListResponse struct {
	Syncers []SyncerStatusResponse `json:"syncers"`
}

// TemplateListResponse lists build templates in their stored form
type TemplateListResponse struct {
	Templates []*buildtemplate.BuildTemplate `json:"templates"`
}

// Routes serves syncer and template resources
type Routes struct {
	statuses  StatusProvider
	templates storage.TemplateStore
}

// NewRoutes creates a new Routes instance
func NewRoutes(statuses StatusProvider, templates storage.TemplateStore) *Routes {
	return &Routes{
		statuses:  statuses,
		templates: templates,
	}
}

// Router creates the router for syncer and template resources
func Router(statuses StatusProvider, templates storage.TemplateStore) http.Handler {
	routes := NewRoutes(statuses, templates)

	r := chi.NewRouter()
	r.Get("/syncers", routes.listSyncers)
	r.Get("/syncers/{name}", routes.getSyncer)
	r.Get("/templates", routes.listTemplates)

	return r
}

// listSyncers handles GET /syncers
func (rr *Routes) listSyncers(w http.ResponseWriter, _ *http.Request) {
	statuses := rr.statuses.Statuses()
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	resp := SyncerListResponse{Syncers: make([]SyncerStatusResponse, 0, len(statuses))}
	for _, s := range statuses {
		resp.Syncers = append(resp.Syncers, NewSyncerStatusResponse(s))
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getSyncer handles GET /syncers/{name}
func (rr *Routes) getSyncer(w http.ResponseWriter, r *http.Request) {
	name, err := common.GetAndValidateURLParam(r, "name")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, ok := rr.statuses.Status(name)
	if !ok {
		common.WriteErrorResponse(w, "syncer "+name+" not found", http.StatusNotFound)
		return
	}
	common.WriteJSONResponse(w, NewSyncerStatusResponse(status), http.StatusOK)
}

// listTemplates handles GET /templates?project=<name>. Without a project all
// stored templates are returned.
func (rr *Routes) listTemplates(w http.ResponseWriter, r *http.Request) {
	var (
		templates []*buildtemplate.BuildTemplate
		err       error
	)
	if project := r.URL.Query().Get("project"); project != "" {
		templates, err = rr.templates.ListForProject(r.Context(), project)
	} else {
		templates, err = rr.templates.List(r.Context())
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list templates", "error", err)
		common.WriteErrorResponse(w, "Failed to list templates", http.StatusInternalServerError)
		return
	}
	if templates == nil {
		templates = []*buildtemplate.BuildTemplate{}
	}
	common.WriteJSONResponse(w, TemplateListResponse{Templates: templates}, http.StatusOK)
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(statuses StatusProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(statuses))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// readinessHandler reports ready once every syncer is running
func readinessHandler(statuses StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var stopped []string
		for _, s := range statuses.Statuses() {
			if !s.Active {
				stopped = append(stopped, s.Name)
			}
		}
		if len(stopped) > 0 {
			sort.Strings(stopped)
			common.WriteJSONResponse(w, map[string]any{
				"status":  "not ready",
				"stopped": stopped,
			}, http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
