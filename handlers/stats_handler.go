package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"nba-predictions-go/catalog"
	"nba-predictions-go/models"
	"nba-predictions-go/services"
)

// StatsHandler serves the dashboard, team stats and prediction history
type StatsHandler struct {
	stats   *services.StatsService
	catalog *catalog.Catalog
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats *services.StatsService, teams *catalog.Catalog) *StatsHandler {
	return &StatsHandler{stats: stats, catalog: teams}
}

type teamsResponse struct {
	Teams   []models.Team          `json:"teams"`
	Filters []catalog.FilterOption `json:"filters"`
}

// Teams lists the catalog, narrowed by the optional q and filter parameters
func (h *StatsHandler) Teams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, teamsResponse{
		Teams:   h.catalog.Filter(q.Get("q"), q.Get("filter")),
		Filters: catalog.FilterOptions,
	})
}

// Dashboard returns one card per visible team
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dash, err := h.stats.Dashboard(r.Context(), q.Get("q"), q.Get("filter"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

type statsResponse struct {
	Scope  models.Scope                `json:"scope"`
	Stats  map[string]models.TeamStats `json:"stats"`
	Ranked []models.TeamStats          `json:"ranked,omitempty"`
}

// Stats returns per-team stats for ?scope=global|user
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	scope, err := models.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	stats, err := h.stats.TeamStats(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := statsResponse{Scope: scope, Stats: stats}
	if scope == models.ScopeGlobal {
		resp.Ranked = services.RankedStats(stats, h.catalog.Teams())
	}
	writeJSON(w, http.StatusOK, resp)
}

// TeamStats returns the detail view of one team
func (h *StatsHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	scope, err := models.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	detail, err := h.stats.TeamDetail(r.Context(), mux.Vars(r)["team"], scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// History returns the signed-in user's predictions, newest first
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.stats.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.Prediction{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Summary returns the signed-in user's correct/total record
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
