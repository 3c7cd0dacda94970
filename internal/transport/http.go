package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rkvadlamudi/campusql/internal/catalog"
	"github.com/rkvadlamudi/campusql/internal/engine"
)

// API serves the REST endpoints next to the WebSocket channel.
type API struct {
	engine       *engine.Engine
	store        catalog.Store
	names        *catalog.NameList
	historyBound int
}

// NewAPI creates the REST handler set.
func NewAPI(eng *engine.Engine, store catalog.Store, names *catalog.NameList, historyBound int) *API {
	return &API{engine: eng, store: store, names: names, historyBound: historyBound}
}

// NewRouter assembles the full HTTP surface: health, REST API and the
// WebSocket upgrade endpoint.
func NewRouter(api *API, ws *WebSocketHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", api.handleHealth)
	r.Post("/api/chat", api.handleChat)
	r.Get("/api/stats", api.handleStats)
	r.Handle("/ws", ws)

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat answers a single question without a persistent session.
// Each request gets a fresh context, so no history carries over.
func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	sess := engine.NewSessionContext("rest-"+uuid.NewString(), a.historyBound)
	answer := a.engine.HandleMessage(r.Context(), sess, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Response: answer})
}

type statsResponse struct {
	Tables    map[string]int64 `json:"tables"`
	TotalRows int64            `json:"total_rows"`
}

// handleStats reports per-table row counts for operational review.
func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := statsResponse{Tables: make(map[string]int64)}
	for _, table := range a.names.Snapshot() {
		count, err := a.store.RowCount(r.Context(), table)
		if err != nil {
			slog.Warn("row count failed", "table", table, "error", err)
			continue
		}
		stats.Tables[table] = count
		stats.TotalRows += count
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}
