package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/render"
	"github.com/fortuna/rinkboard/internal/sheets"
	"github.com/fortuna/rinkboard/internal/standings"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	league   League
	renderer *render.Renderer
	config   Config
	logger   *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(svc League, renderer *render.Renderer, cfg Config, logger *zap.Logger) *Handler {
	return &Handler{league: svc, renderer: renderer, config: cfg, logger: logger}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "rinkboard",
	}
	status := http.StatusOK

	if err := h.league.HealthCheck(r.Context()); err != nil {
		response["status"] = "degraded"
		response["cache"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.config.Status != nil {
		response["scheduler"] = h.config.Status()
	}
	if snap := h.league.Latest(); snap != nil {
		response["standings"] = map[string]interface{}{
			"source":     snap.Source,
			"version":    snap.Version,
			"updated_at": snap.UpdatedAt,
			"error":      snap.Error,
		}
	}

	respondJSON(w, status, response)
}

// GetStandings returns the ranked standings; ?format=csv returns them in the
// sheet's column layout.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.league.Standings(r.Context())
	if err != nil {
		h.respondLookupError(w, "Failed to load standings", err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(standings.EncodeCSV(snap.Teams, h.config.Layout)))
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// GetSheets lists the workbook's sheet names
func (h *Handler) GetSheets(w http.ResponseWriter, r *http.Request) {
	names, err := h.league.Sheets(r.Context())
	if err != nil {
		h.respondLookupError(w, "Failed to load sheet directory", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"sheets": names})
}

// GetTeams lists the roster's teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.league.Teams()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load rosters", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// GetTeamSchedule returns a team's games and fixtures
func (h *Handler) GetTeamSchedule(w http.ResponseWriter, r *http.Request) {
	team, ok := h.team(w, r)
	if !ok {
		return
	}

	ts, err := h.league.TeamSchedule(r.Context(), team)
	if err != nil {
		h.respondLookupError(w, "Failed to load schedule", err)
		return
	}
	respondJSON(w, http.StatusOK, ts)
}

// GetTeamPlayers returns a team's player statistics
func (h *Handler) GetTeamPlayers(w http.ResponseWriter, r *http.Request) {
	team, ok := h.team(w, r)
	if !ok {
		return
	}

	stats, err := h.league.PlayerStats(r.Context(), team)
	if err != nil {
		h.respondLookupError(w, "Failed to load player stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Refresh rebuilds the standings; ?directory=true also refetches the sheet directory.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	reset := false
	if v := r.URL.Query().Get("directory"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid directory flag (use true or false)", err)
			return
		}
		reset = b
	}

	snap, err := h.league.Refresh(r.Context(), reset)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Refresh failed", err)
		return
	}

	h.logger.Info("manual refresh", zap.Bool("directory", reset), zap.String("source", string(snap.Source)))
	respondJSON(w, http.StatusOK, snap)
}

// team resolves the {team} path variable, which may be a name or a slug.
// Unknown teams get a 404 when the roster is available.
func (h *Handler) team(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := mux.Vars(r)["team"]

	known, err := h.league.Teams()
	if err != nil {
		h.logger.Debug("roster unavailable, using team as given", zap.Error(err))
		return render.TeamFromSlug(raw, nil), true
	}
	for _, name := range known {
		if name == raw {
			return name, true
		}
	}

	team := render.TeamFromSlug(raw, known)
	for _, name := range known {
		if name == team {
			return team, true
		}
	}

	respondJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":  "Team not found",
		"status": http.StatusNotFound,
		"team":   raw,
		"known":  known,
	})
	return "", false
}

// respondLookupError maps sheet and roster lookup failures to 404 and
// everything else to 502.
func (h *Handler) respondLookupError(w http.ResponseWriter, message string, err error) {
	var unknown *sheets.UnknownSheetError
	switch {
	case errors.As(err, &unknown):
		respondJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":   message,
			"status":  http.StatusNotFound,
			"details": err.Error(),
			"known":   unknown.Known,
		})
	case errors.Is(err, league.ErrUnknownTeam):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, context.Canceled):
		h.logger.Debug("client went away", zap.Error(err))
	default:
		h.logger.Warn(message, zap.Error(err))
		respondError(w, http.StatusBadGateway, message, err)
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
