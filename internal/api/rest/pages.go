package rest

import (
	"bytes"
	"net/http"

	"github.com/fortuna/rinkboard/internal/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StandingsPage renders the standings table
func (h *Handler) StandingsPage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.league.Standings(r.Context())
	if err != nil {
		h.respondLookupError(w, "Failed to load standings", err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Standings(&buf, snap); err != nil {
		h.logger.Error("render standings", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

// TeamPage renders a team's schedule and players. The two sections load
// concurrently and fail independently.
func (h *Handler) TeamPage(w http.ResponseWriter, r *http.Request) {
	team, ok := h.team(w, r)
	if !ok {
		return
	}

	page := render.TeamPage{Team: team}

	var g errgroup.Group
	g.Go(func() error {
		ts, err := h.league.TeamSchedule(r.Context(), team)
		if err != nil {
			page.ScheduleError = "Schedule unavailable: " + err.Error()
			return nil
		}
		page.Schedule = ts
		return nil
	})
	g.Go(func() error {
		stats, err := h.league.PlayerStats(r.Context(), team)
		if err != nil {
			page.StatsError = "Player stats unavailable: " + err.Error()
			return nil
		}
		page.Stats = stats
		return nil
	})
	g.Wait()

	var buf bytes.Buffer
	if err := h.renderer.Team(&buf, page); err != nil {
		h.logger.Error("render team page", zap.String("team", team), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
