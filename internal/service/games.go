package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/rinkboard/internal/schedule"
	"go.uber.org/zap"
)

// TeamSchedule is a team's season: scored games and upcoming fixtures.
type TeamSchedule struct {
	Team      string                `json:"team"`
	Games     []schedule.GameRecord `json:"games"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Record tallies the team's wins, losses and ties
func (ts *TeamSchedule) Record() (wins, losses, ties int) {
	for _, g := range ts.Games {
		switch g.Result(ts.Team) {
		case "W":
			wins++
		case "L":
			losses++
		case "T":
			ties++
		}
	}
	return wins, losses, ties
}

// TeamSchedule collects team's scores from the week sheets and lays them
// over the static schedule.
func (l *League) TeamSchedule(ctx context.Context, team string) (*TeamSchedule, error) {
	key := scheduleKeyPrefix + team

	var cached TeamSchedule
	if l.getJSON(ctx, key, &cached) {
		return &cached, nil
	}

	names, err := l.workbook.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing week sheets: %w", err)
	}

	scores, err := l.aggregator.Collect(ctx, team, schedule.WeekSheets(names))
	if err != nil {
		return nil, fmt.Errorf("collecting scores for %s: %w", team, err)
	}

	var static []schedule.StaticEntry
	if doc, err := l.docs.LoadSchedule(); err != nil {
		l.logger.Debug("static schedule unavailable", zap.Error(err))
	} else {
		static = doc.For(team)
	}

	ts := &TeamSchedule{
		Team:      team,
		Games:     schedule.Merge(team, scores, static),
		UpdatedAt: l.now().UTC(),
	}
	if ts.Games == nil {
		ts.Games = []schedule.GameRecord{}
	}

	l.scheduleKeys.Store(key, struct{}{})
	l.setJSON(ctx, key, ts)
	return ts, nil
}
