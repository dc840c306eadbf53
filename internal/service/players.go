package service

import (
	"context"
	"fmt"

	"github.com/fortuna/rinkboard/internal/league"
)

// PlayerStats returns team's skaters and goalie with the totals from the
// team's own sheet.
func (l *League) PlayerStats(ctx context.Context, team string) (*league.TeamStats, error) {
	data, err := l.docs.LoadPlayerData(ctx, l.logger)
	if err != nil {
		return nil, fmt.Errorf("loading player data: %w", err)
	}
	if _, ok := data.Rosters.Teams[team]; !ok {
		return nil, league.ErrUnknownTeam
	}

	body, err := l.workbook.Sheet(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("fetching stats for %s: %w", team, err)
	}

	return league.MergePlayerStats(team, data, league.ParsePlayerStats(body))
}

// Teams returns the roster's team names.
func (l *League) Teams() ([]string, error) {
	doc, err := l.docs.LoadRosters()
	if err != nil {
		return nil, fmt.Errorf("loading rosters: %w", err)
	}
	return doc.TeamNames(), nil
}
