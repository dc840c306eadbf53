package league

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/rinkboard/internal/sheets"
)

// ErrUnknownTeam is returned when a team has no roster.
var ErrUnknownTeam = errors.New("team not found in roster")

const (
	playerSectionHeader = "Player #,Player Name,Goals"
	goalieSectionHeader = "Shot Attempts,Goals Allowed,Saves,Save %"
	goalieMark          = "(G)"
)

// GoalieStats are a goaltender's season totals from the team sheet
type GoalieStats struct {
	ShotAttempts int     `json:"shot_attempts"`
	GoalsAllowed int     `json:"goals_allowed"`
	Saves        int     `json:"saves"`
	SavePct      float64 `json:"save_pct"`
}

// SheetStats is what a team sheet reports: goals by player name and the
// goalie's totals.
type SheetStats struct {
	Goals  map[string]int
	Goalie *GoalieStats
}

// ParsePlayerStats reads a team sheet. Rows after the player header count
// when their number parses; the goalie row is the one marked "(G)" after the
// goalie header.
func ParsePlayerStats(csvText string) SheetStats {
	stats := SheetStats{Goals: make(map[string]int)}

	inPlayers, inGoalie := false, false
	for _, raw := range sheets.SplitLines(csvText) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(line, playerSectionHeader):
			inPlayers, inGoalie = true, false
			continue
		case strings.Contains(line, goalieSectionHeader):
			inPlayers, inGoalie = false, true
			continue
		}

		fields := sheets.ParseLine(line)
		number, name := sheets.Field(fields, 0), sheets.Field(fields, 1)

		if inPlayers {
			if _, err := strconv.Atoi(number); err == nil && name != "" {
				stats.Goals[name] = atoi(sheets.Field(fields, 2))
			}
		}

		if inGoalie && strings.Contains(name, goalieMark) {
			sa, ga, sv := sheets.Field(fields, 2), sheets.Field(fields, 3), sheets.Field(fields, 4)
			if sa == "" || ga == "" || sv == "" {
				continue
			}
			stats.Goalie = &GoalieStats{
				ShotAttempts: atoi(sa),
				GoalsAllowed: atoi(ga),
				Saves:        atoi(sv),
				SavePct:      parsePct(sheets.Field(fields, 5)),
			}
		}
	}

	return stats
}

// PlayerLine is one skater in a team's stats table
type PlayerLine struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Goals  int    `json:"goals"`
}

// GoalieLine is the goaltender row
type GoalieLine struct {
	Number int          `json:"number"`
	Name   string       `json:"name"`
	Stats  *GoalieStats `json:"stats,omitempty"`
}

// TeamStats is a team's player statistics view
type TeamStats struct {
	Team        string       `json:"team"`
	LastUpdated string       `json:"last_updated,omitempty"`
	Players     []PlayerLine `json:"players"`
	Goalie      *GoalieLine  `json:"goalie,omitempty"`
}

// MergePlayerStats combines the roster with the sheet's totals. Skaters are
// ordered by jersey number; sheet names match roster names exactly or with a
// trailing period on either side.
func MergePlayerStats(team string, data *PlayerData, stats SheetStats) (*TeamStats, error) {
	if data == nil || data.Rosters == nil {
		return nil, ErrUnknownTeam
	}
	roster, ok := data.Rosters.Teams[team]
	if !ok {
		return nil, ErrUnknownTeam
	}

	out := &TeamStats{
		Team:        team,
		LastUpdated: data.LastUpdated,
		Players:     []PlayerLine{},
	}

	var rosterGoalie *Player
	for i := range roster.Players {
		p := roster.Players[i]
		if p.IsGoalie {
			if rosterGoalie == nil {
				rosterGoalie = &roster.Players[i]
			}
			continue
		}
		out.Players = append(out.Players, PlayerLine{
			Number: p.Number,
			Name:   p.Name,
			Goals:  matchGoals(p.Name, stats.Goals),
		})
	}
	sort.SliceStable(out.Players, func(i, j int) bool {
		return out.Players[i].Number < out.Players[j].Number
	})

	switch {
	case data.Goalies != nil && data.Goalies.Teams[team].Name != "":
		g := data.Goalies.Teams[team]
		out.Goalie = &GoalieLine{Number: g.Number, Name: g.Name, Stats: stats.Goalie}
	case rosterGoalie != nil:
		out.Goalie = &GoalieLine{Number: rosterGoalie.Number, Name: rosterGoalie.Name, Stats: stats.Goalie}
	}

	return out, nil
}

func matchGoals(name string, goals map[string]int) int {
	name = strings.TrimSpace(name)
	if g, ok := goals[name]; ok {
		return g
	}
	for sheetName, g := range goals {
		sheetName = strings.TrimSpace(sheetName)
		if sheetName == name+"." || sheetName+"." == name || sheetName == name {
			return g
		}
	}
	return 0
}

func parsePct(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
