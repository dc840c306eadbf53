package league

import (
	"sort"

	"github.com/fortuna/rinkboard/internal/schedule"
)

// Player is one roster entry
type Player struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	IsGoalie bool   `json:"isGoalie"`
	Goals    int    `json:"goals"`
	Saves    *int   `json:"saves"` // nil for skaters
}

// TeamRoster lists a team's players
type TeamRoster struct {
	Players []Player `json:"players"`
}

// RosterDocument is rosters.json, written by the roster sync.
type RosterDocument struct {
	LastUpdated string                `json:"lastUpdated"`
	Teams       map[string]TeamRoster `json:"teams"`
}

// TeamNames returns the roster's team names, sorted. The roster is the
// authoritative list of teams shown in the standings.
func (d *RosterDocument) TeamNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Teams))
	for name := range d.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Goalie is a team's starting goaltender
type Goalie struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// GoalieDocument is goalies.json
type GoalieDocument struct {
	LastUpdated string            `json:"lastUpdated"`
	Teams       map[string]Goalie `json:"teams"`
}

// TeamSchedule holds a team's fixtures
type TeamSchedule struct {
	Schedule []schedule.StaticEntry `json:"schedule"`
}

// ScheduleDocument is schedule.json: every team's fixtures for the season.
type ScheduleDocument struct {
	Teams map[string]TeamSchedule `json:"teams"`
}

// For returns team's fixtures, or nil when the team is not scheduled.
func (d *ScheduleDocument) For(team string) []schedule.StaticEntry {
	if d == nil {
		return nil
	}
	return d.Teams[team].Schedule
}
