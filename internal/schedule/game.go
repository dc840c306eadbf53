package schedule

import (
	"fmt"
	"time"
)

// Tie is the winner value of a drawn game.
const Tie = "Tie"

// Outcome says whether a game has a result yet.
type Outcome int

const (
	NotPlayed Outcome = iota
	Played
)

func (o Outcome) String() string {
	if o == Played {
		return "played"
	}
	return "not_played"
}

// MarshalText encodes the outcome as "played" or "not_played".
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes "played" / "not_played".
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "played":
		*o = Played
	case "not_played", "":
		*o = NotPlayed
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Side is one team's line in a game.
type Side struct {
	Name  string `json:"name"`
	Final int    `json:"final"`
	OT    string `json:"ot,omitempty"`
}

// GameRecord is a single game in a team's schedule.
type GameRecord struct {
	Week    int     `json:"week"`
	Date    string  `json:"date,omitempty"` // YYYY-MM-DD, empty when unknown
	Team1   Side    `json:"team1"`
	Team2   Side    `json:"team2"`
	Outcome Outcome `json:"outcome"`
	Winner  string  `json:"winner,omitempty"`
}

// Future reports whether the game has not been played.
func (g GameRecord) Future() bool {
	return g.Outcome == NotPlayed
}

// Opponent returns the other side's name from team's point of view.
func (g GameRecord) Opponent(team string) string {
	if g.Team1.Name == team {
		return g.Team2.Name
	}
	return g.Team1.Name
}

// Result returns "W", "L" or "T" for team, or "" for a future game.
func (g GameRecord) Result(team string) string {
	switch {
	case g.Future():
		return ""
	case g.Winner == Tie:
		return "T"
	case g.Winner == team:
		return "W"
	default:
		return "L"
	}
}

// decide fills Outcome and Winner from the finals. Both finals at zero is
// read as not played unless the sheet marked the game final.
func (g *GameRecord) decide(markedFinal bool) {
	a, b := g.Team1.Final, g.Team2.Final
	if a == 0 && b == 0 && !markedFinal {
		g.Outcome = NotPlayed
		g.Winner = ""
		return
	}

	g.Outcome = Played
	switch {
	case a > b:
		g.Winner = g.Team1.Name
	case b > a:
		g.Winner = g.Team2.Name
	default:
		g.Winner = Tie
	}
}

var dateLayouts = []string{"1/2/2006", "2006-01-02"}

// ISODate converts a sheet date (M/D/YYYY or YYYY-MM-DD) to YYYY-MM-DD.
// Unrecognised input yields "".
func ISODate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
