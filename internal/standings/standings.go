package standings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/rinkboard/internal/sheets"
)

var (
	// ErrTooFewLines is returned when the sheet has no room for a header and a row.
	ErrTooFewLines = errors.New("standings sheet has too few lines")

	// ErrNoHeader is returned when every line of the sheet is blank.
	ErrNoHeader = errors.New("standings sheet has no header row")
)

// TeamRecord is one team's line in the standings table
type TeamRecord struct {
	Team        string `json:"team"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Ties        int    `json:"ties"`
	GamesPlayed int    `json:"games_played"`
	GoalsScored int    `json:"goals_scored"`
	Points      int    `json:"points"`
}

// Layout describes where the standings columns start in a row.
// Team sits at Offset, followed by wins, losses, ties, games played,
// goals scored and points.
type Layout struct {
	Offset int
}

var (
	// DefaultLayout matches the published sheet: two structural columns precede the team.
	DefaultLayout = Layout{Offset: 2}

	// LegacyLayout matches the older sheet revision with a single leading column.
	LegacyLayout = Layout{Offset: 1}
)

// Header is the column header emitted by EncodeCSV.
var Header = []string{"Team", "Wins", "Losses", "Ties", "Games Played", "Goals Scored", "Points"}

// Parse reads team records from the standings sheet. The first non-blank
// line is the header; every later non-blank line with a team name is a record.
// Unparseable numbers count as 0.
func Parse(csvText string, layout Layout) ([]TeamRecord, error) {
	lines := sheets.SplitLines(csvText)
	if len(lines) < 2 {
		return nil, ErrTooFewLines
	}

	header := 0
	for header < len(lines) && strings.TrimSpace(lines[header]) == "" {
		header++
	}
	if header >= len(lines) {
		return nil, ErrNoHeader
	}

	var records []TeamRecord
	for _, line := range lines[header+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := sheets.ParseLine(line)

		col := func(i int) string { return sheets.Field(fields, layout.Offset+i) }
		team := col(0)
		if team == "" {
			continue
		}

		records = append(records, TeamRecord{
			Team:        team,
			Wins:        atoi(col(1)),
			Losses:      atoi(col(2)),
			Ties:        atoi(col(3)),
			GamesPlayed: atoi(col(4)),
			GoalsScored: atoi(col(5)),
			Points:      atoi(col(6)),
		})
	}

	return records, nil
}

// Merge returns one record per roster team, in roster order. Teams missing
// from records get a zero record; records for teams outside the roster are
// dropped. Names must match exactly.
func Merge(records []TeamRecord, roster []string) []TeamRecord {
	byTeam := make(map[string]TeamRecord, len(records))
	for _, r := range records {
		if _, seen := byTeam[r.Team]; !seen {
			byTeam[r.Team] = r
		}
	}

	merged := make([]TeamRecord, 0, len(roster))
	for _, name := range roster {
		if r, ok := byTeam[name]; ok {
			merged = append(merged, r)
			continue
		}
		merged = append(merged, TeamRecord{Team: name})
	}
	return merged
}

// Rank orders records by points, then wins, then goals scored, all
// descending. Equal records keep their input order.
func Rank(records []TeamRecord) []TeamRecord {
	ranked := make([]TeamRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.GoalsScored > b.GoalsScored
	})
	return ranked
}

// Build parses the standings sheet, merges it against the roster and ranks it.
func Build(csvText string, roster []string, layout Layout) ([]TeamRecord, error) {
	records, err := Parse(csvText, layout)
	if err != nil {
		return nil, fmt.Errorf("parse standings: %w", err)
	}
	return Rank(Merge(records, roster)), nil
}

// EncodeCSV renders records in the sheet's own shape, with layout.Offset
// empty leading columns.
func EncodeCSV(records []TeamRecord, layout Layout) string {
	var b strings.Builder
	lead := strings.Repeat(",", layout.Offset)

	b.WriteString(lead)
	b.WriteString(strings.Join(Header, ","))
	b.WriteString("\n")

	for _, r := range records {
		b.WriteString(lead)
		b.WriteString(quote(r.Team))
		for _, v := range []int{r.Wins, r.Losses, r.Ties, r.GamesPlayed, r.GoalsScored, r.Points} {
			b.WriteString(",")
			b.WriteString(strconv.Itoa(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func quote(s string) string {
	if strings.ContainsRune(s, ',') {
		return `"` + s + `"`
	}
	return s
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
