package schedule

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/rinkboard/internal/sheets"
)

// ErrEmptyWeek is returned for a blank week sheet.
var ErrEmptyWeek = errors.New("week sheet is empty")

// WeekPrefix starts the name of every week sheet.
const WeekPrefix = "Week "

var gameMarkers = []string{"Game 1", "Game 2"}

// ParseWeek extracts the games involving team from a week sheet.
//
// The first line reads "Week,<n>,Date,<M/D/YYYY>". Each "Game N" marker is
// followed two lines later by "team1,team2,score,ot[,status]". Scores are
// split on "-" or "/"; rows whose score does not split into two integers are
// discarded.
func ParseWeek(csvText, sheetName, team string) ([]GameRecord, error) {
	if strings.TrimSpace(csvText) == "" {
		return nil, ErrEmptyWeek
	}
	lines := sheets.SplitLines(csvText)

	header := sheets.ParseLine(lines[0])
	week, err := strconv.Atoi(sheets.Field(header, 1))
	if err != nil {
		week = WeekNumber(sheetName)
	}
	date := ISODate(sheets.Field(header, 3))

	starts := make([]int, len(gameMarkers))
	for i := range starts {
		starts[i] = -1
	}
	for i, line := range lines {
		for m, marker := range gameMarkers {
			if strings.Contains(line, marker) {
				starts[m] = i + 2
				break
			}
		}
	}

	var games []GameRecord
	for _, start := range starts {
		if start < 0 || start >= len(lines) {
			continue
		}
		if g, ok := parseGameRow(sheets.ParseLine(lines[start]), week, date, team); ok {
			games = append(games, g)
		}
	}
	return games, nil
}

func parseGameRow(fields []string, week int, date, team string) (GameRecord, bool) {
	if len(fields) < 3 {
		return GameRecord{}, false
	}
	team1, team2 := fields[0], fields[1]
	if team1 == "" || team2 == "" || (team1 != team && team2 != team) {
		return GameRecord{}, false
	}

	final1, final2, ok := splitScore(fields[2])
	if !ok {
		return GameRecord{}, false
	}

	ot := sheets.Field(fields, 3)
	g := GameRecord{
		Week:  week,
		Date:  date,
		Team1: Side{Name: team1, Final: final1, OT: ot},
		Team2: Side{Name: team2, Final: final2, OT: ot},
	}
	g.decide(strings.EqualFold(sheets.Field(fields, 4), "final"))
	return g, true
}

func splitScore(score string) (int, int, bool) {
	parts := strings.FieldsFunc(score, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// WeekNumber returns n for a sheet named "Week n", or 0.
func WeekNumber(sheetName string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(sheetName, WeekPrefix)))
	if err != nil {
		return 0
	}
	return n
}

// WeekSheets picks the week sheets out of a directory listing, ordered by
// week number. Names without a number keep their relative order at the end.
func WeekSheets(names []string) []string {
	var weeks []string
	for _, name := range names {
		if strings.HasPrefix(name, WeekPrefix) {
			weeks = append(weeks, name)
		}
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		a, b := WeekNumber(weeks[i]), WeekNumber(weeks[j])
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})
	return weeks
}
