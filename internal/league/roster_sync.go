package league

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/rinkboard/internal/sheets"
	"go.uber.org/zap"
)

// SheetSource fetches a sheet's CSV export by name.
type SheetSource interface {
	Sheet(ctx context.Context, name string) (string, error)
}

// ParseTeamRoster reads the player list from a team sheet. Coach rows and
// repeated headers are skipped; a "(G)" suffix marks the goalie and is
// removed from the name.
func ParseTeamRoster(csvText string) []Player {
	players := []Player{}
	seen := make(map[string]int)
	inPlayers := false

	for _, raw := range sheets.SplitLines(csvText) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "coach") {
			continue
		}
		if strings.Contains(line, playerSectionHeader) {
			inPlayers = true
			continue
		}
		if !inPlayers {
			continue
		}

		fields := sheets.ParseLine(line)
		if len(fields) < 2 {
			continue
		}
		number, name := fields[0], fields[1]
		if number == "" || name == "" || strings.EqualFold(name, "player name") {
			continue
		}

		isGoalie := strings.Contains(name, goalieMark)
		clean := strings.TrimSpace(strings.ReplaceAll(name, goalieMark, ""))

		// goalies show up again in the goalie section
		if idx, ok := seen[clean]; ok {
			if isGoalie && !players[idx].IsGoalie {
				players[idx].IsGoalie = true
				players[idx].Saves = new(int)
			}
			continue
		}

		n, err := strconv.Atoi(number)
		if err != nil {
			n = 0
		}
		p := Player{Number: n, Name: clean, IsGoalie: isGoalie}
		if isGoalie {
			p.Saves = new(int)
		}
		seen[clean] = len(players)
		players = append(players, p)
	}

	return players
}

// RosterSync rebuilds rosters.json from the team sheets.
type RosterSync struct {
	source SheetSource
	store  *Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRosterSync creates a roster sync writing into store
func NewRosterSync(source SheetSource, store *Store, logger *zap.Logger) *RosterSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterSync{source: source, store: store, logger: logger, now: time.Now}
}

// Sync fetches every team's sheet and writes the roster document. A team
// whose sheet cannot be read gets an empty player list.
func (r *RosterSync) Sync(ctx context.Context, teams []string) (*RosterDocument, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("no teams to sync")
	}

	doc := &RosterDocument{Teams: make(map[string]TeamRoster, len(teams))}
	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := r.source.Sheet(ctx, team)
		if err != nil {
			r.logger.Warn("failed to fetch team roster", zap.String("team", team), zap.Error(err))
			doc.Teams[team] = TeamRoster{Players: []Player{}}
			continue
		}

		players := ParseTeamRoster(body)
		r.logger.Info("parsed team roster", zap.String("team", team), zap.Int("players", len(players)))
		doc.Teams[team] = TeamRoster{Players: players}
	}

	doc.LastUpdated = r.now().UTC().Format(time.RFC3339)
	if err := r.store.WriteRosters(doc); err != nil {
		return nil, fmt.Errorf("write rosters: %w", err)
	}
	return doc, nil
}
