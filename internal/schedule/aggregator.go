package schedule

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// SheetSource fetches a sheet's CSV export by name.
type SheetSource interface {
	Sheet(ctx context.Context, name string) (string, error)
}

// StaticEntry is one fixture from the pre-built schedule document.
type StaticEntry struct {
	Week     int    `json:"week"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
}

// Aggregator collects a team's scored games from the week sheets.
type Aggregator struct {
	source SheetSource
	logger *zap.Logger
}

// NewAggregator creates an aggregator reading sheets from source
func NewAggregator(source SheetSource, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{source: source, logger: logger}
}

// Collect walks the week sheets in order and returns every game of team
// that carries a score. A week whose sheet cannot be fetched or parsed is
// skipped. The first week without any game for team ends the walk: the
// season has not progressed past it.
func (a *Aggregator) Collect(ctx context.Context, team string, weeks []string) ([]GameRecord, error) {
	var games []GameRecord

	for _, week := range weeks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := a.source.Sheet(ctx, week)
		if err != nil {
			a.logger.Warn("skipping week sheet", zap.String("week", week), zap.Error(err))
			continue
		}

		weekGames, err := ParseWeek(body, week, team)
		if err != nil {
			a.logger.Warn("skipping unreadable week sheet", zap.String("week", week), zap.Error(err))
			continue
		}

		if len(weekGames) == 0 {
			a.logger.Info("no score data for team, stopping",
				zap.String("team", team),
				zap.String("week", week),
			)
			break
		}

		a.logger.Debug("parsed week scores",
			zap.String("team", team),
			zap.String("week", week),
			zap.Int("games", len(weekGames)),
		)
		games = append(games, weekGames...)
	}

	return games, nil
}

// Merge lays scored games over team's static schedule. Every static entry
// yields a game; entries without a score stay future games. Scores are
// matched to entries by week, in order when a week has two games. When team
// has no static schedule the scored games are returned on their own.
// The result is ordered by week.
func Merge(team string, scores []GameRecord, static []StaticEntry) []GameRecord {
	var games []GameRecord

	if len(static) == 0 {
		games = append(games, scores...)
	} else {
		byWeek := make(map[int][]GameRecord)
		for _, s := range scores {
			byWeek[s.Week] = append(byWeek[s.Week], s)
		}

		for _, entry := range static {
			game := GameRecord{
				Week:  entry.Week,
				Date:  ISODate(entry.Date),
				Team1: Side{Name: team},
				Team2: Side{Name: entry.Opponent},
			}

			if queue := byWeek[entry.Week]; len(queue) > 0 {
				scored := queue[0]
				byWeek[entry.Week] = queue[1:]
				if scored.Date == "" {
					scored.Date = game.Date
				}
				game = scored
			}
			games = append(games, game)
		}
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Week < games[j].Week
	})
	return games
}
