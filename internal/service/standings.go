package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/rinkboard/internal/standings"
	"go.uber.org/zap"
)

// Source says where a standings snapshot came from
type Source string

const (
	SourceSheet    Source = "sheet"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Standings is a ranked standings snapshot.
type Standings struct {
	Teams     []standings.TeamRecord `json:"teams"`
	Source    Source                 `json:"source"`
	UpdatedAt time.Time              `json:"updated_at"`
	Version   uint64                 `json:"version"`
	Error     string                 `json:"error,omitempty"`
}

// Standings returns the current standings. A cached snapshot is served when
// present; otherwise the sheet is read, and any failure yields the fallback
// table with the error attached. Concurrent callers share one build, which
// runs detached from their contexts.
func (l *League) Standings(ctx context.Context) (*Standings, error) {
	l.MarkViewed()

	var cached Standings
	if l.getJSON(ctx, standingsKey, &cached) {
		cached.Source = SourceCache
		return &cached, nil
	}

	ch := l.group.DoChan(standingsKey, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.config.BuildTimeout)
		defer cancel()

		snap, err := l.buildStandings(buildCtx)
		if err != nil {
			// build timed out: answer with the fallback but keep it unpublished
			fallback := fallbackSnapshot(err)
			fallback.UpdatedAt = l.now().UTC()
			return fallback, nil
		}
		return snap, nil
	})

	select {
	case res := <-ch:
		return res.Val.(*Standings), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Latest returns the newest snapshot built by this process, or nil.
func (l *League) Latest() *Standings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

func fallbackSnapshot(err error) *Standings {
	return &Standings{
		Teams:  standings.Fallback(),
		Source: SourceFallback,
		Error:  err.Error(),
	}
}

// buildStandings reads the standings sheet and publishes the result unless a
// newer snapshot was published while it ran. It returns the snapshot that is
// current afterwards. If ctx ends before the sheet is read nothing is
// published and ctx's error is returned.
func (l *League) buildStandings(ctx context.Context) (*Standings, error) {
	version := l.version.Add(1)

	teams, err := l.readStandings(ctx)
	if err != nil && ctx.Err() != nil {
		l.logger.Warn("standings build abandoned", zap.Uint64("version", version), zap.Error(err))
		return nil, ctx.Err()
	}

	var snap *Standings
	if err != nil {
		l.logger.Warn("standings unavailable, serving fallback table", zap.Error(err))
		snap = fallbackSnapshot(err)
	} else {
		snap = &Standings{Teams: teams, Source: SourceSheet}
	}
	snap.Version = version
	snap.UpdatedAt = l.now().UTC()

	l.mu.Lock()
	if l.latest != nil && l.latest.Version > snap.Version {
		current := l.latest
		l.mu.Unlock()
		l.logger.Debug("discarding stale standings result",
			zap.Uint64("version", snap.Version),
			zap.Uint64("current", current.Version),
		)
		return current, nil
	}
	l.latest = snap
	l.mu.Unlock()

	if snap.Source == SourceSheet {
		l.setJSON(ctx, standingsKey, snap)
	}

	l.logger.Info("standings updated",
		zap.String("source", string(snap.Source)),
		zap.Int("teams", len(snap.Teams)),
		zap.Uint64("version", snap.Version),
	)
	return snap, nil
}

func (l *League) readStandings(ctx context.Context) ([]standings.TeamRecord, error) {
	body, err := l.workbook.Sheet(ctx, l.config.StandingsSheet)
	if err != nil {
		return nil, err
	}

	rosters, err := l.docs.LoadRosters()
	if err != nil {
		// no roster to merge against: rank what the sheet has
		l.logger.Warn("roster unavailable, ranking sheet rows as-is", zap.Error(err))
		records, err := standings.Parse(body, l.config.Layout)
		if err != nil {
			return nil, fmt.Errorf("parse standings: %w", err)
		}
		return standings.Rank(records), nil
	}

	return standings.Build(body, rosters.TeamNames(), l.config.Layout)
}
