package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fortuna/rinkboard/internal/cache"
	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/schedule"
	"github.com/fortuna/rinkboard/internal/standings"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Workbook is the published spreadsheet, addressed by sheet name.
type Workbook interface {
	Sheet(ctx context.Context, name string) (string, error)
	Names(ctx context.Context) ([]string, error)
	Reset()
}

// Config holds service configuration
type Config struct {
	StandingsSheet string        // Default: "standings"
	Layout         standings.Layout
	SnapshotTTL    time.Duration // Default: 5m
	BuildTimeout   time.Duration // Default: 30s
}

// DefaultConfig returns default service configuration
func DefaultConfig() Config {
	return Config{
		StandingsSheet: "standings",
		Layout:         standings.DefaultLayout,
		SnapshotTTL:    5 * time.Minute,
		BuildTimeout:   30 * time.Second,
	}
}

const (
	standingsKey      = "standings"
	scheduleKeyPrefix = "schedule:"
)

// League serves standings, schedules and player statistics from the workbook,
// with snapshots kept in a cache.
type League struct {
	workbook   Workbook
	docs       *league.Store
	cache      cache.Cache
	aggregator *schedule.Aggregator
	config     Config
	logger     *zap.Logger
	now        func() time.Time

	group      singleflight.Group
	version    atomic.Uint64
	lastViewed atomic.Int64

	mu     sync.Mutex
	latest *Standings

	scheduleKeys sync.Map
}

// NewLeague creates the league service
func NewLeague(workbook Workbook, docs *league.Store, c cache.Cache, config Config, logger *zap.Logger) *League {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if config.StandingsSheet == "" {
		config.StandingsSheet = DefaultConfig().StandingsSheet
	}
	if config.BuildTimeout <= 0 {
		config.BuildTimeout = DefaultConfig().BuildTimeout
	}
	if config.Layout.Offset < 0 {
		config.Layout = standings.DefaultLayout
	}
	return &League{
		workbook:   workbook,
		docs:       docs,
		cache:      c,
		aggregator: schedule.NewAggregator(workbook, logger),
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// MarkViewed records that the standings view was requested.
func (l *League) MarkViewed() {
	l.lastViewed.Store(l.now().UnixNano())
}

// Active reports whether the standings view was requested within window.
func (l *League) Active(window time.Duration) bool {
	last := l.lastViewed.Load()
	if last == 0 {
		return false
	}
	return l.now().Sub(time.Unix(0, last)) < window
}

// Sheets lists the workbook's sheet names in directory order.
func (l *League) Sheets(ctx context.Context) ([]string, error) {
	names, err := l.workbook.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	return names, nil
}

// Refresh drops cached snapshots and rebuilds the standings. With
// resetDirectory the sheet directory is fetched again as well.
func (l *League) Refresh(ctx context.Context, resetDirectory bool) (*Standings, error) {
	if resetDirectory {
		l.workbook.Reset()
	}

	keys := []string{standingsKey}
	l.scheduleKeys.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		l.scheduleKeys.Delete(k)
		return true
	})
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.Warn("failed to clear cached snapshots", zap.Error(err))
	}

	return l.buildStandings(ctx)
}

// HealthCheck verifies the snapshot cache is reachable.
func (l *League) HealthCheck(ctx context.Context) error {
	return l.cache.HealthCheck(ctx)
}

func (l *League) getJSON(ctx context.Context, key string, v any) bool {
	b, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			l.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		l.logger.Warn("discarding unreadable snapshot", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (l *League) setJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		l.logger.Error("failed to encode snapshot", zap.String("key", key), zap.Error(err))
		return
	}
	if err := l.cache.Set(ctx, key, b, l.config.SnapshotTTL); err != nil {
		l.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
