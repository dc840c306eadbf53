package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fortuna/rinkboard/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher rebuilds the standings and reports whether anyone is watching.
type Refresher interface {
	Refresh(ctx context.Context, resetDirectory bool) (*service.Standings, error)
	Active(window time.Duration) bool
}

// Config holds scheduler configuration
type Config struct {
	Schedule       string        // Default: "@every 5m"
	ActiveWindow   time.Duration // Default: 15m
	RefreshTimeout time.Duration // Default: 1m
	RefreshOnStart bool          // Default: true
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule:       "@every 5m",
		ActiveWindow:   15 * time.Minute,
		RefreshTimeout: time.Minute,
		RefreshOnStart: true,
	}
}

// Status is a snapshot of the scheduler's activity
type Status struct {
	Schedule     string    `json:"schedule"`
	ActiveWindow string    `json:"active_window"`
	Runs         int       `json:"runs"`
	Skipped      int       `json:"skipped"`
	LastRun      time.Time `json:"last_run,omitempty"`
	LastSource   string    `json:"last_source,omitempty"`
	LastError    string    `json:"last_error,omitempty"`
}

// Orchestrator refreshes the standings on a cron schedule while the
// standings view is in use. Failed refreshes wait for the next tick.
type Orchestrator struct {
	refresher Refresher
	config    Config
	logger    *zap.Logger
	cron      *cron.Cron
	startup   sync.WaitGroup

	mu     sync.Mutex
	status Status
}

// NewOrchestrator creates a scheduler. The cron expression is validated here.
func NewOrchestrator(refresher Refresher, config Config, logger *zap.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.ActiveWindow <= 0 {
		config.ActiveWindow = defaults.ActiveWindow
	}
	if config.RefreshTimeout <= 0 {
		config.RefreshTimeout = defaults.RefreshTimeout
	}

	o := &Orchestrator{
		refresher: refresher,
		config:    config,
		logger:    logger,
		cron:      cron.New(),
		status: Status{
			Schedule:     config.Schedule,
			ActiveWindow: config.ActiveWindow.String(),
		},
	}
	if _, err := o.cron.AddFunc(config.Schedule, o.tick); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", config.Schedule, err)
	}
	return o, nil
}

// Start begins the schedule. With RefreshOnStart the standings are also
// rebuilt right away.
func (o *Orchestrator) Start() {
	if o.config.RefreshOnStart {
		o.startup.Add(1)
		go func() {
			defer o.startup.Done()
			o.refresh("startup")
		}()
	}
	o.cron.Start()
	o.logger.Info("refresh scheduler started",
		zap.String("schedule", o.config.Schedule),
		zap.Duration("active_window", o.config.ActiveWindow),
	)
}

// Stop halts the schedule and waits for running refreshes, the startup one
// included, to finish.
func (o *Orchestrator) Stop() {
	<-o.cron.Stop().Done()
	o.startup.Wait()
	o.logger.Info("refresh scheduler stopped")
}

// Status returns current scheduler status
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) tick() {
	if !o.refresher.Active(o.config.ActiveWindow) {
		o.mu.Lock()
		o.status.Skipped++
		o.mu.Unlock()
		o.logger.Debug("standings view idle, skipping refresh")
		return
	}
	o.refresh("scheduled")
}

func (o *Orchestrator) refresh(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.config.RefreshTimeout)
	defer cancel()

	start := time.Now()
	snap, err := o.refresher.Refresh(ctx, false)

	o.mu.Lock()
	o.status.Runs++
	o.status.LastRun = start.UTC()
	o.status.LastError = ""
	o.status.LastSource = ""
	if err != nil {
		o.status.LastError = err.Error()
	} else if snap != nil {
		o.status.LastSource = string(snap.Source)
		o.status.LastError = snap.Error
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("standings refresh failed", zap.String("reason", reason), zap.Error(err))
		return
	}
	o.logger.Info("standings refreshed",
		zap.String("reason", reason),
		zap.Duration("duration", time.Since(start)),
	)
}
