package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/rinkboard/internal/api/rest"
	"github.com/fortuna/rinkboard/internal/cache"
	"github.com/fortuna/rinkboard/internal/config"
	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/logging"
	"github.com/fortuna/rinkboard/internal/scheduler"
	"github.com/fortuna/rinkboard/internal/service"
	"github.com/fortuna/rinkboard/internal/sheets"
	"github.com/fortuna/rinkboard/internal/standings"
	"go.uber.org/zap"
)

const (
	serviceName    = "rinkboard"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.String("directory_source", cfg.DirectorySource),
	)

	workbook, err := sheets.Open(sheets.Options{
		BaseURL:         cfg.SheetBaseURL,
		DirectoryGID:    cfg.DirectoryGID,
		DirectorySource: cfg.DirectorySource,
		FetchMode:       cfg.FetchMode,
		CacheBust:       cfg.CacheBust,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open workbook", zap.Error(err))
	}
	defer workbook.Close()

	snapshots := connectCache(cfg.RedisURL, logger)
	defer snapshots.Close()

	layout := standings.Layout{Offset: cfg.StandingsOffset}
	svc := service.NewLeague(workbook, league.NewStore(cfg.DataDir), snapshots, service.Config{
		StandingsSheet: service.DefaultConfig().StandingsSheet,
		Layout:         layout,
		SnapshotTTL:    cfg.SnapshotTTL,
	}, logger)

	sched, err := scheduler.NewOrchestrator(svc, scheduler.Config{
		Schedule:       cfg.RefreshSchedule,
		ActiveWindow:   cfg.ActiveWindow,
		RefreshOnStart: true,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	sched.Start()

	restServer, err := rest.NewServer(rest.Config{
		Port:      cfg.RESTPort,
		StaticDir: cfg.StaticDir,
		Layout:    layout,
		Status:    sched.Status,
	}, svc, logger)
	if err != nil {
		logger.Fatal("Failed to create REST server", zap.Error(err))
	}
	go func() {
		logger.Info("REST API listening", zap.String("addr", "http://0.0.0.0:"+cfg.RESTPort))
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("REST server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("REST server shutdown error", zap.Error(err))
	}
	sched.Stop()

	logger.Info("stopped")
}

// connectCache uses Redis when a URL is configured, retrying while it comes
// up, and an in-process cache otherwise.
func connectCache(redisURL string, logger *zap.Logger) cache.Cache {
	if redisURL == "" {
		logger.Info("no REDIS_URL set, using in-process snapshot cache")
		return cache.NewMemoryCache()
	}

	const (
		maxRetries = 10
		retryDelay = 2 * time.Second
	)
	for i := 0; i < maxRetries; i++ {
		rc, err := cache.NewRedisCache(redisURL, serviceName+":")
		if err == nil {
			logger.Info("connected to Redis")
			return rc
		}
		if i < maxRetries-1 {
			logger.Warn("Redis connection failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("max", maxRetries),
				zap.Duration("delay", retryDelay),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}
		logger.Error("Redis unavailable, falling back to in-process cache", zap.Error(err))
	}
	return cache.NewMemoryCache()
}
