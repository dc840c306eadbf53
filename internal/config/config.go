package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultSheetBaseURL is the published workbook the league maintains.
	DefaultSheetBaseURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vS2z2qeTV7pdgq6l1_B8AHdr6ysBIoTy0v2zE20o54IqoRKX2J8hZw34s0rv2akIKZqMTQHv3BtOdv4/pub"

	// DefaultDirectoryGID identifies the sheet that maps sheet names to gids.
	DefaultDirectoryGID = "26105431"
)

// Config holds service configuration loaded from the environment
type Config struct {
	SheetBaseURL    string
	DirectoryGID    string
	DirectorySource string // "csv" or "pubhtml"
	FetchMode       string // "http" or "browser"
	CacheBust       bool
	DataDir         string
	StaticDir       string
	StandingsOffset int
	RedisURL        string
	SnapshotTTL     time.Duration
	RefreshSchedule string
	ActiveWindow    time.Duration
	RESTPort        string
	LogLevel        string
}

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		SheetBaseURL:    getEnv("SHEET_BASE_URL", DefaultSheetBaseURL),
		DirectoryGID:    getEnv("DIRECTORY_GID", DefaultDirectoryGID),
		DirectorySource: getEnv("DIRECTORY_SOURCE", "csv"),
		FetchMode:       getEnv("FETCH_MODE", "http"),
		DataDir:         getEnv("DATA_DIR", "static/data"),
		StaticDir:       getEnv("STATIC_DIR", "static"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 5m"),
		RESTPort:        getEnv("REST_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.CacheBust, err = strconv.ParseBool(getEnv("CACHE_BUST", "true")); err != nil {
		return cfg, fmt.Errorf("CACHE_BUST: %w", err)
	}
	if cfg.SnapshotTTL, err = time.ParseDuration(getEnv("SNAPSHOT_TTL", "5m")); err != nil {
		return cfg, fmt.Errorf("SNAPSHOT_TTL: %w", err)
	}
	if cfg.StandingsOffset, err = strconv.Atoi(getEnv("STANDINGS_OFFSET", "2")); err != nil || cfg.StandingsOffset < 0 {
		return cfg, fmt.Errorf("STANDINGS_OFFSET must be a non-negative integer, got %q", os.Getenv("STANDINGS_OFFSET"))
	}
	if cfg.ActiveWindow, err = time.ParseDuration(getEnv("ACTIVE_WINDOW", "15m")); err != nil {
		return cfg, fmt.Errorf("ACTIVE_WINDOW: %w", err)
	}

	switch cfg.DirectorySource {
	case "csv", "pubhtml":
	default:
		return cfg, fmt.Errorf("DIRECTORY_SOURCE must be csv or pubhtml, got %q", cfg.DirectorySource)
	}
	switch cfg.FetchMode {
	case "http", "browser":
	default:
		return cfg, fmt.Errorf("FETCH_MODE must be http or browser, got %q", cfg.FetchMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
