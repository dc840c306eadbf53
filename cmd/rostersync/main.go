package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fortuna/rinkboard/internal/config"
	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/logging"
	"github.com/fortuna/rinkboard/internal/sheets"
	"go.uber.org/zap"
)

const (
	appName    = "rinkboard-rostersync"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	var (
		dataDir  = flag.String("data", cfg.DataDir, "Directory holding rosters.json")
		teamList = flag.String("teams", "", "Comma-separated team names (default: teams in the current rosters.json)")
		timeout  = flag.Duration("timeout", 2*time.Minute, "Overall timeout")
		logLevel = flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error, off)")
	)
	flag.Parse()

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting", zap.String("app", appName), zap.String("version", appVersion))

	store := league.NewStore(*dataDir)
	teams := splitTeams(*teamList)
	if len(teams) == 0 {
		current, err := store.LoadRosters()
		if err != nil {
			logger.Fatal("No --teams given and no existing roster to read them from", zap.Error(err))
		}
		teams = current.TeamNames()
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	doc, err := league.NewRosterSync(workbook, store, logger).Sync(ctx, teams)
	if err != nil {
		logger.Fatal("Roster sync failed", zap.Error(err))
	}

	players := 0
	for _, team := range doc.Teams {
		players += len(team.Players)
	}
	logger.Info("rosters updated",
		zap.String("path", store.Path(league.RostersFile)),
		zap.Int("teams", len(doc.Teams)),
		zap.Int("players", players),
	)
}

func splitTeams(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
