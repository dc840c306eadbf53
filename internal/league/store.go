package league

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	RostersFile  = "rosters.json"
	GoaliesFile  = "goalies.json"
	ScheduleFile = "schedule.json"
)

// Store reads and writes the league's static JSON documents under Root.
type Store struct {
	Root string // e.g. "static/data"
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

func (s *Store) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *Store) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// ReadJSON decodes the document at rel into v.
func (s *Store) ReadJSON(rel string, v any) error {
	b, err := os.ReadFile(s.Path(rel))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}
	return nil
}

// WriteJSON writes v to rel as indented JSON, creating directories as needed.
func (s *Store) WriteJSON(rel string, v any) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (s *Store) LoadRosters() (*RosterDocument, error) {
	doc := &RosterDocument{}
	if err := s.ReadJSON(RostersFile, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) LoadGoalies() (*GoalieDocument, error) {
	doc := &GoalieDocument{}
	if err := s.ReadJSON(GoaliesFile, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) LoadSchedule() (*ScheduleDocument, error) {
	doc := &ScheduleDocument{}
	if err := s.ReadJSON(ScheduleFile, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) WriteRosters(doc *RosterDocument) error {
	return s.WriteJSON(RostersFile, doc)
}

// PlayerData joins the roster and goalie documents.
type PlayerData struct {
	LastUpdated string
	Rosters     *RosterDocument
	Goalies     *GoalieDocument // nil when goalies.json is unavailable
}

// LoadPlayerData reads rosters.json and goalies.json concurrently. A missing
// or broken goalie document is logged and tolerated; the roster is required.
func (s *Store) LoadPlayerData(ctx context.Context, logger *zap.Logger) (*PlayerData, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		rosters *RosterDocument
		goalies *GoalieDocument
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.LoadRosters()
		if err != nil {
			return fmt.Errorf("load rosters: %w", err)
		}
		rosters = doc
		return ctx.Err()
	})
	g.Go(func() error {
		doc, err := s.LoadGoalies()
		if err != nil {
			logger.Warn("goalie data unavailable", zap.Error(err))
			return nil
		}
		goalies = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PlayerData{
		LastUpdated: rosters.LastUpdated,
		Rosters:     rosters,
		Goalies:     goalies,
	}, nil
}
