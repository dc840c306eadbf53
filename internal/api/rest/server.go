package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/render"
	"github.com/fortuna/rinkboard/internal/scheduler"
	"github.com/fortuna/rinkboard/internal/service"
	"github.com/fortuna/rinkboard/internal/standings"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// League is what the handlers need from the league service.
type League interface {
	Standings(ctx context.Context) (*service.Standings, error)
	TeamSchedule(ctx context.Context, team string) (*service.TeamSchedule, error)
	PlayerStats(ctx context.Context, team string) (*league.TeamStats, error)
	Sheets(ctx context.Context) ([]string, error)
	Teams() ([]string, error)
	Refresh(ctx context.Context, resetDirectory bool) (*service.Standings, error)
	Latest() *service.Standings
	HealthCheck(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port      string
	StaticDir string           // served under /static/; empty disables it
	Layout    standings.Layout // column layout for CSV output
	Status    func() scheduler.Status
}

// Server represents the REST API server
type Server struct {
	port   string
	server *http.Server
}

// NewServer creates a new REST API server
func NewServer(cfg Config, svc League, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	handler := NewHandler(svc, renderer, cfg, logger)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/standings", handler.GetStandings).Methods("GET")
	api.HandleFunc("/sheets", handler.GetSheets).Methods("GET")
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{team}/schedule", handler.GetTeamSchedule).Methods("GET")
	api.HandleFunc("/teams/{team}/players", handler.GetTeamPlayers).Methods("GET")
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")

	// HTML views
	router.HandleFunc("/", handler.StandingsPage).Methods("GET")
	router.HandleFunc("/teams/{team}", handler.TeamPage).Methods("GET")
	if cfg.StaticDir != "" {
		router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))),
		).Methods("GET")
	}

	// preflight requests are answered by CORSMiddleware
	router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return &Server{
		port: cfg.Port,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
