package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tucalendariobot/tucalendariobot/internal/metrics"
)

const alivePage = "<h1>%s está activo</h1><p>El bot de Telegram está funcionando correctamente.</p>"

// Check reports whether a dependency is usable.
type Check func() bool

type Server struct {
	httpSrv *http.Server
	router  chi.Router
	botName string
	checks  map[string]Check
	started time.Time
	log     zerolog.Logger
}

// ServerConfig holds configuration for the liveness server
type ServerConfig struct {
	Port    int
	BotName string

	// Checks are reported by /health as connected/disconnected.
	Checks map[string]Check
	Logger zerolog.Logger
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		botName: cfg.BotName,
		checks:  cfg.Checks,
		started: time.Now(),
		log:     cfg.Logger.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	s.registerRoutes(r)
	s.router = r

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handleHealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Every other path answers with the alive page, as the hosting platform probes "/".
	r.Get("/", s.handleAlive)
	r.NotFound(s.handleAlive)
	r.MethodNotAllowed(s.handleAlive)
}

func (s *Server) handleAlive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, alivePage, s.botName)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]string, len(s.checks))
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	for _, name := range names {
		if s.checks[name]() {
			components[name] = "connected"
		} else {
			components[name] = "disconnected"
			healthy = false
		}
	}

	status := map[string]interface{}{
		"status":     "healthy",
		"bot":        s.botName,
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"components": components,
	}
	if !healthy {
		status["status"] = "degraded"
	}
	respondJSON(w, http.StatusOK, status)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("HTTP server listening")
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.router
}
