// Package server provides the HTTP server and routing for the finlit API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/finlit/finlit/internal/di"
	budgethandlers "github.com/finlit/finlit/internal/modules/budget/handlers"
	cataloghandlers "github.com/finlit/finlit/internal/modules/catalog/handlers"
	chathandlers "github.com/finlit/finlit/internal/modules/chat/handlers"
	contenthandlers "github.com/finlit/finlit/internal/modules/content/handlers"
	markethandlers "github.com/finlit/finlit/internal/modules/market/handlers"
	siphandlers "github.com/finlit/finlit/internal/modules/sip/handlers"
)

// Version is reported by /health
const Version = "1.0.0"

const (
	requestTimeout        = 60 * time.Second
	statusMonitorInterval = 60 * time.Second
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container
	Jobs      *di.JobInstances
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	c := cfg.Container

	var runner JobRunner
	if c.Scheduler != nil {
		runner = c.Scheduler
	}
	systemHandlers := NewSystemHandlers(cfg.Log, c.Databases(), c.Sessions, c.ChatRelay, runner)
	if c.SessionRepo != nil {
		systemHandlers.SetSessionStore(c.SessionRepo)
	}
	if cfg.Jobs != nil {
		systemHandlers.SetJobs(cfg.Jobs.All())
	}

	checkers := make(map[string]HealthChecker)
	for name, db := range c.Databases() {
		checkers[name] = db
	}

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		container:      c,
		systemHandlers: systemHandlers,
		statusMonitor:  NewStatusMonitor(c.EventManager, checkers, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// Write deadlines would cut WebSocket and SSE streams; non-stream requests get requestTimeout
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(streamAwareTimeout(requestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	c := s.container

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/events/stream", NewEventsStreamHandler(c.EventBus, s.log).ServeHTTP)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
			r.Post("/jobs/{name}/run", s.systemHandlers.HandleTriggerJob)
		})

		siphandlers.NewHandler(s.log).RegisterRoutes(r)
		budgethandlers.NewHandler(s.log).RegisterRoutes(r)
		markethandlers.NewHandler(c.Sessions, s.log).RegisterRoutes(r)
		cataloghandlers.NewHandler(c.CatalogService, s.log).RegisterRoutes(r)
		chathandlers.NewHandler(c.ChatRelay, s.log).RegisterRoutes(r)
		contenthandlers.NewHandler(c.ContentService, s.log).RegisterRoutes(r)
	})
}

// Start starts the status monitor and blocks serving HTTP
func (s *Server) Start() error {
	s.statusMonitor.Start(statusMonitorInterval)

	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.statusMonitor.Stop()
	return s.server.Shutdown(ctx)
}

// streamAwareTimeout applies middleware.Timeout to everything except WebSocket upgrades and SSE
func streamAwareTimeout(d time.Duration) func(http.Handler) http.Handler {
	timeout := middleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		timed := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStreamRequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}

func isStreamRequest(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream") ||
		strings.HasSuffix(r.URL.Path, "/events/stream")
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
