// Package api exposes the lesson-plan pipeline over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ByLCY/lessonplan/config"
	"github.com/ByLCY/lessonplan/export"
	"github.com/ByLCY/lessonplan/exportlog"
	"github.com/ByLCY/lessonplan/logger"
)

// History lists past exports. *exportlog.Store satisfies it.
type History interface {
	List(ctx context.Context, p exportlog.ListParams) ([]exportlog.Entry, error)
}

// Server is the HTTP API server for lessonplan.
type Server struct {
	router   chi.Router
	exporter *export.Exporter
	history  History
	log      *logger.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. history may be nil.
func NewServer(exp *export.Exporter, history History, log *logger.Logger, cfg config.Config) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		exporter: exp,
		history:  history,
		log:      log.With("component", "api"),
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey))
		r.Use(BodyLimit(s.cfg.MaxBodyBytes))

		r.Route("/api/lesson-plans", func(r chi.Router) {
			r.Post("/resolve", s.handleResolve)
			r.Post("/layout", s.handleLayout)
			r.Post("/export", s.handleExport)
			r.Post("/preview", s.handlePreview)
		})
		r.Get("/api/exports", s.handleListExports)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
