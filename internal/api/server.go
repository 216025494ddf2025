// Package api provides the HTTP API server and handlers for the Podscribe application.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/podscribeapp/podscribe-server/internal/domain"
	"github.com/podscribeapp/podscribe-server/internal/http/response"
	"github.com/podscribeapp/podscribe-server/internal/search"
	"github.com/podscribeapp/podscribe-server/internal/store"
	"github.com/podscribeapp/podscribe-server/internal/validation"
)

// EpisodePipeline is the slice of the processing pipeline the API needs.
type EpisodePipeline interface {
	ProcessEpisode(ctx context.Context, episodeID string) error
	Rechapter(ctx context.Context, episodeID string, threshold float64) (*domain.Episode, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	index      *search.SegmentIndex
	pipeline   EpisodePipeline
	validator  *validation.Validator
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
	searchTopK int
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, index *search.SegmentIndex, pipeline EpisodePipeline, searchTopK int, logger *slog.Logger) *Server {
	s := &Server{
		store:      st,
		index:      index,
		pipeline:   pipeline,
		validator:  validation.New(),
		router:     chi.NewRouter(),
		logger:     logger,
		searchTopK: searchTopK,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Podscribe API", "1.0.0")
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerEpisodeRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Unmatched routes still get a JSON body.
	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "method not allowed", s.logger)
	})
}
