package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/leeaandrob/coinpulse/internal/cache"
	"github.com/leeaandrob/coinpulse/internal/metrics"
	"github.com/leeaandrob/coinpulse/internal/models"
)

// Deps are the collaborators the API serves from.
type Deps struct {
	Registry *models.Registry
	Insights InsightProducer
	Market   MarketData
	News     NewsFetcher
	Memes    MemeFetcher
	Users    UserStore
	// Cache may be nil to disable response caching.
	Cache   cache.Cache
	Metrics *metrics.Recorder
}

// Server represents the API server.
type Server struct {
	router   *chi.Mux
	handlers *Handlers
	addr     string
	server   *http.Server
}

// NewServer creates a new API server.
func NewServer(deps Deps, addr string) *Server {
	h := NewHandlers(deps)
	return &Server{router: routes(h, deps.Metrics), handlers: h, addr: addr}
}

// Handlers exposes the handlers so background jobs can refresh their
// cached responses.
func (s *Server) Handlers() *Handlers {
	return s.handlers
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Deps) *chi.Mux {
	return routes(NewHandlers(deps), deps.Metrics)
}

func routes(h *Handlers, rec *metrics.Recorder) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", UserHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", rec.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/health", h.HealthCheck)
		r.Get("/memes", h.GetMemes)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Post("/insight", h.PostInsight)

			r.Post("/prices", h.PostPrices)
			r.Get("/prices/detail", h.GetPriceDetail)
			r.Get("/prices/history", h.GetPriceHistory)

			r.Post("/news", h.PostNews)

			r.Post("/vote", h.PostVote)
			r.Get("/vote", h.GetVotes)

			r.Post("/onboarding", h.PostOnboarding)
			r.Get("/preferences", h.GetPreferences)
			r.Patch("/preferences", h.PatchPreferences)
			r.Post("/user/sync", h.PostUserSync)
		})
	})

	return r
}

// Start starts the API server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
