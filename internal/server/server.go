// Package server exposes the extractor and a server-owned accumulator over
// HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tmansmann0/capsim-ml/internal/accumulate"
	"github.com/tmansmann0/capsim-ml/internal/config"
	"github.com/tmansmann0/capsim-ml/internal/courier"
	"github.com/tmansmann0/capsim-ml/internal/store"
)

// Server wires the HTTP routes to an Extractor and an Accumulator. Store is
// optional; when set, every accumulated extraction is also persisted.
type Server struct {
	extractor *courier.Extractor
	acc       *accumulate.Accumulator
	store     store.Store
	cfg       config.ServerConfig
}

// New creates a Server. st may be nil.
func New(ext *courier.Extractor, acc *accumulate.Accumulator, st store.Store, cfg config.ServerConfig) *Server {
	if acc == nil {
		acc = accumulate.New()
	}
	return &Server{extractor: ext, acc: acc, store: st, cfg: cfg}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(NewRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).Handler)
		}
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/extract", s.handleExtract)

		r.Get("/accumulator", s.handleAccumulatorGet)
		r.Get("/accumulator.csv", s.handleAccumulatorCSV)
		r.Post("/accumulator", s.handleAccumulatorAppend)
		r.Delete("/accumulator", s.handleAccumulatorClear)

		r.Get("/forecast", s.handleForecast)
		r.Get("/history", s.handleHistory)
	})
	return r
}

func (s *Server) maxBodyBytes() int64 {
	mb := s.cfg.MaxBodyMB
	if mb <= 0 {
		mb = 16
	}
	return int64(mb) << 20
}
