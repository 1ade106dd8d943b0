package api

import (
	"time"

	"timelock.keep/internal/logger"
	"timelock.keep/internal/timelock"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(vault *timelock.Service, log *logger.Logger) *chi.Mux {
	h := NewHandler(vault)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(CORS(CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health
	r.Get("/api/health", h.Health)

	// API routes
	r.Route("/api/secrets", func(r chi.Router) {
		r.Use(JSONOnly)

		r.Post("/", h.CreateSecret)
		r.Get("/", h.ListSecrets)
		r.Get("/{id}", h.GetSecret)
		r.Delete("/{id}", h.DeleteSecret)
	})

	return r
}
