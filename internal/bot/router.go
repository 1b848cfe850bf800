package bot

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a chi router with all bot endpoints. An empty signing
// secret disables signature verification (local development only).
func NewRouter(handler *Handler, signingSecret string) http.Handler {
	r := chi.NewRouter()

	// middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// basic cors
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// health check
	r.Get("/health", handler.Health)

	// platform webhooks
	r.Route("/slack", func(r chi.Router) {
		if signingSecret != "" {
			r.Use(VerifySignature(signingSecret))
		}
		r.Post("/commands", handler.HandleCommand)
		r.Post("/interactions", handler.HandleInteraction)
	})

	return r
}
