package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// setupRoutes binds every endpoint. Public reads stay open; mutations, the
// admin listing and the upload/profile surface sit behind the session
// middleware.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, startupTime time.Time) {
	r.Get("/health", healthHandler(startupTime))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handlers.authHandler.login())
		r.Post("/logout", handlers.authHandler.logout())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)
			r.Get("/me", handlers.authHandler.me())
			r.Put("/profile", handlers.authHandler.updateProfile())
		})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", handlers.projectHandler.listPublic())
		r.Get("/featured", handlers.projectHandler.listFeatured())
		r.Get("/search", handlers.projectHandler.search())
		r.Get("/technologies", handlers.projectHandler.listTechnologies())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)
			r.Get("/admin", handlers.projectHandler.listAdmin())
			r.Post("/", handlers.projectHandler.create())
			r.Put("/{projectID}", handlers.projectHandler.update())
			r.Delete("/{projectID}", handlers.projectHandler.remove())
			r.Patch("/{projectID}/toggle-status", handlers.projectHandler.toggleStatus())
		})

		// Registered last so the static segments above win the match.
		r.Get("/{slug}", handlers.projectHandler.getBySlug())
	})

	r.Route("/upload", func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Post("/image", handlers.uploadHandler.uploadSingle(false))
		r.Post("/images", handlers.uploadHandler.uploadBatch())
		r.Post("/video", handlers.uploadHandler.uploadSingle(true))
	})

	r.Post("/contact", handlers.contactHandler.submit())
}

func healthHandler(startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "healthHandler").Logger())

	return func(w http.ResponseWriter, r *http.Request) {
		responder.WriteJSON(w, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startupTime).Round(time.Second).String(),
		})
	}
}
