package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pairup/internal/http/association"
	"github.com/MrJamesThe3rd/pairup/internal/http/export"
	"github.com/MrJamesThe3rd/pairup/internal/http/session"
)

type Options struct {
	AllowedOrigins []string
	AuthSecret     string
}

func New(
	opts Options,
	sessionsV1 *session.Handler,
	associationsV1 *association.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticator(opts.AuthSecret))

		r.Route("/sessions", sessionsV1.Routes)

		r.Route("/associations", func(r chi.Router) {
			associationsV1.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			exportV1.Routes(r)
		})
	})

	return router
}
