package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)

	r.Get("/healthz", handler.Health)

	r.Get("/login", handler.LoginPage)
	r.Post("/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(handler.RequireUser)
		r.Get("/", handler.Index)
		r.Get("/logout", handler.Logout)
		r.Get("/import", handler.ImportPage)
		r.Post("/import", handler.Import)
		r.Get("/export", handler.Export)
	})

	return r
}
