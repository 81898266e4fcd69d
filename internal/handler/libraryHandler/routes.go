package libraryhandler

import (
	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
)

func RegisterRoutes(r chi.Router, l *libraryHandler, config *middleware.Config) {
	r.Route("/library", func(r chi.Router) {
		// Каталог открыт гостям, флаг закладки только для вошедших
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(config))
			r.Get("/books", handler.MakeHTTPHandlerFunc(l.logger, l.handleListBooks))
			r.Get("/books/{id}", handler.MakeHTTPHandlerFunc(l.logger, l.handleGetBook))
			r.Get("/categories", handler.MakeHTTPHandlerFunc(l.logger, l.handleListCategories))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(config))
			r.Post("/books/{id}/bookmark", handler.MakeHTTPHandlerFunc(l.logger, l.handleToggleBookmark))
		})
	})
}
