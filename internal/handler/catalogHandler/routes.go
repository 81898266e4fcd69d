package cataloghandler

import (
	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/handler"
)

// RegisterRoutes публичные страницы, аутентификация не нужна
func RegisterRoutes(r chi.Router, c *catalogHandler) {
	r.Get("/categories", handler.MakeHTTPHandlerFunc(c.logger, c.handleListCategories))
	r.Get("/trainings", handler.MakeHTTPHandlerFunc(c.logger, c.handleListTrainings))
	r.Get("/trainings/{id}", handler.MakeHTTPHandlerFunc(c.logger, c.handleGetTraining))
	r.Get("/gallery", handler.MakeHTTPHandlerFunc(c.logger, c.handleListGallery))
	r.Post("/contact", handler.MakeHTTPHandlerFunc(c.logger, c.handleContact))
}
