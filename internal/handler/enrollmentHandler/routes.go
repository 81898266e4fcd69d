package enrollmenthandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
)

func RegisterRoutes(r chi.Router, e *enrollmentHandler, config *middleware.Config) {
	h := func(f handler.APIFunc) http.HandlerFunc {
		return handler.MakeHTTPHandlerFunc(e.logger, f)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(config))

		r.Post("/enrollments", h(e.handleCreateEnrollment))
		r.Get("/enrollments/mine", h(e.handleListMine))
		r.Get("/enrollments/{id}", h(e.handleGetEnrollment))
		r.Patch("/enrollments/{id}", h(e.handleUpdateEnrollment))

		r.Post("/payments/initiate", h(e.handleInitiatePayment))
		r.Get("/payments/verify/{transactionId}", h(e.handleVerifyPayment))
	})

	// Админские операции
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(config))

		r.Get("/enrollments", h(e.handleListAll))
		r.Post("/payments/confirm/{transactionId}", h(e.handleConfirmPayment))
	})
}
