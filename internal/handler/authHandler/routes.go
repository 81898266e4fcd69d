package authhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
)

// RegisterRoutes монтирует /auth. Публичные эндпоинты не требуют access токена.
func RegisterRoutes(r chi.Router, a *authHandler, config *middleware.Config) {
	h := func(f handler.APIFunc) func(w http.ResponseWriter, r *http.Request) {
		return handler.MakeHTTPHandlerFunc(a.logger, f)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h(a.handleRegister))
		r.Post("/login", h(a.handleLogin))
		r.Post("/verify-2fa", h(a.handleVerifyCode))
		r.Post("/resend-2fa", h(a.handleResendCode))
		r.Post("/refresh", h(a.handleRefreshToken))
		r.Post("/logout", h(a.handleLogout))

		// Защищенные эндпоинты
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(config))
			r.Get("/me", h(a.handleMe))
		})
	})
}
