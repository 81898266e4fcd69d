package middleware

import (
	"net/http"

	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
)

// RequireAuth группа маршрутов только для вошедших: свои записи и оплаты,
// закладки, профиль
func RequireAuth(config *Config) func(http.Handler) http.Handler {
	return AuthMiddleware(config)
}

// RequireAdmin сессия плюс роль администратора. Закрывает общий список
// записей и ручное подтверждение оплаты.
func RequireAdmin(config *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return AuthMiddleware(config)(adminOnly(config, next))
	}
}

func adminOnly(config *Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := contextkeys.ClaimsFrom(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Authorization required")
			return
		}

		if !claims.IsAdmin {
			config.Logger.WarnContext(r.Context(), "Admin route refused",
				"user_id", claims.UserID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			WriteError(w, http.StatusForbidden, "Admin privileges required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
