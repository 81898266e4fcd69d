package middleware

import (
	"net/http"
	"strings"
	"time"

	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// AuthMiddleware проверяет JWT токен
func AuthMiddleware(config *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string

			// Сначала пытаемся получить токен из cookie
			if cookie, err := r.Cookie(AccessCookie); err == nil && cookie.Value != "" {
				tokenString = cookie.Value
				config.Logger.DebugContext(r.Context(), "Using access token from cookie")
			} else {
				// Fallback: получаем из заголовка Authorization
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					config.Logger.WarnContext(r.Context(), "No access token found in cookies or Authorization", "path", r.URL.Path)
					WriteError(w, http.StatusUnauthorized, "Authorization required")
					return
				}

				// Проверяем формат заголовка Bearer token
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
					WriteError(w, http.StatusUnauthorized, "Invalid authorization header format")
					return
				}
				tokenString = parts[1]
				config.Logger.DebugContext(r.Context(), "Using access token from Authorization header")
			}

			// Верифицируем токен
			claims, err := config.TokenMaker.VerifyToken(tokenString, token.KindAccess)
			if err != nil {
				config.Logger.WarnContext(r.Context(), "Invalid token", "error", err)

				// Невалидный access токен удаляем, refresh оставляем для /auth/refresh
				if cookie, _ := r.Cookie(AccessCookie); cookie != nil {
					ClearCookie(w, AccessCookie, config.SecureCookie)
				}

				WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// Добавляем данные пользователя в контекст запроса
			ctx := contextkeys.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetAuthCookie ставит HttpOnly cookie с токеном
func SetAuthCookie(w http.ResponseWriter, name, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie удаляет cookie
func ClearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookies очищает все аутентификационные cookies
func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ClearCookie(w, name, secure)
	}
}

// OptionalAuth кладет claims в контекст, если access токен действителен.
// Без токена или с просроченным запрос идет дальше как гостевой.
func OptionalAuth(config *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := config.TokenMaker.VerifyToken(cookie.Value, token.KindAccess)
			if err != nil {
				config.Logger.DebugContext(r.Context(), "Ignoring invalid access token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextkeys.WithClaims(r.Context(), claims)))
		})
	}
}
