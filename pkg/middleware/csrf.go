package middleware

import (
	"crypto/sha256"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
)

const CSRFHeader = "X-CSRF-Token"

// CSRFOptions параметры защиты double-submit cookie
type CSRFOptions struct {
	Secret         string
	Secure         bool
	TrustedOrigins []string
}

// CSRFMiddleware требует X-CSRF-Token на изменяющих запросах.
// Отказ отдается JSON 403 со словом CSRF в тексте ошибки: клиент по нему
// понимает, что токен нужно обновить.
func CSRFMiddleware(config *Config, opts CSRFOptions) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte(opts.Secret))

	protect := csrf.Protect(key[:],
		csrf.Secure(opts.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(originHosts(opts.TrustedOrigins)),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			config.Logger.WarnContext(r.Context(), "CSRF validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"reason", csrf.FailureReason(r))
			WriteError(w, http.StatusForbidden, "Invalid CSRF token")
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Без TLS проверка Referer для https неприменима
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenHandler GET /csrf-token → {"csrfToken": "..."}
func CSRFTokenHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": csrf.Token(r)})
}

// originHosts gorilla/csrf сравнивает host:port, без схемы
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		} else if o != "" && o != "*" {
			hosts = append(hosts, o)
		}
	}
	return hosts
}
