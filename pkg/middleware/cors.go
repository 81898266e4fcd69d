package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig разрешенные источники фронтенда. Сессия живет в cookie,
// поэтому credentials включены всегда и "*" в списке не допускается.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// DefaultCORSConfig источники dev-серверов фронтенда
func DefaultCORSConfig() CORSConfig {
	return CORSFor(nil)
}

// CORSFor собирает конфигурацию из списка источников; пустой список
// заменяется dev-источниками
func CORSFor(origins []string) CORSConfig {
	cfg := CORSConfig{MaxAge: 600}
	for _, o := range origins {
		if o != "" && o != "*" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultOrigins...)
	}
	return cfg
}

// CORSMiddleware пропускает запросы фронтенда с cookie и CSRF заголовком
func CORSMiddleware(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", CSRFHeader, "Authorization"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           config.MaxAge,
	})
}
