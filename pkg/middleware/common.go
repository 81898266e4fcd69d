package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxConcurrent  = 100
)

// CommonMiddlewares цепочка для всего роутера: request id, журнал запросов,
// восстановление после паники, таймаут, CORS, сжатие и заголовки безопасности
func CommonMiddlewares(config *Config, timeout time.Duration) []func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		exposeRequestID,
		middleware.RealIP,
		RequestLogger(config),
		middleware.Recoverer,
		middleware.Timeout(timeout),
		CORSMiddleware(config.CORSConfig),
		middleware.Compress(5, "application/json"),
		SecurityHeaders(),
	}
}

func exposeRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-Id", id)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger пишет одну запись на запрос через логгер сервиса.
// 5xx идут уровнем error, 4xx warn.
func RequestLogger(config *Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			args := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			switch {
			case status >= http.StatusInternalServerError:
				config.Logger.ErrorContext(r.Context(), "Request failed", args...)
			case status >= http.StatusBadRequest:
				config.Logger.WarnContext(r.Context(), "Request rejected", args...)
			default:
				config.Logger.InfoContext(r.Context(), "Request served", args...)
			}
		})
	}
}

// SecurityHeaders заголовки безопасности; ответы API не кешируются,
// в них данные сессии
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware ограничивает число одновременных запросов к /api;
// лишние получают 503
func RateLimitMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = defaultMaxConcurrent
	}
	return middleware.Throttle(limit)
}
