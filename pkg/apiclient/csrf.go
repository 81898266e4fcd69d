package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rx3lixir/cepic-app/pkg/csrf"
)

// TokenSource источник CSRF токена
type TokenSource interface {
	Token() string
	Fetch(ctx context.Context) string
	Clear()
}

// CSRFInterceptor добавляет X-CSRF-Token к изменяющим запросам и один раз
// повторяет запрос со свежим токеном, если сервер ответил 403 "CSRF".
func CSRFInterceptor(tokens TokenSource, log *slog.Logger) Interceptor {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if !isMutating(req.Method) {
				return next.Do(req)
			}

			ctx := req.Context()

			// Берем токен из кэша, при отсутствии запрашиваем
			token := tokens.Token()
			if token == "" {
				token = tokens.Fetch(ctx)
			}

			resp, err := next.Do(withCSRFHeader(req, token))
			if err != nil {
				return nil, err
			}

			if resp.StatusCode != http.StatusForbidden {
				return resp, nil
			}

			body := peekBody(resp)
			if !strings.Contains(strings.ToUpper(string(body)), "CSRF") {
				return resp, nil
			}

			st := stateFrom(ctx)
			if st.csrfRetried {
				return resp, nil
			}
			st.csrfRetried = true

			log.WarnContext(ctx, "CSRF token rejected, refreshing", "method", req.Method, "path", req.URL.Path)

			tokens.Clear()
			fresh := tokens.Fetch(ctx)
			if fresh == "" {
				return resp, nil
			}

			resp.Body.Close()
			return next.Do(withCSRFHeader(req, fresh))
		})
	}
}

func withCSRFHeader(req *http.Request, token string) *http.Request {
	clone := req.Clone(req.Context())
	if token != "" {
		clone.Header.Set(csrf.HeaderName, token)
	} else {
		clone.Header.Del(csrf.HeaderName)
	}
	return clone
}
