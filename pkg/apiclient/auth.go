package apiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rx3lixir/cepic-app/pkg/nav"
	"golang.org/x/sync/singleflight"
)

const (
	RefreshPath = "/auth/refresh"
	MePath      = "/auth/me"

	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// AuthOptions поведение при истекшей сессии
type AuthOptions struct {
	// Navigator нужен для редиректа на логин. nil отключает редирект.
	Navigator nav.Navigator
	// LoginRoute куда уводить при невосстановимой сессии
	LoginRoute string
	// OnSessionExpired вызывается после неудачного обновления токена
	OnSessionExpired func()
	// SkipPaths эндпоинты, для которых 401 не запускает обновление
	SkipPaths []string
}

// DefaultSkipPaths эндпоинты аутентификации: их 401 означает неверные данные
var DefaultSkipPaths = []string{
	"/auth/login",
	RefreshPath,
	"/auth/register",
	"/auth/verify-2fa",
	"/auth/resend-2fa",
}

// NewAuthClient клиент с обновлением access токена по 401
func NewAuthClient(opts Options, auth AuthOptions) (*Client, error) {
	a := &authRefresher{opts: auth}
	if a.opts.LoginRoute == "" {
		a.opts.LoginRoute = nav.RouteLogin
	}
	if a.opts.SkipPaths == nil {
		a.opts.SkipPaths = DefaultSkipPaths
	}

	c, err := New(opts, a.interceptor)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

type authRefresher struct {
	opts   AuthOptions
	client *Client
	group  singleflight.Group
}

func (a *authRefresher) interceptor(next Doer) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := next.Do(req)
		if err != nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}

		path := a.relativePath(req.URL.Path)
		if a.skip(path) {
			return resp, nil
		}

		ctx := req.Context()
		st := stateFrom(ctx)
		if st.authRetried {
			return resp, nil
		}
		st.authRetried = true

		// Тело 401 нужно сохранить: при неудаче обновления его увидит вызывающий
		peekBody(resp)

		if !a.refresh(ctx, next) {
			a.expire(ctx, path)
			return resp, nil
		}

		resp.Body.Close()
		return next.Do(req)
	})
}

// refresh вызывает /auth/refresh. Параллельные 401 делят один вызов.
func (a *authRefresher) refresh(ctx context.Context, next Doer) bool {
	ch := a.group.DoChan("refresh", func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.client.http.Timeout+time.Second)
		defer cancel()

		// Обновление отдельный логический запрос со своими флагами
		req, err := a.client.NewRequest(context.WithValue(refreshCtx, stateKey{}, &attemptState{}), http.MethodPost, RefreshPath, struct{}{})
		if err != nil {
			return false, err
		}

		resp, err := next.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()

		if err := decodeResponse(resp, nil); err != nil {
			return false, err
		}
		return true, nil
	})

	select {
	case <-ctx.Done():
		return false
	case res := <-ch:
		if res.Err != nil {
			a.client.logger.WarnContext(ctx, "Session refresh failed", "error", res.Err)
			return false
		}
		ok, _ := res.Val.(bool)
		return ok
	}
}

// expire сессия невосстановима: чистим cookie и уводим на логин,
// если пользователь не на странице аутентификации и это не проверка /auth/me
func (a *authRefresher) expire(ctx context.Context, path string) {
	a.client.ExpireCookies(AccessCookie, RefreshCookie)

	if a.opts.OnSessionExpired != nil {
		a.opts.OnSessionExpired()
	}

	if a.opts.Navigator == nil || path == MePath {
		return
	}

	current := a.opts.Navigator.CurrentPath()
	if nav.IsAuthRoute(current) {
		return
	}

	a.client.logger.InfoContext(ctx, "Session expired, redirecting to login", "from", current)
	a.opts.Navigator.Navigate(a.opts.LoginRoute)
}

func (a *authRefresher) skip(path string) bool {
	for _, p := range a.opts.SkipPaths {
		if path == p {
			return true
		}
	}
	return false
}

// relativePath путь запроса без префикса BaseURL
func (a *authRefresher) relativePath(p string) string {
	prefix := strings.TrimRight(a.client.baseURL.Path, "/")
	return "/" + strings.TrimLeft(strings.TrimPrefix(p, prefix), "/")
}
