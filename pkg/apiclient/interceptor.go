package apiclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

const maxErrorBody = 1 << 20

var errNotReplayable = errors.New("apiclient: request body cannot be replayed")

// Doer выполняет HTTP запрос. *http.Client удовлетворяет интерфейсу.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc адаптер функции к Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Interceptor оборачивает Doer, как middleware оборачивает http.Handler
type Interceptor func(next Doer) Doer

// Chain собирает цепочку: первый перехватчик оказывается внешним
func Chain(base Doer, interceptors ...Interceptor) Doer {
	d := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		d = interceptors[i](d)
	}
	return d
}

// attemptState флаги повторов одного логического запроса.
// Живет в контексте, поэтому переживает повторы.
type attemptState struct {
	csrfRetried bool
	authRetried bool
	attempts    int
}

type stateKey struct{}

func withState(ctx context.Context) context.Context {
	if _, ok := ctx.Value(stateKey{}).(*attemptState); ok {
		return ctx
	}
	return context.WithValue(ctx, stateKey{}, &attemptState{})
}

func stateFrom(ctx context.Context) *attemptState {
	if st, ok := ctx.Value(stateKey{}).(*attemptState); ok {
		return st
	}
	// Запрос пришел в обход Client.Do: флаги живут только в этой цепочке
	return &attemptState{}
}

// Attempts сколько раз запрос с этим контекстом уходил в сеть
func Attempts(ctx context.Context) int {
	if st, ok := ctx.Value(stateKey{}).(*attemptState); ok {
		return st.attempts
	}
	return 0
}

// transportDoer конечное звено цепочки. Каждая попытка получает свежее тело
// и cookie из jar, а не заголовок Cookie прошлой попытки.
func transportDoer(hc *http.Client) Doer {
	return DoerFunc(func(req *http.Request) (*http.Response, error) {
		attempt, err := rewind(req)
		if err != nil {
			return nil, err
		}
		if st, ok := req.Context().Value(stateKey{}).(*attemptState); ok {
			st.attempts++
		}
		return hc.Do(attempt)
	})
}

func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	clone.Header.Del("Cookie")

	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

// peekBody читает тело ответа и подменяет его копией, чтобы вызывающий
// мог прочитать его еще раз
func peekBody(resp *http.Response) []byte {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return data
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
