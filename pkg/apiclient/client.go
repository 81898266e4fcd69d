// Package apiclient собирает HTTP клиент фронтенда: cookie сессии,
// CSRF перехватчик и (в NewAuthClient) обновление токена по 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rx3lixir/cepic-app/pkg/csrf"
)

const DefaultTimeout = 15 * time.Second

// Options параметры клиента
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Logger    *slog.Logger
	Jar       http.CookieJar
	Transport http.RoundTripper
}

// Client HTTP клиент API. Создается один раз при старте и передается в сторы.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	tokens  *csrf.Service
	doer    Doer
	logger  *slog.Logger
}

// New создает клиент с CSRF перехватчиком. Дополнительные перехватчики
// оборачивают его снаружи.
func New(opts Options, interceptors ...Interceptor) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseURL)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("error creating cookie jar: %w", err)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	hc := &http.Client{
		Jar:       jar,
		Timeout:   timeout,
		Transport: transport,
	}

	c := &Client{
		baseURL: base,
		http:    hc,
		jar:     jar,
		tokens:  csrf.NewService(hc, base.String(), log),
		logger:  log,
	}

	chain := append([]Interceptor{}, interceptors...)
	chain = append(chain, CSRFInterceptor(c.tokens, log))
	c.doer = Chain(transportDoer(hc), chain...)

	return c, nil
}

// CSRF сервис токена клиента
func (c *Client) CSRF() *csrf.Service {
	return c.tokens
}

// BaseURL адрес API
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do выполняет запрос через цепочку перехватчиков. Флаги повторов
// привязаны к логическому запросу.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req = req.WithContext(withState(req.Context()))
	return c.doer.Do(req)
}

// NewRequest создает запрос с JSON телом к пути относительно BaseURL
func (c *Client) NewRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Send выполняет запрос и раскладывает поле data конверта в out
func (c *Client) Send(ctx context.Context, method, path string, in, out any) error {
	req, err := c.NewRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Send(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Send(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Send(ctx, http.MethodDelete, path, nil, out)
}

// Cookies cookie клиента для BaseURL
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// ExpireCookies удаляет cookie с указанными именами из jar
func (c *Client) ExpireCookies(names ...string) {
	expired := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		expired = append(expired, &http.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: time.Unix(0, 0),
		})
	}
	c.jar.SetCookies(c.baseURL, expired)
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

// envelope ответ API: {success, data, error, errors}
type envelope struct {
	Success *bool             `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &env); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	if resp.StatusCode >= 400 || (env.Success != nil && !*env.Success) {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}
