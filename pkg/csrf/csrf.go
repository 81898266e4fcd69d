// Package csrf получает и кэширует double-submit CSRF токен сервера.
package csrf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// HeaderName заголовок, в котором сервер ждет токен
	HeaderName = "X-CSRF-Token"

	tokenPath      = "/csrf-token"
	defaultTimeout = 10 * time.Second
	flightKey      = "csrf-token"
)

var errEmptyToken = errors.New("csrf: empty token in response")

// Service хранит токен в памяти. Одновременно идет не больше одного запроса.
type Service struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	token string
}

// NewService создает сервис. client должен делить cookie jar с основным
// клиентом, иначе сервер не сопоставит токен и cookie.
func NewService(client *http.Client, baseURL string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	timeout := defaultTimeout
	if client.Timeout > 0 {
		timeout = client.Timeout
	}
	return &Service{
		client:  client,
		url:     strings.TrimRight(baseURL, "/") + tokenPath,
		timeout: timeout,
		logger:  log,
	}
}

// Token возвращает закэшированный токен или пустую строку
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear сбрасывает закэшированный токен
func (s *Service) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Fetch запрашивает свежий токен. Если запрос уже идет, ждет его результат.
// Ошибки не возвращаются: при неудаче кэш очищается и возвращается "".
func (s *Service) Fetch(ctx context.Context) string {
	ch := s.group.DoChan(flightKey, func() (any, error) {
		// Общий запрос не должен умирать вместе с контекстом первого вызывающего
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		token, err := s.request(fetchCtx)
		if err != nil {
			s.Clear()
			return "", err
		}

		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		return token, nil
	})

	select {
	case <-ctx.Done():
		return ""
	case res := <-ch:
		if res.Err != nil {
			s.logger.WarnContext(ctx, "Failed to fetch CSRF token", "error", res.Err)
			return ""
		}
		token, _ := res.Val.(string)
		return token
	}
}

func (s *Service) request(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("csrf: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("csrf: request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("csrf: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("csrf: decode response: %w", err)
	}
	if body.CSRFToken == "" {
		return "", errEmptyToken
	}

	return body.CSRFToken, nil
}
