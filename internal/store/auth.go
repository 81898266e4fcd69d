package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
	"github.com/rx3lixir/cepic-app/pkg/nav"
)

// AuthAPI вызовы аутентификации
type AuthAPI interface {
	Login(ctx context.Context, req entity.LoginReq) (*entity.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*entity.User, error)
}

// AuthState снимок состояния сессии. Клиент не хранит токены, только профиль.
type AuthState struct {
	User            *entity.User
	IsAuthenticated bool
	Checked         bool
	Loading         bool
	Error           string
	Errors          validate.FieldErrors
}

type AuthStore struct {
	mu        sync.RWMutex
	api       AuthAPI
	navigator nav.Navigator
	log       *slog.Logger
	state     AuthState
}

func NewAuthStore(api AuthAPI, navigator nav.Navigator, log *slog.Logger) *AuthStore {
	return &AuthStore{api: api, navigator: navigator, log: loggerOrDefault(log)}
}

func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// CheckAuth проверка сессии через /auth/me. 401 это не ошибка, а "не вошел".
func (s *AuthStore) CheckAuth(ctx context.Context) error {
	s.setLoading(true)

	user, err := s.api.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	s.state.Checked = true

	if err != nil {
		s.state.User = nil
		s.state.IsAuthenticated = false
		if isUnauthenticated(err) || apiclient.IsCanceled(err) {
			return nil
		}
		s.state.Error = apiclient.UserMessage(err)
		return err
	}

	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Error = ""
	return nil
}

// Login вход по email и паролю. При успехе уводит на главную.
func (s *AuthStore) Login(ctx context.Context, form validate.LoginForm) error {
	if errs := validate.Struct(form); errs != nil {
		s.mu.Lock()
		s.state.Errors = errs
		s.mu.Unlock()
		return errs
	}

	s.setLoading(true)

	user, err := s.api.Login(ctx, entity.LoginReq{Email: form.Email, Password: form.Password})

	s.mu.Lock()
	s.state.Loading = false
	if err != nil {
		s.state.Errors = validate.Merge(nil, apiclient.FieldErrors(err))
		s.state.Error = apiclient.UserMessage(err)
		s.mu.Unlock()
		return err
	}
	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Checked = true
	s.state.Error = ""
	s.state.Errors = nil
	s.mu.Unlock()

	s.log.InfoContext(ctx, "User logged in", "user_id", user.ID)
	if s.navigator != nil {
		s.navigator.Navigate(nav.RouteHome)
	}
	return nil
}

// Logout завершает сессию. Локальное состояние сбрасывается даже при ошибке сервера.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "Logout request failed", "error", err)
	}

	s.Reset()
	if s.navigator != nil {
		s.navigator.Navigate(nav.RouteLogin)
	}
	return err
}

// SetUser устанавливает пользователя после регистрации или 2FA
func (s *AuthStore) SetUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = u
	s.state.IsAuthenticated = u != nil
	s.state.Checked = true
	s.state.Error = ""
}

// Reset забывает пользователя. Вызывается при невосстановимой сессии.
func (s *AuthStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = AuthState{Checked: true}
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	if v {
		s.state.Error = ""
	}
	s.mu.Unlock()
}
