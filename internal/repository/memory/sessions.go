package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: map[string]entity.Session{}}
}

func (r *Sessions) Create(_ context.Context, s entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *Sessions) Get(_ context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || repository.Expired(s.ExpiresAt) {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *Sessions) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsRevoked = true
	r.sessions[id] = s
	return nil
}

type Codes struct {
	mu    sync.Mutex
	codes map[string]entity.VerificationCode
}

func NewCodes() *Codes {
	return &Codes{codes: map[string]entity.VerificationCode{}}
}

func (r *Codes) Save(_ context.Context, c entity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[strings.ToLower(c.Email)] = c
	return nil
}

func (r *Codes) Get(_ context.Context, email string) (*entity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	c, ok := r.codes[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if repository.Expired(c.ExpiresAt) {
		delete(r.codes, key)
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Codes) IncrementAttempts(_ context.Context, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	c, ok := r.codes[key]
	if !ok {
		return 0, repository.ErrNotFound
	}
	c.Attempts++
	r.codes[key] = c
	return c.Attempts, nil
}

func (r *Codes) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, strings.ToLower(email))
	return nil
}
