// Package mailer доставка кодов двухфакторной проверки.
package mailer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rx3lixir/cepic-app/pkg/logger"
)

type Mailer interface {
	SendCode(ctx context.Context, email, code string, ttl time.Duration) error
}

// LogMailer пишет код в лог. Для окружений без почтового сервера.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendCode(ctx context.Context, email, code string, ttl time.Duration) error {
	m.log.InfoContext(ctx, "Verification code issued",
		"email", email,
		"code", code,
		"expires_in", ttl.String())
	return nil
}

// Recorder запоминает последний код на каждый адрес
type Recorder struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
}

func NewRecorder() *Recorder {
	return &Recorder{codes: map[string]string{}}
}

func (r *Recorder) SendCode(_ context.Context, email, code string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[strings.ToLower(email)] = code
	r.sent++
	return nil
}

// LastCode последний отправленный код, пустая строка если не было
func (r *Recorder) LastCode(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[strings.ToLower(email)]
}

func (r *Recorder) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}
