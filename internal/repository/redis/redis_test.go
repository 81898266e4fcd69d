package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

func TestParseCode(t *testing.T) {
	if _, err := parseCode("a@b.c", map[string]string{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("empty hash err = %v", err)
	}

	c, err := parseCode("A@B.c", map[string]string{"code": "123456", "attempts": "2", "expires_at": "1700000000"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Email != "a@b.c" || c.Attempts != 2 || c.ExpiresAt.Unix() != 1700000000 {
		t.Fatalf("code = %+v", c)
	}

	if _, err := parseCode("a@b.c", map[string]string{"code": "1", "attempts": "x", "expires_at": "1"}); err == nil {
		t.Fatalf("bad attempts accepted")
	}
}

// Интеграционный тест, нужен живой Redis в REDIS_ADDR
func TestStoresAgainstRedis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	sessions := NewSessionStore(client)
	sess := entity.Session{ID: "test-" + time.Now().Format("150405.000"), UserID: "u1", ExpiresAt: time.Now().Add(time.Minute)}
	if err := sessions.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if err := sessions.Revoke(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	got, err := sessions.Get(ctx, sess.ID)
	if err != nil || !got.IsRevoked {
		t.Fatalf("session = %+v, %v", got, err)
	}

	codes := NewCodeStore(client)
	email := sess.ID + "@example.com"
	if err := codes.Save(ctx, entity.VerificationCode{Email: email, Code: "654321", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if n, err := codes.IncrementAttempts(ctx, email); err != nil || n != 1 {
		t.Fatalf("attempts = %d, %v", n, err)
	}
	_ = codes.Delete(ctx, email)
	if _, err := codes.Get(ctx, email); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("deleted code still present: %v", err)
	}
}
