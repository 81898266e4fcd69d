package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

// CodeStore хранит код как hash: code, attempts, expires_at
type CodeStore struct {
	client goredis.UniversalClient
	prefix string
}

func NewCodeStore(client goredis.UniversalClient) *CodeStore {
	return &CodeStore{client: client, prefix: "2fa:"}
}

func (s *CodeStore) key(email string) string {
	return s.prefix + strings.ToLower(email)
}

func (s *CodeStore) Save(ctx context.Context, c entity.VerificationCode) error {
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("2fa: expires_at must be in the future")
	}

	key := s.key(c.Email)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", c.Code,
			"attempts", c.Attempts,
			"expires_at", c.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (s *CodeStore) Get(ctx context.Context, email string) (*entity.VerificationCode, error) {
	fields, err := s.client.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return nil, err
	}
	return parseCode(email, fields)
}

func (s *CodeStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	key := s.key(email)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, repository.ErrNotFound
	}

	attempts, err := s.client.HIncrBy(ctx, key, "attempts", 1).Result()
	if err != nil {
		return 0, err
	}
	return int(attempts), nil
}

func (s *CodeStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.key(email)).Err()
}

// parseCode пустой hash означает, что кода нет или он истек
func parseCode(email string, fields map[string]string) (*entity.VerificationCode, error) {
	code, ok := fields["code"]
	if !ok {
		return nil, repository.ErrNotFound
	}

	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("2fa: bad attempts value: %w", err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("2fa: bad expires_at value: %w", err)
	}

	return &entity.VerificationCode{
		Email:     strings.ToLower(email),
		Code:      code,
		Attempts:  attempts,
		ExpiresAt: time.Unix(expires, 0).UTC(),
	}, nil
}
