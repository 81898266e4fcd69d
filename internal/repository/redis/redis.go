// Package redis сессии refresh токенов и коды 2FA с TTL в Redis.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect создает клиента и проверяет соединение
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
