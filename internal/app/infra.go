package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rx3lixir/cepic-app/internal/config"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/repository/memory"
	"github.com/rx3lixir/cepic-app/internal/repository/postgres"
	"github.com/rx3lixir/cepic-app/internal/repository/redis"
	"github.com/rx3lixir/cepic-app/pkg/health"
	"github.com/rx3lixir/cepic-app/pkg/logger"
)

const maxHeapBytes = 512 << 20

type Infra struct {
	Store  *repository.Store
	Health *health.Health
	DB     *sql.DB
	Redis  *goredis.Client
}

// setupInfra каталог и библиотека всегда в памяти. Postgres заменяет
// пользователей, записи, платежи и сообщения, Redis сессии и коды.
func setupInfra(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (*Infra, error) {
	infra := &Infra{
		Store:  memory.New(),
		Health: health.New(0),
	}
	infra.Health.Register("memory", health.MemoryChecker(maxHeapBytes))

	if cfg.Storage.Driver == "postgres" {
		db, err := postgres.InitDB(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		infra.DB = db
		infra.Store.Users = postgres.NewUserRepository(db)
		infra.Store.Enrollments = postgres.NewEnrollmentRepository(db)
		infra.Store.Payments = postgres.NewPaymentRepository(db)
		infra.Store.Contacts = postgres.NewContactRepository(db)
		infra.Health.Register("postgres", health.SQLChecker(db))
		log.Info("Database connected and migrated")
	}

	if cfg.Storage.RedisAddr != "" {
		client, err := redis.Connect(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		infra.Redis = client
		infra.Store.Sessions = redis.NewSessionStore(client)
		infra.Store.Codes = redis.NewCodeStore(client)
		infra.Health.Register("redis", health.RedisChecker(client))
		log.Info("Redis connected", "addr", cfg.Storage.RedisAddr)
	}

	return infra, nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	return errors.Join(errs...)
}
