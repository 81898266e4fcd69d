// Package app собирает хранилища, обработчики и HTTP сервер API.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/rx3lixir/cepic-app/internal/config"
	"github.com/rx3lixir/cepic-app/internal/mailer"
	"github.com/rx3lixir/cepic-app/pkg/logger"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
	logger     logger.Logger
}

// New поднимает инфраструктуру по конфигурации и строит сервер
func New(ctx context.Context, cfg *config.AppConfig, log logger.Logger) (*App, error) {
	infra, err := setupInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(cfg, infra.Store, mailer.NewLogMailer(log), infra.Health, log)
	if err != nil {
		infra.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		httpServer: server,
		cleanup:    infra.Close,
		logger:     log,
	}, nil
}

// Run блокируется до остановки сервера. Штатная остановка не ошибка.
func (a *App) Run() error {
	a.logger.Info("HTTP server listening", "addr", a.httpServer.Addr)
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
