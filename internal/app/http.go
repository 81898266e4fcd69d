package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/config"
	authhandler "github.com/rx3lixir/cepic-app/internal/handler/authHandler"
	cataloghandler "github.com/rx3lixir/cepic-app/internal/handler/catalogHandler"
	enrollmenthandler "github.com/rx3lixir/cepic-app/internal/handler/enrollmentHandler"
	libraryhandler "github.com/rx3lixir/cepic-app/internal/handler/libraryHandler"
	"github.com/rx3lixir/cepic-app/internal/mailer"
	"github.com/rx3lixir/cepic-app/internal/payment"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/pkg/health"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

const maxConcurrentRequests = 100

// NewRouter маршруты API под /api и /health
func NewRouter(cfg *config.AppConfig, store *repository.Store, m mailer.Mailer, hc *health.Health, log logger.Logger) (http.Handler, error) {
	if store == nil || m == nil {
		return nil, errors.New("store and mailer are required")
	}

	gateway, err := payment.NewGateway(cfg.Payment.Simulation, cfg.Payment.CheckoutURL)
	if err != nil {
		return nil, err
	}

	cors := middleware.CORSFor(cfg.CORS.AllowedOrigins)

	// Конфигурация middleware
	mwConfig := &middleware.Config{
		TokenMaker:   token.NewJWTMaker(cfg.Service.SecretKey),
		Logger:       log,
		CORSConfig:   cors,
		SecureCookie: cfg.Server.SecureCookies,
	}

	auth := authhandler.NewAuthHandler(store.Users, store.Sessions, store.Codes, m, mwConfig.TokenMaker, authhandler.Options{
		TwoFactor:       cfg.Auth.TwoFactor,
		AccessTTL:       cfg.Auth.AccessTTL,
		RefreshTTL:      cfg.Auth.RefreshTTL,
		CodeTTL:         cfg.Auth.CodeTTL,
		CodeMaxAttempts: cfg.Auth.CodeMaxAttempts,
		SecureCookies:   cfg.Server.SecureCookies,
	}, log)
	library := libraryhandler.NewLibraryHandler(store.Books, log)
	enrollments := enrollmenthandler.NewEnrollmentHandler(store.Enrollments, store.Payments, store.Catalog, gateway, log)
	catalog := cataloghandler.NewCatalogHandler(store.Catalog, store.Contacts, log)

	r := chi.NewRouter()

	// Общие middleware
	for _, mw := range middleware.CommonMiddlewares(mwConfig, cfg.Server.RequestTimeout) {
		r.Use(mw)
	}

	if hc != nil {
		r.Get("/health", hc.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(maxConcurrentRequests))
		r.Use(middleware.CSRFMiddleware(mwConfig, middleware.CSRFOptions{
			Secret:         cfg.Service.SecretKey,
			Secure:         cfg.Server.SecureCookies,
			TrustedOrigins: cors.AllowedOrigins,
		}))

		r.Get("/csrf-token", middleware.CSRFTokenHandler)

		authhandler.RegisterRoutes(r, auth, mwConfig)
		libraryhandler.RegisterRoutes(r, library, mwConfig)
		enrollmenthandler.RegisterRoutes(r, enrollments, mwConfig)
		cataloghandler.RegisterRoutes(r, catalog)
	})

	return r, nil
}
