// Command cepic консольный клиент API института: вход, библиотека, корзина и запись на обучение.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rx3lixir/cepic-app/internal/api"
	"github.com/rx3lixir/cepic-app/internal/config"
	"github.com/rx3lixir/cepic-app/internal/store"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/nav"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	baseURL    string
	verbose    bool
	email      string
	password   string
}

// session все, что нужно одной команде: конфиг, клиент и навигация в памяти
type session struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	nav    *nav.Memory
	client *apiclient.Client
	api    *api.Services
	auth   *store.AuthStore
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "cepic",
		Short:        "Command line client for the CEPIC training institute API",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", envOr("CONFIG_PATH", "internal/config/config.yaml"), "path to the YAML config")
	flags.StringVar(&opts.baseURL, "base-url", "", "API base URL, overrides client_params.base_url")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP activity")
	flags.StringVar(&opts.email, "email", os.Getenv("CEPIC_EMAIL"), "account email for commands that need a session")
	flags.StringVar(&opts.password, "password", os.Getenv("CEPIC_PASSWORD"), "account password for commands that need a session")

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newBooksCmd(opts),
		newCartCmd(opts),
		newTrainingsCmd(opts),
		newEnrollCmd(opts),
		newEnrollmentsCmd(opts),
		newContactCmd(opts),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newSession собирает клиента по конфигу. Сессия живет только в cookie jar процесса.
func newSession(opts *rootOptions) (*session, error) {
	cfg, err := config.LoadClient(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		cfg.Client.BaseURL = opts.baseURL
	}

	log := logger.Discard()
	if opts.verbose {
		log = logger.NewWithWriter("dev", os.Stderr)
	}

	navigator := nav.NewMemory(nav.RouteHome)
	client, err := apiclient.NewAuthClient(
		apiclient.Options{BaseURL: cfg.Client.BaseURL, Timeout: cfg.Client.Timeout, Logger: log},
		apiclient.AuthOptions{Navigator: navigator},
	)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	services := api.NewServices(client)
	return &session{
		cfg:    cfg,
		log:    log,
		nav:    navigator,
		client: client,
		api:    services,
		auth:   store.NewAuthStore(services.Auth, navigator, log),
	}, nil
}

// login входит с учетными данными из флагов или окружения
func (s *session) login(ctx context.Context, opts *rootOptions) error {
	if opts.email == "" || opts.password == "" {
		return errors.New("this command needs --email and --password (or CEPIC_EMAIL and CEPIC_PASSWORD)")
	}
	if err := s.auth.Login(ctx, validate.LoginForm{Email: opts.email, Password: opts.password}); err != nil {
		return describe(err, s.auth.State().Errors)
	}
	return nil
}

// describe превращает ошибку API в текст для терминала
func describe(err error, fields map[string]string) error {
	if err == nil {
		return nil
	}
	if len(fields) == 0 {
		fields = apiclient.FieldErrors(err)
	}
	msg := apiclient.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	for field, text := range fields {
		msg += fmt.Sprintf("\n  %s: %s", field, text)
	}
	return errors.New(msg)
}
