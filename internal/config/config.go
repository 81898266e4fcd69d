package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rx3lixir/cepic-app/pkg/pricing"
	"github.com/spf13/viper"
)

// Константы для ключей конфигурации
const (
	envKey          = "service_params.env"
	secretKey       = "service_params.secret_key"
	httpPortKey     = "server_params.http_port"
	secureCookieKey = "server_params.secure_cookies"
	apiBaseURLKey   = "client_params.base_url"
	twoFactorKey    = "auth_params.two_factor"
	storageKey      = "storage_params.driver"
	postgresDSNKey  = "storage_params.postgres_dsn"
	redisAddrKey    = "storage_params.redis_addr"
	redisPassKey    = "storage_params.redis_password"
	simulationKey   = "payment_params.simulation"
	checkoutURLKey  = "payment_params.checkout_url"
)

// AppConfig представляет конфигурацию всего приложения
type AppConfig struct {
	Service ServiceParams `mapstructure:"service_params" validate:"required"`
	Server  ServerParams  `mapstructure:"server_params" validate:"required"`
	Client  ClientParams  `mapstructure:"client_params" validate:"required"`
	Auth    AuthParams    `mapstructure:"auth_params" validate:"required"`
	Pricing PricingParams `mapstructure:"pricing_params"`
	Storage StorageParams `mapstructure:"storage_params" validate:"required"`
	Payment PaymentParams `mapstructure:"payment_params"`
	CORS    CORSParams    `mapstructure:"cors_params"`
}

// ServiceParams содержит общие параметры приложения
type ServiceParams struct {
	Env       string `mapstructure:"env" validate:"required,oneof=dev prod test"`
	SecretKey string `mapstructure:"secret_key" validate:"required,min=16"`
}

type ServerParams struct {
	HTTPPort        string        `mapstructure:"http_port" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
}

// ClientParams параметры клиентской части (CLI и стор)
type ClientParams struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
	SearchDebounce time.Duration `mapstructure:"search_debounce" validate:"gte=0"`
	CheckoutDelay  time.Duration `mapstructure:"checkout_delay" validate:"gte=0"`
}

type AuthParams struct {
	TwoFactor       bool          `mapstructure:"two_factor"`
	AccessTTL       time.Duration `mapstructure:"access_ttl" validate:"required"`
	RefreshTTL      time.Duration `mapstructure:"refresh_ttl" validate:"required,gtfield=AccessTTL"`
	CodeTTL         time.Duration `mapstructure:"code_ttl" validate:"required"`
	CodeMaxAttempts int           `mapstructure:"code_max_attempts" validate:"gte=1"`
}

type PricingParams struct {
	FreeShippingThreshold int64          `mapstructure:"free_shipping_threshold" validate:"gte=0"`
	ShippingFee           int64          `mapstructure:"shipping_fee" validate:"gte=0"`
	Promos                map[string]int `mapstructure:"promos" validate:"dive,gt=0,lte=100"`
}

// Rules правила расчета корзины. viper приводит ключи к нижнему регистру,
// коды промо хранятся в верхнем.
func (p PricingParams) Rules() pricing.Rules {
	promos := make(map[string]int, len(p.Promos))
	for code, pct := range p.Promos {
		promos[strings.ToUpper(code)] = pct
	}
	return pricing.Rules{
		FreeShippingThreshold: p.FreeShippingThreshold,
		ShippingFee:           p.ShippingFee,
		Promos:                promos,
	}
}

type StorageParams struct {
	Driver        string `mapstructure:"driver" validate:"required,oneof=memory postgres"`
	PostgresDSN   string `mapstructure:"postgres_dsn" validate:"required_if=Driver postgres"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"gte=0"`
}

type PaymentParams struct {
	Simulation  bool   `mapstructure:"simulation"`
	CheckoutURL string `mapstructure:"checkout_url" validate:"required_if=Simulation false,omitempty,url"`
}

type CORSParams struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// envBindings возвращает мапу ключей конфигурации и соответствующих им переменных окружения
func envBindings() map[string]string {
	return map[string]string{
		envKey:          "SERVICE_ENV",
		secretKey:       "SECRET_KEY",
		httpPortKey:     "HTTP_PORT",
		secureCookieKey: "SECURE_COOKIES",
		apiBaseURLKey:   "API_BASE_URL",
		twoFactorKey:    "TWO_FACTOR_ENABLED",
		storageKey:      "STORAGE_DRIVER",
		postgresDSNKey:  "POSTGRES_DSN",
		redisAddrKey:    "REDIS_ADDR",
		redisPassKey:    "REDIS_PASSWORD",
		simulationKey:   "PAYMENT_SIMULATION",
		checkoutURLKey:  "PAYMENT_CHECKOUT_URL",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_params.http_port", "8080")
	v.SetDefault("server_params.read_timeout", 10*time.Second)
	v.SetDefault("server_params.write_timeout", 10*time.Second)
	v.SetDefault("server_params.idle_timeout", 120*time.Second)
	v.SetDefault("server_params.request_timeout", 30*time.Second)
	v.SetDefault("server_params.shutdown_timeout", 5*time.Second)

	v.SetDefault("client_params.base_url", "http://localhost:8080/api")
	v.SetDefault("client_params.timeout", 15*time.Second)
	v.SetDefault("client_params.search_debounce", 500*time.Millisecond)
	v.SetDefault("client_params.checkout_delay", 1500*time.Millisecond)

	v.SetDefault("auth_params.two_factor", true)
	v.SetDefault("auth_params.access_ttl", 15*time.Minute)
	v.SetDefault("auth_params.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("auth_params.code_ttl", 10*time.Minute)
	v.SetDefault("auth_params.code_max_attempts", 5)

	rules := pricing.DefaultRules()
	v.SetDefault("pricing_params.free_shipping_threshold", rules.FreeShippingThreshold)
	v.SetDefault("pricing_params.shipping_fee", rules.ShippingFee)
	v.SetDefault("pricing_params.promos", rules.Promos)

	v.SetDefault("storage_params.driver", "memory")
	v.SetDefault("payment_params.simulation", true)
	v.SetDefault("cors_params.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}

// New загружает конфигурацию из internal/config/config.yaml рабочей директории
func New() (*AppConfig, error) {
	// Получаем рабочую директорию
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return Load(filepath.Join(cwd, "internal", "config", "config.yaml"))
}

// Load загружает конфигурацию из файла и переменных окружения.
// Отсутствующий файл не ошибка: остаются значения по умолчанию и окружение.
func Load(path string) (*AppConfig, error) {
	config, err := read(path)
	if err != nil {
		return nil, err
	}

	// Валидация конфигурации
	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadClient читает тот же файл, но проверяет только клиентскую часть.
// CLI не нужен секрет сервера.
func LoadClient(path string) (*AppConfig, error) {
	config, err := read(path)
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(config.Client); err != nil {
		return nil, fmt.Errorf("client config validation failed: %w", err)
	}
	if err := validate.Struct(config.Pricing); err != nil {
		return nil, fmt.Errorf("pricing config validation failed: %w", err)
	}
	return config, nil
}

func read(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	// Привязка переменных окружения
	for configKey, envVar := range envBindings() {
		if err := v.BindEnv(configKey, envVar); err != nil {
			return nil, fmt.Errorf("failed to bind env variable %s: %w", envVar, err)
		}
	}

	// Чтение конфигурации
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}

// Validate проверяет конфигурацию по тегам validate
func Validate(config *AppConfig) error {
	validate := validator.New()

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
