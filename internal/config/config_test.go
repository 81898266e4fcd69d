package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
service_params:
  env: test
  secret_key: a-very-long-test-secret
auth_params:
  two_factor: false
  access_ttl: 1m
pricing_params:
  promos:
    BOOK10: 10
    summer5: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Env != "test" || cfg.Auth.TwoFactor {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.AccessTTL != time.Minute || cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("ttls = %v / %v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if cfg.Storage.Driver != "memory" || !cfg.Payment.Simulation {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Storage, cfg.Payment)
	}

	rules := cfg.Pricing.Rules()
	if p, ok := rules.LookupPromo("summer5"); !ok || p.Percent != 5 {
		t.Fatalf("promo from config not found: %+v %v", p, ok)
	}
	if rules.FreeShippingThreshold != 25000 || rules.ShippingFee != 2500 {
		t.Fatalf("pricing defaults = %+v", rules)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
service_params:
  env: dev
  secret_key: a-very-long-test-secret
`)
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.HTTPPort != "9999" {
		t.Fatalf("port = %q, want 9999", cfg.Server.HTTPPort)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := map[string]string{
		"short secret": `
service_params:
  env: dev
  secret_key: short
`,
		"postgres without dsn": `
service_params:
  env: dev
  secret_key: a-very-long-test-secret
storage_params:
  driver: postgres
`,
		"real payments without checkout url": `
service_params:
  env: dev
  secret_key: a-very-long-test-secret
payment_params:
  simulation: false
`,
		"unknown env": `
service_params:
  env: staging
  secret_key: a-very-long-test-secret
`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("Load() accepted invalid config")
			}
		})
	}
}

func TestLoadClientIgnoresServerSection(t *testing.T) {
	path := writeConfig(t, `
client_params:
  base_url: http://api.cepic.local/api
  timeout: 3s
`)
	t.Setenv("SECRET_KEY", "")

	cfg, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Client.BaseURL != "http://api.cepic.local/api" || cfg.Client.Timeout != 3*time.Second {
		t.Fatalf("client = %+v", cfg.Client)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load() must still require the server secret")
	}

	bad := writeConfig(t, `
client_params:
  base_url: not a url
`)
	if _, err := LoadClient(bad); err == nil {
		t.Fatalf("invalid base url accepted")
	}
}
