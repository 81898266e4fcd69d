package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rx3lixir/cepic-app/internal/app"
	"github.com/rx3lixir/cepic-app/internal/config"
	"github.com/rx3lixir/cepic-app/internal/mailer"
	"github.com/rx3lixir/cepic-app/internal/repository/memory"
	"github.com/rx3lixir/cepic-app/pkg/health"
	"github.com/rx3lixir/cepic-app/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.AppConfig{
		Service: config.ServiceParams{Env: "test", SecretKey: "cli-test-secret-0123456789"},
		Server:  config.ServerParams{HTTPPort: "0", RequestTimeout: 10 * time.Second},
		Auth: config.AuthParams{
			AccessTTL:       time.Minute,
			RefreshTTL:      time.Hour,
			CodeTTL:         time.Minute,
			CodeMaxAttempts: 3,
		},
		Storage: config.StorageParams{Driver: "memory"},
		Payment: config.PaymentParams{Simulation: true},
	}
	router, err := app.NewRouter(cfg, memory.New(), mailer.NewRecorder(), health.New(time.Second), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--base-url", srv.URL + "/api",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegisterEnrollAndList(t *testing.T) {
	srv := newTestServer(t)
	creds := []string{"--email", "cli@example.com", "--password", "ValidPass1!"}

	out, err := run(t, srv, append([]string{"register", "--first-name", "Koffi", "--last-name", "Yao"}, creds...)...)
	if err != nil || !strings.Contains(out, "Welcome, Koffi!") {
		t.Fatalf("register: %v\n%s", err, out)
	}

	out, err = run(t, srv, append([]string{"enroll", "tr-english",
		"--phone", "07 01 23 45 67", "--operator", "MTN", "--motivation", "Travail"}, creds...)...)
	if err != nil || !strings.Contains(out, "accepted") {
		t.Fatalf("enroll: %v\n%s", err, out)
	}

	out, err = run(t, srv, append([]string{"enrollments"}, creds...)...)
	if err != nil {
		t.Fatalf("enrollments: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Anglais des affaires") || !strings.Contains(out, "PAID") {
		t.Fatalf("enrollment not listed:\n%s", out)
	}
}

func TestEnrollRejectsBadPhoneLocally(t *testing.T) {
	srv := newTestServer(t)
	creds := []string{"--email", "phone@example.com", "--password", "ValidPass1!"}

	if _, err := run(t, srv, append([]string{"register", "--first-name", "Awa", "--last-name", "Diallo"}, creds...)...); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, srv, append([]string{"enroll", "tr-web", "--phone", "123", "--operator", "ORANGE"}, creds...)...)
	if err == nil || !strings.Contains(out, "phone") {
		t.Fatalf("expected phone error, got %v\n%s", err, out)
	}
}

func TestCartQuoteWithPromo(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, srv, "cart", "--book", "book-01", "--book", "book-01", "--promo", "BOOK10")
	if err != nil {
		t.Fatalf("cart: %v\n%s", err, out)
	}
	if !strings.Contains(out, "already in the cart") || !strings.Contains(out, "Total:") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := run(t, srv, "cart", "--book", "book-01", "--promo", "NOPE"); err == nil {
		t.Fatalf("unknown promo accepted")
	}
}

func TestBooksNeedNoSession(t *testing.T) {
	srv := newTestServer(t)

	out, err := run(t, srv, "books", "--language", "en", "--sort", "price", "--order", "desc")
	if err != nil {
		t.Fatalf("books: %v\n%s", err, out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 || !strings.Contains(lines[1], "Clean Architecture") {
		t.Fatalf("most expensive english book must come first:\n%s", out)
	}
	if !strings.Contains(out, "4 books") {
		t.Fatalf("pagination footer missing:\n%s", out)
	}
}

func TestCommandsNeedCredentials(t *testing.T) {
	srv := newTestServer(t)
	t.Setenv("CEPIC_EMAIL", "")
	t.Setenv("CEPIC_PASSWORD", "")

	if _, err := run(t, srv, "enrollments"); err == nil {
		t.Fatalf("enrollments without credentials must fail")
	}
}
