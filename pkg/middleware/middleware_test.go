package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

func testConfig() *Config {
	return &Config{
		TokenMaker: token.NewJWTMaker("middleware-test-secret"),
		Logger:     logger.Discard(),
		CORSConfig: DefaultCORSConfig(),
	}
}

func TestCSRFDoubleSubmit(t *testing.T) {
	cfg := testConfig()

	r := chi.NewRouter()
	r.Use(CSRFMiddleware(cfg, CSRFOptions{Secret: "csrf-secret"}))
	r.Get("/csrf-token", CSRFTokenHandler)
	r.Post("/things", func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, http.StatusCreated, map[string]bool{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	// Без токена
	resp, err := client.Post(srv.URL+"/things", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden || !strings.Contains(string(body), "CSRF") {
		t.Fatalf("POST without token = %d %s", resp.StatusCode, body)
	}

	// Получаем токен
	resp, err = client.Get(srv.URL + "/csrf-token")
	if err != nil {
		t.Fatalf("GET token: %v", err)
	}
	var tok struct {
		CSRFToken string `json:"csrfToken"`
	}
	json.NewDecoder(resp.Body).Decode(&tok)
	resp.Body.Close()
	if tok.CSRFToken == "" {
		t.Fatalf("empty csrf token")
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/things", strings.NewReader("{}"))
	req.Header.Set(CSRFHeader, tok.CSRFToken)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("POST with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST with token = %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()

	h := RequireAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := contextkeys.ClaimsFrom(r.Context())
		WriteData(w, http.StatusOK, claims.UserID)
	}))

	access, _, _ := cfg.TokenMaker.CreateToken("u1", "a@b.c", false, token.KindAccess, time.Minute)
	refresh, _, _ := cfg.TokenMaker.CreateToken("u1", "a@b.c", false, token.KindRefresh, time.Minute)

	tests := []struct {
		name   string
		cookie string
		header string
		want   int
	}{
		{"cookie", access, "", http.StatusOK},
		{"bearer fallback", "", "Bearer " + access, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"refresh token as access", refresh, "", http.StatusUnauthorized},
		{"bad header", "", "Token " + access, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := testConfig()
	h := RequireAdmin(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	user, _, _ := cfg.TokenMaker.CreateToken("u1", "a@b.c", false, token.KindAccess, time.Minute)
	admin, _, _ := cfg.TokenMaker.CreateToken("u2", "admin@b.c", true, token.KindAccess, time.Minute)

	for tok, want := range map[string]int{"": http.StatusUnauthorized, user: http.StatusForbidden, admin: http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/enrollments", nil)
		if tok != "" {
			req.AddCookie(&http.Cookie{Name: AccessCookie, Value: tok})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("status = %d, want %d", rec.Code, want)
		}
	}
}

func TestOptionalAuth(t *testing.T) {
	cfg := testConfig()
	h := OptionalAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := contextkeys.ClaimsFrom(r.Context())
		if !ok {
			io.WriteString(w, "guest")
			return
		}
		io.WriteString(w, claims.UserID)
	}))

	access, _, _ := cfg.TokenMaker.CreateToken("u1", "a@b.c", false, token.KindAccess, time.Minute)

	for cookie, want := range map[string]string{"": "guest", "garbage": "guest", access: "u1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: AccessCookie, Value: cookie})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("status %d body %q, want %q", rec.Code, rec.Body.String(), want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORSMiddleware(CORSFor([]string{"*", "https://cepic.example"}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for origin, allowed := range map[string]bool{"https://cepic.example": true, "https://evil.example": false} {
		req := httptest.NewRequest(http.MethodOptions, "/api/enrollments", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", CSRFHeader)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if allowed && (got != origin || rec.Header().Get("Access-Control-Allow-Credentials") != "true") {
			t.Fatalf("origin %s: allow-origin %q, credentials %q", origin, got, rec.Header().Get("Access-Control-Allow-Credentials"))
		}
		if !allowed && got != "" {
			t.Fatalf("origin %s must not be allowed, got %q", origin, got)
		}
	}

	if got := CORSFor([]string{"*"}).AllowedOrigins; len(got) != 2 {
		t.Fatalf("wildcard-only origins = %v, want dev defaults", got)
	}
}

func TestCommonMiddlewaresTagAndLogRequests(t *testing.T) {
	var buf strings.Builder
	cfg := testConfig()
	cfg.Logger = logger.NewWithWriter("prod", &buf)

	r := chi.NewRouter()
	for _, mw := range CommonMiddlewares(cfg, 0) {
		r.Use(mw)
	}
	r.Get("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))

	id := rec.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatalf("X-Request-Id header missing")
	}
	if rec.Header().Get("Cache-Control") != "no-store" || rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %v", rec.Header())
	}

	var entry struct {
		Level     string  `json:"level"`
		Msg       string  `json:"msg"`
		Status    float64 `json:"status"`
		RequestID string  `json:"request_id"`
		Path      string  `json:"path"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log line %q: %v", buf.String(), err)
	}
	if entry.Level != "ERROR" || entry.Status != 500 || entry.RequestID != id || entry.Path != "/api/broken" {
		t.Fatalf("log entry = %+v", entry)
	}
}
