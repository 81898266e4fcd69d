package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandlerReportsDownDependency(t *testing.T) {
	h := New(time.Second)
	h.Register("memory", MemoryChecker(0))
	h.Register("mailer", CustomChecker("mailer", func() error { return errors.New("smtp unreachable") }))

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Checks["memory"].Status != StatusUp || report.Checks["mailer"].Error != "smtp unreachable" {
		t.Fatalf("checks = %+v", report.Checks)
	}
}

func TestHandlerAllUp(t *testing.T) {
	h := New(0)
	h.Register("noop", CustomChecker("noop", func() error { return nil }))

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if names := h.Names(); len(names) != 1 || names[0] != "noop" {
		t.Fatalf("names = %v", names)
	}
}
