package csrf

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchCachesToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"csrfToken":"token-%d"}`, n)
	}))
	defer srv.Close()

	s := NewService(srv.Client(), srv.URL, nil)

	if got := s.Token(); got != "" {
		t.Fatalf("Token() before fetch = %q, want empty", got)
	}

	if got := s.Fetch(context.Background()); got != "token-1" {
		t.Fatalf("Fetch() = %q, want token-1", got)
	}
	if got := s.Token(); got != "token-1" {
		t.Fatalf("Token() = %q, want token-1", got)
	}

	s.Clear()
	if got := s.Token(); got != "" {
		t.Fatalf("Token() after Clear = %q, want empty", got)
	}
}

func TestFetchIsSingleFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write([]byte(`{"csrfToken":"shared"}`))
	}))
	defer srv.Close()

	s := NewService(srv.Client(), srv.URL, nil)

	const callers = 8
	var entered, done sync.WaitGroup
	entered.Add(callers)
	done.Add(callers)

	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			entered.Done()
			results[i] = s.Fetch(context.Background())
		}(i)
	}

	entered.Wait()
	time.Sleep(100 * time.Millisecond)
	close(release)
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("server received %d requests, want 1", got)
	}
	for i, r := range results {
		if r != "shared" {
			t.Fatalf("caller %d got %q, want shared", i, r)
		}
	}
}

func TestFetchFailureClearsCache(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"csrfToken":"ok"}`))
	}))
	defer srv.Close()

	s := NewService(srv.Client(), srv.URL, nil)
	if got := s.Fetch(context.Background()); got != "ok" {
		t.Fatalf("Fetch() = %q, want ok", got)
	}

	fail.Store(true)
	if got := s.Fetch(context.Background()); got != "" {
		t.Fatalf("Fetch() on failure = %q, want empty", got)
	}
	if got := s.Token(); got != "" {
		t.Fatalf("Token() after failed fetch = %q, want empty", got)
	}
}

func TestFetchUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := NewService(&http.Client{Timeout: time.Second}, url, nil)
	if got := s.Fetch(context.Background()); got != "" {
		t.Fatalf("Fetch() = %q, want empty", got)
	}
}
