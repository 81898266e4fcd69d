package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

type cancelingLibrary struct{}

func (cancelingLibrary) Books(context.Context, entity.BookQuery) (*entity.BookListRes, error) {
	return nil, context.Canceled
}

func (cancelingLibrary) ToggleBookmark(context.Context, string) (*entity.BookmarkRes, error) {
	return nil, context.Canceled
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupersededFetchNeverOverwrites(t *testing.T) {
	lib := &fakeLibrary{
		gate:   map[string]chan struct{}{"a": make(chan struct{})},
		called: make(chan entity.BookQuery, 4),
	}
	s := NewBookStore(lib, nil)
	defer s.Close()
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- s.SetFilter(ctx, "search", "a") }()
	<-lib.called

	// Второй запрос отвечает раньше первого
	if err := s.SetFilter(ctx, "search", "ab"); err != nil {
		t.Fatalf("second fetch error = %v", err)
	}
	<-lib.called

	close(lib.gate["a"])
	if err := <-first; err != nil {
		t.Fatalf("superseded fetch returned error %v", err)
	}

	st := s.State()
	if len(st.Books) != 1 || st.Books[0].Title != "ab" {
		t.Fatalf("books = %+v, want result for \"ab\"", st.Books)
	}
	if st.Loading {
		t.Fatalf("loading flag left set")
	}
}

func TestSearchIsDebounced(t *testing.T) {
	lib := &fakeLibrary{called: make(chan entity.BookQuery, 8)}
	s := NewBookStore(lib, nil, WithSearchDebounce(20*time.Millisecond))
	defer s.Close()

	s.SetSearch("a")
	s.SetSearch("ab")
	s.SetSearch("abc")

	select {
	case q := <-lib.called:
		if q.Search != "abc" || q.Page != 1 {
			t.Fatalf("query = %+v, want search abc on page 1", q)
		}
	case <-time.After(time.Second):
		t.Fatalf("debounced search never fired")
	}

	waitFor(t, func() bool {
		st := s.State()
		return len(st.Books) == 1 && st.Books[0].Title == "abc"
	})

	time.Sleep(60 * time.Millisecond)
	if n := len(lib.calls()); n != 1 {
		t.Fatalf("%d requests sent, want 1", n)
	}
}

func TestCloseStopsPendingSearch(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewBookStore(lib, nil, WithSearchDebounce(10*time.Millisecond))

	s.SetSearch("go")
	s.Close()
	s.SetSearch("rust")

	time.Sleep(50 * time.Millisecond)
	if n := len(lib.calls()); n != 0 {
		t.Fatalf("%d requests sent after Close", n)
	}
}

func TestFiltersResetPage(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewBookStore(lib, nil)
	defer s.Close()
	ctx := context.Background()

	if err := s.SetPage(ctx, 3); err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	if err := s.SetFilter(ctx, "language", "fr"); err != nil {
		t.Fatalf("SetFilter() error = %v", err)
	}

	calls := lib.calls()
	last := calls[len(calls)-1]
	if last.Page != 1 || last.Language != "fr" {
		t.Fatalf("query = %+v", last)
	}

	if err := s.SetFilter(ctx, "color", "red"); err == nil {
		t.Fatalf("unknown filter accepted")
	}

	if err := s.ResetFilters(ctx); err != nil {
		t.Fatalf("ResetFilters() error = %v", err)
	}
	if got := s.State().Query; got != DefaultBookQuery() {
		t.Fatalf("query after reset = %+v", got)
	}
}

func TestCanceledFetchIsNotAnError(t *testing.T) {
	s := NewBookStore(cancelingLibrary{}, nil)
	defer s.Close()

	if err := s.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	st := s.State()
	if st.Error != "" || st.Loading {
		t.Fatalf("state after canceled fetch = %+v", st)
	}
}

func TestBookmarkRollsBackOnError(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewBookStore(lib, nil)
	defer s.Close()
	ctx := context.Background()

	if err := s.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	id := s.State().Books[0].ID

	lib.bookmarkErr = &apiclient.Error{Status: http.StatusInternalServerError}
	if err := s.ToggleBookmark(ctx, id); err == nil {
		t.Fatalf("ToggleBookmark() error = nil")
	}
	st := s.State()
	if st.Books[0].IsBookmarked {
		t.Fatalf("bookmark not rolled back")
	}
	if st.Error == "" {
		t.Fatalf("error not recorded")
	}

	lib.bookmarkErr = nil
	if err := s.ToggleBookmark(ctx, id); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if !s.State().Books[0].IsBookmarked {
		t.Fatalf("bookmark not confirmed")
	}
}

func TestBookmarkOutsideListReachesServer(t *testing.T) {
	lib := &fakeLibrary{}
	s := NewBookStore(lib, nil)
	defer s.Close()
	ctx := context.Background()

	if err := s.Fetch(ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	before := s.State().Books

	if err := s.ToggleBookmark(ctx, "book-elsewhere"); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if len(lib.toggled) != 1 || lib.toggled[0] != "book-elsewhere" {
		t.Fatalf("server toggles = %v, want [book-elsewhere]", lib.toggled)
	}
	if got := s.State().Books; len(got) != len(before) || got[0].IsBookmarked != before[0].IsBookmarked {
		t.Fatalf("list changed: %+v", got)
	}

	lib.bookmarkErr = &apiclient.Error{Status: http.StatusUnauthorized}
	err := s.ToggleBookmark(ctx, "book-elsewhere")
	if apiclient.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("ToggleBookmark() error = %v, want 401", err)
	}
	if s.State().Error == "" {
		t.Fatalf("error not recorded")
	}
}
