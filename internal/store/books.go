package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

const (
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultBooksPerPage   = 12
)

// LibraryAPI вызовы каталога книг
type LibraryAPI interface {
	Books(ctx context.Context, q entity.BookQuery) (*entity.BookListRes, error)
	ToggleBookmark(ctx context.Context, id string) (*entity.BookmarkRes, error)
}

// DefaultBookQuery фильтры по умолчанию
func DefaultBookQuery() entity.BookQuery {
	return entity.BookQuery{
		Page:      1,
		Limit:     DefaultBooksPerPage,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}
}

type BookState struct {
	Books      []entity.Book
	Pagination entity.Pagination
	Query      entity.BookQuery
	Loading    bool
	Error      string
}

// BookStore список книг с фильтрами. Новый запрос отменяет предыдущий,
// а ответ устаревшего запроса никогда не попадает в состояние.
type BookStore struct {
	mu       sync.Mutex
	api      LibraryAPI
	log      *slog.Logger
	debounce time.Duration
	state    BookState

	seq      uint64
	cancel   context.CancelFunc
	timer    *time.Timer
	baseCtx  context.Context
	shutdown context.CancelFunc
}

type BookOption func(*BookStore)

// WithSearchDebounce задержка перед поиском при вводе
func WithSearchDebounce(d time.Duration) BookOption {
	return func(s *BookStore) {
		s.debounce = d
	}
}

func NewBookStore(api LibraryAPI, log *slog.Logger, opts ...BookOption) *BookStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &BookStore{
		api:      api,
		log:      loggerOrDefault(log),
		debounce: DefaultSearchDebounce,
		state:    BookState{Query: DefaultBookQuery()},
		baseCtx:  ctx,
		shutdown: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookStore) State() BookState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Books = append([]entity.Book(nil), s.state.Books...)
	return st
}

// Fetch загружает страницу с текущими фильтрами. Предыдущий запрос отменяется.
// Отмена не считается ошибкой.
func (s *BookStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	q := s.state.Query
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
	defer cancel()

	res, err := s.api.Books(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Пришел ответ вытесненного запроса: отбрасываем, флаг загрузки принадлежит новому
	if seq != s.seq {
		return nil
	}
	s.cancel = nil
	s.state.Loading = false

	if err != nil {
		if apiclient.IsCanceled(err) {
			return nil
		}
		s.state.Error = apiclient.UserMessage(err)
		return err
	}

	s.state.Books = res.Books
	s.state.Pagination = res.Pagination
	return nil
}

// SetSearch меняет строку поиска; запрос уйдет после паузы ввода
func (s *BookStore) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Query.Search = term
	s.state.Query.Page = 1

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.baseCtx.Err() != nil {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Fetch(s.baseCtx); err != nil {
			s.log.WarnContext(s.baseCtx, "Search request failed", "search", term, "error", err)
		}
	})
}

// SetFilter меняет фильтр, сбрасывает страницу и загружает список
func (s *BookStore) SetFilter(ctx context.Context, key, value string) error {
	s.mu.Lock()
	q := &s.state.Query
	switch key {
	case "categoryId":
		q.CategoryID = value
	case "author":
		q.Author = value
	case "language":
		q.Language = value
	case "fileType":
		q.FileType = value
	case "sortBy":
		q.SortBy = value
	case "sortOrder":
		q.SortOrder = value
	case "search":
		q.Search = value
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	q.Page = 1
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// SetPage переходит на страницу и загружает ее
func (s *BookStore) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	s.state.Query.Page = page
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// ResetFilters возвращает фильтры по умолчанию
func (s *BookStore) ResetFilters(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state.Query = DefaultBookQuery()
	s.mu.Unlock()

	return s.Fetch(ctx)
}

// ToggleBookmark сразу меняет закладку в списке, затем сверяется с сервером.
// Запрос уходит и для книги вне текущей страницы. При ошибке прежнее
// значение восстанавливается.
func (s *BookStore) ToggleBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	prev, listed := s.setBookmarkLocked(id, nil)
	s.mu.Unlock()

	res, err := s.api.ToggleBookmark(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if listed {
			s.setBookmarkLocked(id, &prev)
		}
		s.state.Error = apiclient.UserMessage(err)
		return err
	}
	confirmed := res.IsBookmarked
	s.setBookmarkLocked(id, &confirmed)
	return nil
}

// setBookmarkLocked ставит значение закладки (nil переключает).
// Возвращает значение до изменения.
func (s *BookStore) setBookmarkLocked(id string, v *bool) (bool, bool) {
	for i := range s.state.Books {
		if s.state.Books[i].ID != id {
			continue
		}
		prev := s.state.Books[i].IsBookmarked
		if v == nil {
			s.state.Books[i].IsBookmarked = !prev
		} else {
			s.state.Books[i].IsBookmarked = *v
		}
		return prev, true
	}
	return false, false
}

// Close останавливает таймер поиска и отменяет запрос в полете
func (s *BookStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.shutdown()
}
