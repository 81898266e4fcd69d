package libraryhandler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
)

type libraryHandler struct {
	books  repository.BookRepository
	logger logger.Logger
}

func NewLibraryHandler(books repository.BookRepository, log logger.Logger) *libraryHandler {
	return &libraryHandler{books: books, logger: log}
}

// bookListParams параметры списка книг из query
type bookListParams struct {
	Page      int    `json:"page" validate:"gte=0"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	SortBy    string `json:"sortBy" validate:"omitempty,oneof=title author price createdAt publishedAt"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// handleListBooks GET /library/books с поиском, фильтрами, сортировкой и страницами
func (h *libraryHandler) handleListBooks(w http.ResponseWriter, r *http.Request) error {
	q, err := parseBookQuery(r.URL.Query())
	if err != nil {
		return err
	}

	h.logger.DebugContext(r.Context(), "Handling book list request",
		"page", q.Page,
		"search", q.Search,
		"category", q.CategoryID)

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	books, pagination, err := h.books.List(ctx, q, userID(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list books", "error", err)
		return fmt.Errorf("error listing books: %w", err)
	}

	return handler.OK(w, http.StatusOK, entity.BookListRes{Books: books, Pagination: pagination})
}

func (h *libraryHandler) handleGetBook(w http.ResponseWriter, r *http.Request) error {
	id, err := handler.ParseIDFromURL(r, "id")
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	book, err := h.books.Get(ctx, id, userID(r))
	if err != nil {
		return err
	}
	return handler.OK(w, http.StatusOK, book)
}

// handleToggleBookmark переключает закладку текущего пользователя
func (h *libraryHandler) handleToggleBookmark(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}
	id, err := handler.ParseIDFromURL(r, "id")
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	on, err := h.books.ToggleBookmark(ctx, claims.UserID, id)
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Bookmark toggled", "book_id", id, "bookmarked", on)
	return handler.OK(w, http.StatusOK, entity.BookmarkRes{BookID: id, IsBookmarked: on})
}

func (h *libraryHandler) handleListCategories(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	categories, err := h.books.Categories(ctx)
	if err != nil {
		return fmt.Errorf("error listing categories: %w", err)
	}
	return handler.OK(w, http.StatusOK, categories)
}

// parseBookQuery разбирает и проверяет query параметры списка книг
func parseBookQuery(v url.Values) (entity.BookQuery, error) {
	var params bookListParams
	errs := validate.FieldErrors{}

	atoi := func(key string) int {
		raw := v.Get(key)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs[key] = "Must be a number"
		}
		return n
	}
	params.Page = atoi("page")
	params.Limit = atoi("limit")
	params.SortBy = v.Get("sortBy")
	params.SortOrder = strings.ToLower(v.Get("sortOrder"))

	if len(errs) > 0 {
		return entity.BookQuery{}, errs
	}
	if errs := validate.Struct(params); errs != nil {
		return entity.BookQuery{}, errs
	}

	return entity.BookQuery{
		Page:       params.Page,
		Limit:      params.Limit,
		SortBy:     params.SortBy,
		SortOrder:  params.SortOrder,
		Search:     strings.TrimSpace(v.Get("search")),
		CategoryID: v.Get("categoryId"),
		Author:     strings.TrimSpace(v.Get("author")),
		Language:   v.Get("language"),
		FileType:   v.Get("fileType"),
	}, nil
}

// userID пустой для гостя
func userID(r *http.Request) string {
	if claims, ok := contextkeys.ClaimsFrom(r.Context()); ok {
		return claims.UserID
	}
	return ""
}
