package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

type Catalog struct {
	categories []entity.Category
	trainings  []entity.Training
	gallery    []entity.GalleryItem
}

func NewCatalog(categories []entity.Category, trainings []entity.Training, gallery []entity.GalleryItem) *Catalog {
	return &Catalog{categories: categories, trainings: trainings, gallery: gallery}
}

func (c *Catalog) Categories(context.Context) ([]entity.Category, error) {
	return append([]entity.Category(nil), c.categories...), nil
}

// Trainings опубликованные обучения, categoryID пустой означает все
func (c *Catalog) Trainings(_ context.Context, categoryID string) ([]entity.Training, error) {
	out := make([]entity.Training, 0, len(c.trainings))
	for _, t := range c.trainings {
		if !t.IsPublished {
			continue
		}
		if categoryID != "" && t.CategoryID != categoryID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Catalog) Training(_ context.Context, id string) (*entity.Training, error) {
	for _, t := range c.trainings {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *Catalog) Gallery(_ context.Context, category string) ([]entity.GalleryItem, error) {
	out := make([]entity.GalleryItem, 0, len(c.gallery))
	for _, g := range c.gallery {
		if category == "" || strings.EqualFold(g.Category, category) {
			out = append(out, g)
		}
	}
	return out, nil
}

type Books struct {
	mu         sync.RWMutex
	categories []entity.Category
	books      []entity.Book
	bookmarks  map[string]map[string]bool
}

func NewBooks(categories []entity.Category, books []entity.Book) *Books {
	return &Books{categories: categories, books: books, bookmarks: map[string]map[string]bool{}}
}

func (r *Books) Categories(context.Context) ([]entity.Category, error) {
	return append([]entity.Category(nil), r.categories...), nil
}

func (r *Books) List(_ context.Context, q entity.BookQuery, userID string) ([]entity.Book, entity.Pagination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]entity.Book, 0, len(r.books))
	for _, b := range r.books {
		if matches(b, q) {
			b.IsBookmarked = r.bookmarks[userID][b.ID]
			matched = append(matched, b)
		}
	}

	sortBooks(matched, q.SortBy, q.SortOrder)

	page, limit := Normalize(q.Page, q.Limit)
	total := len(matched)
	p := entity.Pagination{
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalCount:  total,
		Limit:       limit,
	}

	start := (page - 1) * limit
	if start >= total {
		return []entity.Book{}, p, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], p, nil
}

func (r *Books) Get(_ context.Context, id, userID string) (*entity.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.books {
		if b.ID == id {
			b.IsBookmarked = r.bookmarks[userID][b.ID]
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Books) ToggleBookmark(_ context.Context, userID, bookID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	for _, b := range r.books {
		if b.ID == bookID {
			found = true
			break
		}
	}
	if !found {
		return false, repository.ErrNotFound
	}

	marks, ok := r.bookmarks[userID]
	if !ok {
		marks = map[string]bool{}
		r.bookmarks[userID] = marks
	}
	if marks[bookID] {
		delete(marks, bookID)
		return false, nil
	}
	marks[bookID] = true
	return true, nil
}

// Normalize страница от 1, размер страницы от 1 до 100
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func matches(b entity.Book, q entity.BookQuery) bool {
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		if !strings.Contains(strings.ToLower(b.Title), s) &&
			!strings.Contains(strings.ToLower(b.Author), s) &&
			!strings.Contains(strings.ToLower(b.Description), s) {
			return false
		}
	}
	if q.CategoryID != "" && b.CategoryID != q.CategoryID {
		return false
	}
	if q.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(q.Author)) {
		return false
	}
	if q.Language != "" && !strings.EqualFold(b.Language, q.Language) {
		return false
	}
	if q.FileType != "" && !strings.EqualFold(b.FileType, q.FileType) {
		return false
	}
	return true
}

func sortBooks(books []entity.Book, by, order string) {
	less := func(a, b entity.Book) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch by {
	case "title":
		less = func(a, b entity.Book) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "author":
		less = func(a, b entity.Book) bool { return strings.ToLower(a.Author) < strings.ToLower(b.Author) }
	case "price":
		less = func(a, b entity.Book) bool { return a.Price < b.Price }
	case "publishedAt":
		less = func(a, b entity.Book) bool { return a.PublishedAt.Before(b.PublishedAt) }
	}

	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}
