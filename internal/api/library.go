package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// Library эндпоинты цифровой библиотеки
type Library struct {
	c Sender
}

func (l *Library) Books(ctx context.Context, q entity.BookQuery) (*entity.BookListRes, error) {
	var res entity.BookListRes
	path := "/library/books"
	if enc := BookQueryValues(q).Encode(); enc != "" {
		path += "?" + enc
	}
	if err := l.c.Send(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (l *Library) Book(ctx context.Context, id string) (*entity.Book, error) {
	var book entity.Book
	if err := l.c.Send(ctx, http.MethodGet, "/library/books/"+url.PathEscape(id), nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

func (l *Library) ToggleBookmark(ctx context.Context, id string) (*entity.BookmarkRes, error) {
	var res entity.BookmarkRes
	if err := l.c.Send(ctx, http.MethodPost, "/library/books/"+url.PathEscape(id)+"/bookmark", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (l *Library) Categories(ctx context.Context) ([]entity.Category, error) {
	var res []entity.Category
	if err := l.c.Send(ctx, http.MethodGet, "/library/categories", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// BookQueryValues query параметры списка книг, пустые значения опускаются
func BookQueryValues(q entity.BookQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	set("search", q.Search)
	set("categoryId", q.CategoryID)
	set("author", q.Author)
	set("language", q.Language)
	set("fileType", q.FileType)
	return v
}
