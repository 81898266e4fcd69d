package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// Catalog публичные страницы: категории, обучения, галерея, контакты
type Catalog struct {
	c Sender
}

func (c *Catalog) Categories(ctx context.Context) ([]entity.Category, error) {
	var res []entity.Category
	if err := c.c.Send(ctx, http.MethodGet, "/categories", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Trainings список обучений, categoryID пустой означает все
func (c *Catalog) Trainings(ctx context.Context, categoryID string) ([]entity.Training, error) {
	var res []entity.Training
	path := "/trainings"
	if categoryID != "" {
		path += "?" + url.Values{"categoryId": {categoryID}}.Encode()
	}
	if err := c.c.Send(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Catalog) Training(ctx context.Context, id string) (*entity.Training, error) {
	var res entity.Training
	if err := c.c.Send(ctx, http.MethodGet, "/trainings/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Catalog) Gallery(ctx context.Context, category string) ([]entity.GalleryItem, error) {
	var res []entity.GalleryItem
	path := "/gallery"
	if category != "" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}
	if err := c.c.Send(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Catalog) Contact(ctx context.Context, req entity.ContactReq) error {
	return c.c.Send(ctx, http.MethodPost, "/contact", req, nil)
}
