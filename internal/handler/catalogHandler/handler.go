package cataloghandler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
)

type catalogHandler struct {
	catalog  repository.CatalogRepository
	contacts repository.ContactRepository
	logger   logger.Logger
}

func NewCatalogHandler(catalog repository.CatalogRepository, contacts repository.ContactRepository, log logger.Logger) *catalogHandler {
	return &catalogHandler{catalog: catalog, contacts: contacts, logger: log}
}

func (h *catalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		return fmt.Errorf("error listing categories: %w", err)
	}
	return handler.OK(w, http.StatusOK, categories)
}

// handleListTrainings опубликованные обучения, фильтр ?categoryId
func (h *catalogHandler) handleListTrainings(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	trainings, err := h.catalog.Trainings(ctx, r.URL.Query().Get("categoryId"))
	if err != nil {
		return fmt.Errorf("error listing trainings: %w", err)
	}
	return handler.OK(w, http.StatusOK, trainings)
}

func (h *catalogHandler) handleGetTraining(w http.ResponseWriter, r *http.Request) error {
	id, err := handler.ParseIDFromURL(r, "id")
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	training, err := h.catalog.Training(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return handler.NotFound("Training not found")
		}
		return err
	}
	if !training.IsPublished {
		return handler.NotFound("Training not found")
	}
	return handler.OK(w, http.StatusOK, training)
}

func (h *catalogHandler) handleListGallery(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	items, err := h.catalog.Gallery(ctx, r.URL.Query().Get("category"))
	if err != nil {
		return fmt.Errorf("error listing gallery: %w", err)
	}
	return handler.OK(w, http.StatusOK, items)
}

// handleContact сохраняет сообщение формы обратной связи
func (h *catalogHandler) handleContact(w http.ResponseWriter, r *http.Request) error {
	req := new(validate.ContactForm)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	msg := &entity.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   req.Phone,
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := h.contacts.Create(ctx, msg); err != nil {
		return fmt.Errorf("error saving contact message: %w", err)
	}

	h.logger.InfoContext(ctx, "Contact message received", "id", msg.ID, "subject", msg.Subject)
	return handler.Message(w, http.StatusCreated, "Your message has been sent")
}
