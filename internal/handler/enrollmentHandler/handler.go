package enrollmenthandler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/internal/payment"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

type enrollmentHandler struct {
	enrollments repository.EnrollmentRepository
	payments    repository.PaymentRepository
	catalog     repository.CatalogRepository
	gateway     payment.Gateway
	logger      logger.Logger
}

func NewEnrollmentHandler(
	enrollments repository.EnrollmentRepository,
	payments repository.PaymentRepository,
	catalog repository.CatalogRepository,
	gateway payment.Gateway,
	log logger.Logger,
) *enrollmentHandler {
	return &enrollmentHandler{
		enrollments: enrollments,
		payments:    payments,
		catalog:     catalog,
		gateway:     gateway,
		logger:      log,
	}
}

// handleCreateEnrollment записывает пользователя на опубликованное обучение
func (h *enrollmentHandler) handleCreateEnrollment(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}

	req := new(CreateEnrollmentReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	training, err := h.catalog.Training(ctx, req.TrainingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return handler.NotFound("Training not found")
		}
		return fmt.Errorf("error getting training: %w", err)
	}
	if !training.IsPublished {
		return handler.NotFound("Training not found")
	}

	// Одна действующая запись на обучение
	_, err = h.enrollments.FindOpen(ctx, claims.UserID, training.ID)
	switch {
	case err == nil:
		return handler.Conflict("trainingId", "You are already enrolled in this training")
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("error checking enrollment: %w", err)
	}

	enrollment := NewEnrollment(claims.UserID, training, req.Motivation)
	if err := h.enrollments.Create(ctx, enrollment); err != nil {
		h.logger.ErrorContext(ctx, "Failed to create enrollment", "error", err)
		return fmt.Errorf("error creating enrollment: %w", err)
	}

	h.logger.InfoContext(ctx, "Enrollment created",
		"enrollment_id", enrollment.ID,
		"training_id", training.ID,
		"user_id", claims.UserID)
	return handler.OK(w, http.StatusCreated, enrollment)
}

// handleListMine записи текущего пользователя, новые первыми
func (h *enrollmentHandler) handleListMine(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	list, err := h.enrollments.ListByUser(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("error listing enrollments: %w", err)
	}
	h.attachTrainings(ctx, list)
	return handler.OK(w, http.StatusOK, list)
}

// handleListAll все записи, только для администратора
func (h *enrollmentHandler) handleListAll(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	list, err := h.enrollments.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing enrollments: %w", err)
	}
	h.attachTrainings(ctx, list)
	return handler.OK(w, http.StatusOK, list)
}

func (h *enrollmentHandler) handleGetEnrollment(w http.ResponseWriter, r *http.Request) error {
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

	enrollment, err := h.ownedEnrollment(ctx, claims, id)
	if err != nil {
		return err
	}
	enrollment.Training, _ = h.catalog.Training(ctx, enrollment.TrainingID)
	return handler.OK(w, http.StatusOK, enrollment)
}

// handleUpdateEnrollment владелец может только отменить запись, администратор ставит любой статус
func (h *enrollmentHandler) handleUpdateEnrollment(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}
	id, err := handler.ParseIDFromURL(r, "id")
	if err != nil {
		return err
	}

	req := new(UpdateEnrollmentReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	status := entity.EnrollmentStatus(strings.ToUpper(req.Status))
	if !status.Valid() {
		return &handler.Error{
			Status:  http.StatusBadRequest,
			Message: "Invalid status",
			Fields:  map[string]string{"status": "Invalid status"},
		}
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	enrollment, err := h.ownedEnrollment(ctx, claims, id)
	if err != nil {
		return err
	}

	if !claims.IsAdmin {
		if status != entity.EnrollmentCancelled {
			return handler.Forbidden("You can only cancel your enrollment")
		}
		if !Cancellable(enrollment) {
			return handler.BadRequest("This enrollment can no longer be cancelled")
		}
	}

	enrollment.Status = status
	if err := h.enrollments.Update(ctx, enrollment); err != nil {
		return fmt.Errorf("error updating enrollment: %w", err)
	}

	h.logger.InfoContext(ctx, "Enrollment updated",
		"enrollment_id", enrollment.ID,
		"status", status,
		"by_admin", claims.IsAdmin)

	enrollment.Training, _ = h.catalog.Training(ctx, enrollment.TrainingID)
	return handler.OK(w, http.StatusOK, enrollment)
}

// ownedEnrollment чужая запись для обычного пользователя выглядит как отсутствующая
func (h *enrollmentHandler) ownedEnrollment(ctx context.Context, claims *token.UserClaims, id string) (*entity.Enrollment, error) {
	enrollment, err := h.enrollments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, handler.NotFound("Enrollment not found")
		}
		return nil, fmt.Errorf("error getting enrollment: %w", err)
	}
	if enrollment.UserID != claims.UserID && !claims.IsAdmin {
		h.logger.WarnContext(ctx, "Access to foreign enrollment", "enrollment_id", id, "user_id", claims.UserID)
		return nil, handler.NotFound("Enrollment not found")
	}
	return enrollment, nil
}

// attachTrainings подставляет обучение в каждую запись. Отсутствующее обучение не ошибка.
func (h *enrollmentHandler) attachTrainings(ctx context.Context, list []entity.Enrollment) {
	for i := range list {
		t, err := h.catalog.Training(ctx, list[i].TrainingID)
		if err != nil {
			h.logger.DebugContext(ctx, "Training not found for enrollment", "enrollment_id", list[i].ID)
			continue
		}
		list[i].Training = t
	}
}
