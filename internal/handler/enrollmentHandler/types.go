package enrollmenthandler

import (
	"strings"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// CreateEnrollmentReq запрос на запись
type CreateEnrollmentReq struct {
	TrainingID string `json:"trainingId" validate:"notblank"`
	Motivation string `json:"motivation" validate:"max=2000"`
}

// UpdateEnrollmentReq статус приходит строкой, регистр не важен
type UpdateEnrollmentReq struct {
	Status string `json:"status"`
}

// NewEnrollment запись в ожидании оплаты по цене обучения
func NewEnrollment(userID string, t *entity.Training, motivation string) *entity.Enrollment {
	return &entity.Enrollment{
		UserID:        userID,
		TrainingID:    t.ID,
		Status:        entity.EnrollmentPending,
		PaymentStatus: entity.PaymentUnpaid,
		Amount:        t.Price,
		Motivation:    strings.TrimSpace(motivation),
		Training:      t,
	}
}

// Cancellable отменить можно только ожидающую или активную запись
func Cancellable(e *entity.Enrollment) bool {
	return e.Status == entity.EnrollmentPending || e.Status == entity.EnrollmentActive
}
