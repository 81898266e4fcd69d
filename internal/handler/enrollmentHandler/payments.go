package enrollmenthandler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/internal/payment"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
)

// handleInitiatePayment открывает платежную сессию по записи.
// Симуляция проводит платеж сразу, шлюз возвращает адрес страницы оплаты.
func (h *enrollmentHandler) handleInitiatePayment(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}

	req := new(entity.InitiatePaymentReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if req.EnrollmentID == "" {
		return validate.FieldErrors{"enrollmentId": "This field is required"}
	}
	if errs := validate.PaymentMethod(*req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	enrollment, err := h.ownedEnrollment(ctx, claims, req.EnrollmentID)
	if err != nil {
		return err
	}
	if enrollment.Status == entity.EnrollmentCancelled {
		return handler.BadRequest("Enrollment is cancelled")
	}
	if enrollment.PaymentStatus == entity.PaymentPaid {
		return handler.Conflict("enrollmentId", "Enrollment is already paid")
	}

	p := NewPayment(enrollment, req)
	checkout, err := h.gateway.Start(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, "Payment gateway failed", "enrollment_id", enrollment.ID, "error", err)
		return &handler.Error{Status: http.StatusBadGateway, Message: "Payment provider is unavailable"}
	}

	p.RedirectURL = checkout.RedirectURL
	p.IsSimulation = checkout.Settled
	if checkout.Settled {
		p.Status = entity.PaymentPaid
	}

	if err := h.payments.Create(ctx, p); err != nil {
		return fmt.Errorf("error saving payment: %w", err)
	}

	applyPayment(enrollment, p.Status)
	if err := h.enrollments.Update(ctx, enrollment); err != nil {
		return fmt.Errorf("error updating enrollment: %w", err)
	}

	h.logger.InfoContext(ctx, "Payment initiated",
		"transaction_id", p.TransactionID,
		"enrollment_id", enrollment.ID,
		"method", p.Method,
		"simulation", p.IsSimulation)

	res := entity.InitiatePaymentRes{
		TransactionID: p.TransactionID,
		IsSimulation:  p.IsSimulation,
		PaymentURL:    p.RedirectURL,
	}
	if p.IsSimulation {
		res.Message = "Payment completed"
	}
	return handler.OK(w, http.StatusOK, res)
}

// handleVerifyPayment статус платежа и связанной записи
func (h *enrollmentHandler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}
	tx, err := handler.ParseIDFromURL(r, "transactionId")
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	p, err := h.payments.GetByTransaction(ctx, tx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return handler.NotFound("Transaction not found")
		}
		return fmt.Errorf("error getting payment: %w", err)
	}
	if p.UserID != claims.UserID && !claims.IsAdmin {
		return handler.NotFound("Transaction not found")
	}

	enrollment, err := h.enrollments.Get(ctx, p.EnrollmentID)
	if err != nil {
		return fmt.Errorf("error getting enrollment: %w", err)
	}
	enrollment.Training, _ = h.catalog.Training(ctx, enrollment.TrainingID)

	return handler.OK(w, http.StatusOK, entity.VerifyPaymentRes{
		TransactionID: p.TransactionID,
		Status:        p.Status,
		Enrollment:    enrollment,
	})
}

// handleConfirmPayment подтверждение платежа шлюза, выполняет администратор
func (h *enrollmentHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) error {
	tx, err := handler.ParseIDFromURL(r, "transactionId")
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	p, err := h.payments.GetByTransaction(ctx, tx)
	if err != nil {
		return err
	}
	if p.Status == entity.PaymentPaid {
		return handler.Message(w, http.StatusOK, "Payment already confirmed")
	}

	p.Status = entity.PaymentPaid
	if err := h.payments.Update(ctx, p); err != nil {
		return fmt.Errorf("error updating payment: %w", err)
	}

	enrollment, err := h.enrollments.Get(ctx, p.EnrollmentID)
	if err != nil {
		return fmt.Errorf("error getting enrollment: %w", err)
	}
	applyPayment(enrollment, p.Status)
	if err := h.enrollments.Update(ctx, enrollment); err != nil {
		return fmt.Errorf("error updating enrollment: %w", err)
	}

	h.logger.InfoContext(ctx, "Payment confirmed", "transaction_id", tx, "enrollment_id", enrollment.ID)
	return handler.Message(w, http.StatusOK, "Payment confirmed")
}

// applyPayment оплаченная запись становится активной
func applyPayment(e *entity.Enrollment, status entity.PaymentStatus) {
	e.PaymentStatus = status
	if status == entity.PaymentPaid && e.Status == entity.EnrollmentPending {
		e.Status = entity.EnrollmentActive
	}
}

// NewPayment платеж в ожидании. Номер карты не сохраняется, только последние цифры.
func NewPayment(e *entity.Enrollment, req *entity.InitiatePaymentReq) *entity.Payment {
	p := &entity.Payment{
		TransactionID: payment.NewTransactionID(),
		EnrollmentID:  e.ID,
		UserID:        e.UserID,
		Amount:        e.Amount,
		Method:        req.Method,
		Status:        entity.PaymentPending,
	}
	switch req.Method {
	case entity.MethodMobileMoney:
		p.Operator = req.Operator
		p.Phone = validate.Digits(req.Phone)
	case entity.MethodCard:
		p.CardLast4 = payment.CardLast4(req.Card.Number)
	}
	return p
}
