package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = "id, transaction_id, enrollment_id, user_id, amount, method, operator, phone, card_last4, status, is_simulation, redirect_url, created_at"

func (r *paymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO payments ("+paymentColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)",
		p.ID, p.TransactionID, p.EnrollmentID, p.UserID, p.Amount, p.Method, p.Operator, p.Phone, p.CardLast4,
		p.Status, p.IsSimulation, p.RedirectURL, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", mapError(err))
	}
	return nil
}

func (r *paymentRepository) GetByTransaction(ctx context.Context, transactionID string) (*entity.Payment, error) {
	var p entity.Payment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE transaction_id = $1", transactionID,
	).Scan(&p.ID, &p.TransactionID, &p.EnrollmentID, &p.UserID, &p.Amount, &p.Method, &p.Operator, &p.Phone,
		&p.CardLast4, &p.Status, &p.IsSimulation, &p.RedirectURL, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *entity.Payment) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE payments SET status = $1 WHERE transaction_id = $2", p.Status, p.TransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return affected(res)
}

type contactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, m *entity.ContactMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO contact_messages (id, name, email, phone, subject, message, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}
