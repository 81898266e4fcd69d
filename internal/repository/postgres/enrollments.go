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

type enrollmentRepository struct {
	db *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) repository.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

const enrollmentColumns = "id, user_id, training_id, status, payment_status, amount, motivation, created_at, updated_at"

func (r *enrollmentRepository) Create(ctx context.Context, e *entity.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO enrollments ("+enrollmentColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		e.ID, e.UserID, e.TrainingID, e.Status, e.PaymentStatus, e.Amount, e.Motivation, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", mapError(err))
	}
	return nil
}

func (r *enrollmentRepository) Get(ctx context.Context, id string) (*entity.Enrollment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+enrollmentColumns+" FROM enrollments WHERE id = $1", id)
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string) ([]entity.Enrollment, error) {
	return r.query(ctx, "SELECT "+enrollmentColumns+" FROM enrollments WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (r *enrollmentRepository) List(ctx context.Context) ([]entity.Enrollment, error) {
	return r.query(ctx, "SELECT "+enrollmentColumns+" FROM enrollments ORDER BY created_at DESC")
}

func (r *enrollmentRepository) FindOpen(ctx context.Context, userID, trainingID string) (*entity.Enrollment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollments WHERE user_id = $1 AND training_id = $2 AND status <> $3 ORDER BY created_at DESC LIMIT 1",
		userID, trainingID, entity.EnrollmentCancelled,
	)
	e, err := scanEnrollment(row)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, e *entity.Enrollment) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE enrollments SET status = $1, payment_status = $2, updated_at = $3 WHERE id = $4",
		e.Status, e.PaymentStatus, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return affected(res)
}

func (r *enrollmentRepository) query(ctx context.Context, q string, args ...any) ([]entity.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	out := make([]entity.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(s scanner) (*entity.Enrollment, error) {
	var e entity.Enrollment
	if err := s.Scan(&e.ID, &e.UserID, &e.TrainingID, &e.Status, &e.PaymentStatus, &e.Amount, &e.Motivation, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
