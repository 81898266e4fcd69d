package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, first_name, last_name, email, password_hash, role, email_verified, created_at"

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		u.ID, u.FirstName, u.LastName, strings.ToLower(u.Email), u.PasswordHash, u.Role, u.EmailVerified, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.get(ctx, "email", strings.ToLower(email))
}

func (r *userRepository) get(ctx context.Context, column, value string) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.EmailVerified, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepository) MarkVerified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET email_verified = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	return affected(res)
}
