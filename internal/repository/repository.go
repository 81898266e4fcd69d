// Package repository описывает хранилища API. Реализации: memory (по умолчанию),
// postgres для пользователей, записей, платежей и сообщений, redis для сессий и кодов.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	MarkVerified(ctx context.Context, id string) error
}

// SessionRepository сессии refresh токенов
type SessionRepository interface {
	Create(ctx context.Context, s entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Revoke(ctx context.Context, id string) error
}

// CodeRepository коды двухфакторной проверки, один активный код на email
type CodeRepository interface {
	Save(ctx context.Context, c entity.VerificationCode) error
	Get(ctx context.Context, email string) (*entity.VerificationCode, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
}

type CatalogRepository interface {
	Categories(ctx context.Context) ([]entity.Category, error)
	Trainings(ctx context.Context, categoryID string) ([]entity.Training, error)
	Training(ctx context.Context, id string) (*entity.Training, error)
	Gallery(ctx context.Context, category string) ([]entity.GalleryItem, error)
}

// BookRepository библиотека. userID нужен для флага закладки, пустой для гостя.
type BookRepository interface {
	List(ctx context.Context, q entity.BookQuery, userID string) ([]entity.Book, entity.Pagination, error)
	Get(ctx context.Context, id, userID string) (*entity.Book, error)
	ToggleBookmark(ctx context.Context, userID, bookID string) (bool, error)
	Categories(ctx context.Context) ([]entity.Category, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *entity.Enrollment) error
	Get(ctx context.Context, id string) (*entity.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Enrollment, error)
	List(ctx context.Context) ([]entity.Enrollment, error)
	Update(ctx context.Context, e *entity.Enrollment) error
	// FindOpen запись пользователя на обучение, кроме отмененных
	FindOpen(ctx context.Context, userID, trainingID string) (*entity.Enrollment, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByTransaction(ctx context.Context, transactionID string) (*entity.Payment, error)
	Update(ctx context.Context, p *entity.Payment) error
}

type ContactRepository interface {
	Create(ctx context.Context, m *entity.ContactMessage) error
}

// Store набор хранилищ приложения
type Store struct {
	Users       UserRepository
	Sessions    SessionRepository
	Codes       CodeRepository
	Catalog     CatalogRepository
	Books       BookRepository
	Enrollments EnrollmentRepository
	Payments    PaymentRepository
	Contacts    ContactRepository
}

// Expired истек ли срок
func Expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}
