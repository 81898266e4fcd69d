package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/repository"
)

type Enrollments struct {
	mu    sync.RWMutex
	items map[string]entity.Enrollment
}

func NewEnrollments() *Enrollments {
	return &Enrollments{items: map[string]entity.Enrollment{}}
}

func (r *Enrollments) Create(_ context.Context, e *entity.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	r.items[e.ID] = *e
	return nil
}

func (r *Enrollments) Get(_ context.Context, id string) (*entity.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *Enrollments) ListByUser(_ context.Context, userID string) ([]entity.Enrollment, error) {
	return r.filter(func(e entity.Enrollment) bool { return e.UserID == userID }), nil
}

func (r *Enrollments) List(context.Context) ([]entity.Enrollment, error) {
	return r.filter(func(entity.Enrollment) bool { return true }), nil
}

func (r *Enrollments) FindOpen(_ context.Context, userID, trainingID string) (*entity.Enrollment, error) {
	list := r.filter(func(e entity.Enrollment) bool {
		return e.UserID == userID && e.TrainingID == trainingID && e.Status != entity.EnrollmentCancelled
	})
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (r *Enrollments) Update(_ context.Context, e *entity.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	r.items[e.ID] = *e
	return nil
}

// filter новые записи первыми
func (r *Enrollments) filter(keep func(entity.Enrollment) bool) []entity.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Enrollment, 0)
	for _, e := range r.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type Payments struct {
	mu   sync.RWMutex
	byTx map[string]entity.Payment
}

func NewPayments() *Payments {
	return &Payments{byTx: map[string]entity.Payment{}}
}

func (r *Payments) Create(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTx[p.TransactionID]; ok {
		return repository.ErrAlreadyExists
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.byTx[p.TransactionID] = *p
	return nil
}

func (r *Payments) GetByTransaction(_ context.Context, tx string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byTx[tx]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Payments) Update(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byTx[p.TransactionID]; !ok {
		return repository.ErrNotFound
	}
	r.byTx[p.TransactionID] = *p
	return nil
}

type Contacts struct {
	mu       sync.Mutex
	messages []entity.ContactMessage
}

func NewContacts() *Contacts {
	return &Contacts{}
}

func (r *Contacts) Create(_ context.Context, m *entity.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, *m)
	return nil
}

// Messages принятые сообщения
func (r *Contacts) Messages() []entity.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ContactMessage(nil), r.messages...)
}
