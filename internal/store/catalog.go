package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

// CatalogAPI публичные данные сайта
type CatalogAPI interface {
	Categories(ctx context.Context) ([]entity.Category, error)
	Trainings(ctx context.Context, categoryID string) ([]entity.Training, error)
	Gallery(ctx context.Context, category string) ([]entity.GalleryItem, error)
	Contact(ctx context.Context, req entity.ContactReq) error
}

type GalleryState struct {
	Items    []entity.GalleryItem
	Category string
	// Lightbox индекс открытой фотографии, -1 если закрыта
	Lightbox int
	Loading  bool
	Error    string
}

type GalleryStore struct {
	mu    sync.Mutex
	api   CatalogAPI
	state GalleryState
}

func NewGalleryStore(api CatalogAPI) *GalleryStore {
	return &GalleryStore{api: api, state: GalleryState{Lightbox: -1}}
}

func (s *GalleryStore) State() GalleryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Items = append([]entity.GalleryItem(nil), s.state.Items...)
	return st
}

func (s *GalleryStore) Fetch(ctx context.Context, category string) error {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()

	items, err := s.api.Gallery(ctx, category)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		if !apiclient.IsCanceled(err) {
			s.state.Error = apiclient.UserMessage(err)
		}
		return err
	}
	s.state.Items = items
	s.state.Category = category
	s.state.Lightbox = -1
	return nil
}

func (s *GalleryStore) Open(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < len(s.state.Items) {
		s.state.Lightbox = i
	}
}

func (s *GalleryStore) CloseLightbox() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Lightbox = -1
}

// Next и Prev листают по кругу
func (s *GalleryStore) Next() { s.step(1) }

func (s *GalleryStore) Prev() { s.step(-1) }

func (s *GalleryStore) step(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.state.Items)
	if n == 0 || s.state.Lightbox < 0 {
		return
	}
	s.state.Lightbox = ((s.state.Lightbox+delta)%n + n) % n
}

type CategoryState struct {
	Categories []entity.Category
	Trainings  []entity.Training
	SelectedID string
	Loading    bool
	Error      string
}

// CategoryStore категории и обучения выбранной категории
type CategoryStore struct {
	mu    sync.Mutex
	api   CatalogAPI
	state CategoryState
}

func NewCategoryStore(api CatalogAPI) *CategoryStore {
	return &CategoryStore{api: api}
}

func (s *CategoryStore) State() CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Categories = append([]entity.Category(nil), s.state.Categories...)
	st.Trainings = append([]entity.Training(nil), s.state.Trainings...)
	return st
}

func (s *CategoryStore) Fetch(ctx context.Context) error {
	s.setLoading()

	list, err := s.api.Categories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.failLocked(err)
		return err
	}
	s.state.Categories = list
	return nil
}

// Select выбирает категорию и загружает ее обучения. Пустой id означает все.
func (s *CategoryStore) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	s.state.SelectedID = id
	s.mu.Unlock()

	return s.FetchTrainings(ctx)
}

func (s *CategoryStore) FetchTrainings(ctx context.Context) error {
	s.setLoading()
	s.mu.Lock()
	id := s.state.SelectedID
	s.mu.Unlock()

	list, err := s.api.Trainings(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	// Пока шел запрос, выбрали другую категорию
	if s.state.SelectedID != id {
		return nil
	}
	if err != nil {
		s.failLocked(err)
		return err
	}
	s.state.Trainings = list
	return nil
}

// Training ищет обучение среди загруженных
func (s *CategoryStore) Training(id string) (entity.Training, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.state.Trainings {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Training{}, false
}

func (s *CategoryStore) setLoading() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *CategoryStore) failLocked(err error) {
	if !apiclient.IsCanceled(err) {
		s.state.Error = apiclient.UserMessage(err)
	}
}

type ContactState struct {
	Sending bool
	Sent    bool
	Error   string
	Errors  validate.FieldErrors
}

// ContactStore форма обратной связи
type ContactStore struct {
	mu    sync.Mutex
	api   CatalogAPI
	log   *slog.Logger
	state ContactState
}

func NewContactStore(api CatalogAPI, log *slog.Logger) *ContactStore {
	return &ContactStore{api: api, log: loggerOrDefault(log)}
}

func (s *ContactStore) State() ContactState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Errors = copyErrors(s.state.Errors)
	return st
}

func (s *ContactStore) Submit(ctx context.Context, form validate.ContactForm) error {
	s.mu.Lock()
	if errs := validate.Struct(form); errs != nil {
		s.state.Errors = errs
		s.mu.Unlock()
		return errs
	}
	s.state = ContactState{Sending: true}
	s.mu.Unlock()

	err := s.api.Contact(ctx, entity.ContactReq{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Sending = false
	if err != nil {
		s.state.Error = apiclient.UserMessage(err)
		s.state.Errors = validate.Merge(nil, apiclient.FieldErrors(err))
		return err
	}
	s.state.Sent = true
	s.log.InfoContext(ctx, "Contact message sent", "subject", form.Subject)
	return nil
}

func (s *ContactStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ContactState{}
}
