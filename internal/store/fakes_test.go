package store

import (
	"context"
	"net/http"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

type fakeAuthAPI struct {
	mu          sync.Mutex
	registers   []entity.RegisterReq
	verifies    []string
	resends     int
	requires2FA bool
	registerErr error
	verifyErr   error
	meErr       error
	user        entity.User
	beforeReply func()
}

func (f *fakeAuthAPI) Register(_ context.Context, req entity.RegisterReq) (*entity.RegisterRes, error) {
	if f.beforeReply != nil {
		f.beforeReply()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers = append(f.registers, req)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if f.requires2FA {
		return &entity.RegisterRes{RequiresTwoFactor: true, Email: req.Email}, nil
	}
	u := f.user
	return &entity.RegisterRes{User: &u}, nil
}

func (f *fakeAuthAPI) VerifyTwoFactor(_ context.Context, _, code string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies = append(f.verifies, code)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAuthAPI) ResendTwoFactor(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resends++
	return nil
}

func (f *fakeAuthAPI) Login(_ context.Context, req entity.LoginReq) (*entity.User, error) {
	if req.Password != "ValidPass1!" {
		return nil, &apiclient.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	u := f.user
	return &u, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error { return nil }

func (f *fakeAuthAPI) Me(context.Context) (*entity.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAuthAPI) registerCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registers)
}

// fakeLibrary отвечает книгой с названием, равным строке поиска.
// Если задан gate, ответ ждет сигнала для своей строки поиска.
type fakeLibrary struct {
	mu          sync.Mutex
	queries     []entity.BookQuery
	gate        map[string]chan struct{}
	bookmarkErr error
	toggled     []string
	called      chan entity.BookQuery
}

func (f *fakeLibrary) Books(ctx context.Context, q entity.BookQuery) (*entity.BookListRes, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate[q.Search]
	called := f.called
	f.mu.Unlock()

	if called != nil {
		called <- q
	}
	if gate != nil {
		<-gate
	}

	return &entity.BookListRes{
		Books:      []entity.Book{{ID: "b-" + q.Search, Title: q.Search}},
		Pagination: entity.Pagination{CurrentPage: q.Page, TotalPages: 1, TotalCount: 1},
	}, nil
}

func (f *fakeLibrary) ToggleBookmark(_ context.Context, id string) (*entity.BookmarkRes, error) {
	f.mu.Lock()
	f.toggled = append(f.toggled, id)
	f.mu.Unlock()
	if f.bookmarkErr != nil {
		return nil, f.bookmarkErr
	}
	return &entity.BookmarkRes{BookID: id, IsBookmarked: true}, nil
}

func (f *fakeLibrary) calls() []entity.BookQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.BookQuery(nil), f.queries...)
}

type fakeEnrollmentAPI struct {
	mu        sync.Mutex
	created   []entity.CreateEnrollmentReq
	initiated []entity.InitiatePaymentReq
	createErr error
	payment   entity.InitiatePaymentRes
}

func (f *fakeEnrollmentAPI) Create(_ context.Context, req entity.CreateEnrollmentReq) (*entity.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &entity.Enrollment{
		ID:            "enr-1",
		TrainingID:    req.TrainingID,
		Status:        entity.EnrollmentPending,
		PaymentStatus: entity.PaymentUnpaid,
	}, nil
}

func (f *fakeEnrollmentAPI) Mine(context.Context) ([]entity.Enrollment, error) {
	return []entity.Enrollment{{ID: "enr-1", Status: entity.EnrollmentActive, PaymentStatus: entity.PaymentUnpaid}}, nil
}

func (f *fakeEnrollmentAPI) Get(_ context.Context, id string) (*entity.Enrollment, error) {
	return &entity.Enrollment{ID: id, Status: entity.EnrollmentPending}, nil
}

func (f *fakeEnrollmentAPI) Update(_ context.Context, id string, req entity.UpdateEnrollmentReq) (*entity.Enrollment, error) {
	return &entity.Enrollment{ID: id, Status: req.Status}, nil
}

func (f *fakeEnrollmentAPI) Initiate(_ context.Context, req entity.InitiatePaymentReq) (*entity.InitiatePaymentRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiated = append(f.initiated, req)
	res := f.payment
	return &res, nil
}

func (f *fakeEnrollmentAPI) Verify(_ context.Context, tx string) (*entity.VerifyPaymentRes, error) {
	return &entity.VerifyPaymentRes{
		TransactionID: tx,
		Status:        entity.PaymentPaid,
		Enrollment:    &entity.Enrollment{ID: "enr-1", Status: entity.EnrollmentActive, PaymentStatus: entity.PaymentPaid},
	}, nil
}

type fakeCatalog struct {
	contacts []entity.ContactReq
}

func (f *fakeCatalog) Categories(context.Context) ([]entity.Category, error) {
	return []entity.Category{{ID: "c1", Name: "IT"}, {ID: "c2", Name: "Management"}}, nil
}

func (f *fakeCatalog) Trainings(_ context.Context, categoryID string) ([]entity.Training, error) {
	return []entity.Training{{ID: "t-" + categoryID, CategoryID: categoryID, Title: "Training " + categoryID}}, nil
}

func (f *fakeCatalog) Gallery(context.Context, string) ([]entity.GalleryItem, error) {
	return []entity.GalleryItem{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}, nil
}

func (f *fakeCatalog) Contact(_ context.Context, req entity.ContactReq) error {
	f.contacts = append(f.contacts, req)
	return nil
}
