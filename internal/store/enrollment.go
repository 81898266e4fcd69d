package store

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
	"github.com/rx3lixir/cepic-app/pkg/nav"
)

// EnrollmentAPI вызовы записей
type EnrollmentAPI interface {
	Create(ctx context.Context, req entity.CreateEnrollmentReq) (*entity.Enrollment, error)
	Mine(ctx context.Context) ([]entity.Enrollment, error)
	Get(ctx context.Context, id string) (*entity.Enrollment, error)
	Update(ctx context.Context, id string, req entity.UpdateEnrollmentReq) (*entity.Enrollment, error)
}

// PaymentAPI вызовы оплаты
type PaymentAPI interface {
	Initiate(ctx context.Context, req entity.InitiatePaymentReq) (*entity.InitiatePaymentRes, error)
	Verify(ctx context.Context, transactionID string) (*entity.VerifyPaymentRes, error)
}

// PaymentKind вид платежной сессии
type PaymentKind string

const (
	PaymentSimulated PaymentKind = "simulated"
	PaymentRedirect  PaymentKind = "redirect"
)

// PaymentSession результат создания платежа. RedirectURL задан только для PaymentRedirect.
type PaymentSession struct {
	Kind          PaymentKind
	TransactionID string
	RedirectURL   string
	Message       string
}

// NewPaymentSession разбирает ответ сервера в одну из двух форм
func NewPaymentSession(res *entity.InitiatePaymentRes) (PaymentSession, error) {
	switch {
	case res == nil:
		return PaymentSession{}, ErrInvalidPayment
	case res.IsSimulation:
		return PaymentSession{Kind: PaymentSimulated, TransactionID: res.TransactionID, Message: res.Message}, nil
	case res.PaymentURL != "":
		return PaymentSession{Kind: PaymentRedirect, TransactionID: res.TransactionID, RedirectURL: res.PaymentURL, Message: res.Message}, nil
	default:
		return PaymentSession{}, ErrInvalidPayment
	}
}

type EnrollmentState struct {
	Enrollments []entity.Enrollment
	Current     *entity.Enrollment
	Selected    *entity.Training
	LastPayment *PaymentSession
	Loading     bool
	Paying      bool
	Error       string
	Errors      validate.FieldErrors
}

// EnrollmentStore запись на обучение и оплата в две фазы:
// сначала создается запись, затем платежная сессия по ее id
type EnrollmentStore struct {
	mu          sync.Mutex
	enrollments EnrollmentAPI
	payments    PaymentAPI
	navigator   nav.Navigator
	log         *slog.Logger
	state       EnrollmentState
}

func NewEnrollmentStore(enrollments EnrollmentAPI, payments PaymentAPI, navigator nav.Navigator, log *slog.Logger) *EnrollmentStore {
	return &EnrollmentStore{
		enrollments: enrollments,
		payments:    payments,
		navigator:   navigator,
		log:         loggerOrDefault(log),
	}
}

func (s *EnrollmentStore) State() EnrollmentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Enrollments = append([]entity.Enrollment(nil), s.state.Enrollments...)
	st.Errors = copyErrors(s.state.Errors)
	return st
}

// Select выбранное обучение для записи
func (s *EnrollmentStore) Select(t entity.Training) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = &t
}

func (s *EnrollmentStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = nil
}

// Create первая фаза: запись в статусе PENDING/UNPAID. Ошибка прерывает поток.
func (s *EnrollmentStore) Create(ctx context.Context, trainingID, motivation string) (*entity.Enrollment, error) {
	s.begin(false)

	e, err := s.enrollments.Create(ctx, entity.CreateEnrollmentReq{TrainingID: trainingID, Motivation: motivation})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.state.Current = e
	s.upsertLocked(*e)
	return e, nil
}

// InitiatePayment вторая фаза. Способ оплаты проверяется локально до запроса.
func (s *EnrollmentStore) InitiatePayment(ctx context.Context, req entity.InitiatePaymentReq) (PaymentSession, error) {
	if errs := validate.PaymentMethod(req); errs != nil {
		s.mu.Lock()
		s.state.Errors = errs
		s.mu.Unlock()
		return PaymentSession{}, errs
	}

	s.begin(true)

	res, err := s.payments.Initiate(ctx, req)

	s.mu.Lock()
	s.state.Paying = false
	if err != nil {
		s.fail(err)
		s.mu.Unlock()
		return PaymentSession{}, err
	}

	session, err := NewPaymentSession(res)
	if err != nil {
		s.state.Error = "The payment service returned an unexpected response."
		s.mu.Unlock()
		return PaymentSession{}, err
	}
	s.state.LastPayment = &session
	if session.Kind == PaymentSimulated {
		s.state.Selected = nil
	}
	s.mu.Unlock()

	s.follow(ctx, req.EnrollmentID, session)
	return session, nil
}

// EnrollAndPay обе фазы подряд. Способ оплаты проверяется до создания записи,
// чтобы не оставлять записи без попытки оплаты из-за опечатки в телефоне.
func (s *EnrollmentStore) EnrollAndPay(ctx context.Context, trainingID, motivation string, method entity.InitiatePaymentReq) (PaymentSession, error) {
	if errs := validate.PaymentMethod(method); errs != nil {
		s.mu.Lock()
		s.state.Errors = errs
		s.mu.Unlock()
		return PaymentSession{}, errs
	}

	e, err := s.Create(ctx, trainingID, motivation)
	if apiclient.StatusOf(err) == http.StatusConflict {
		// Запись осталась от прошлой неудачной оплаты
		if open := s.unpaid(ctx, trainingID); open != nil {
			e, err = open, nil
		}
	}
	if err != nil {
		return PaymentSession{}, err
	}

	method.EnrollmentID = e.ID
	return s.InitiatePayment(ctx, method)
}

// unpaid ищет открытую неоплаченную запись на обучение
func (s *EnrollmentStore) unpaid(ctx context.Context, trainingID string) *entity.Enrollment {
	list, err := s.enrollments.Mine(ctx)
	if err != nil {
		return nil
	}
	for i := range list {
		e := list[i]
		if e.TrainingID == trainingID && e.Status == entity.EnrollmentPending && e.PaymentStatus != entity.PaymentPaid {
			s.mu.Lock()
			s.state.Current = &e
			s.state.Error = ""
			s.state.Errors = nil
			s.upsertLocked(e)
			s.mu.Unlock()
			s.log.InfoContext(ctx, "Reusing unpaid enrollment", "enrollment_id", e.ID)
			return &e
		}
	}
	return nil
}

// follow ведет пользователя по результату платежа
func (s *EnrollmentStore) follow(ctx context.Context, enrollmentID string, session PaymentSession) {
	switch session.Kind {
	case PaymentSimulated:
		s.log.InfoContext(ctx, "Simulated payment completed", "enrollment_id", enrollmentID, "transaction_id", session.TransactionID)
		if s.navigator != nil {
			s.navigator.Navigate(nav.RouteMyEnrollments)
		}
	case PaymentRedirect:
		s.log.InfoContext(ctx, "Redirecting to payment page", "enrollment_id", enrollmentID, "transaction_id", session.TransactionID)
		if s.navigator != nil {
			s.navigator.Redirect(session.RedirectURL)
		}
	}
}

// FetchMine записи текущего пользователя
func (s *EnrollmentStore) FetchMine(ctx context.Context) error {
	s.begin(false)

	list, err := s.enrollments.Mine(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail(err)
		return err
	}
	s.state.Enrollments = list
	return nil
}

// Fetch одна запись
func (s *EnrollmentStore) Fetch(ctx context.Context, id string) (*entity.Enrollment, error) {
	s.begin(false)

	e, err := s.enrollments.Get(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.state.Current = e
	s.upsertLocked(*e)
	return e, nil
}

// Cancel отменяет запись пользователя
func (s *EnrollmentStore) Cancel(ctx context.Context, id string) error {
	s.begin(false)

	e, err := s.enrollments.Update(ctx, id, entity.UpdateEnrollmentReq{Status: entity.EnrollmentCancelled})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail(err)
		return err
	}
	s.upsertLocked(*e)
	if s.state.Current != nil && s.state.Current.ID == e.ID {
		s.state.Current = e
	}
	return nil
}

// VerifyPayment статус платежа после возврата со страницы оплаты
func (s *EnrollmentStore) VerifyPayment(ctx context.Context, transactionID string) (*entity.VerifyPaymentRes, error) {
	s.begin(false)

	res, err := s.payments.Verify(ctx, transactionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if res.Enrollment != nil {
		s.upsertLocked(*res.Enrollment)
	}
	return res, nil
}

func (s *EnrollmentStore) begin(paying bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paying {
		s.state.Paying = true
	} else {
		s.state.Loading = true
	}
	s.state.Error = ""
	s.state.Errors = nil
}

// fail записывает ошибку; отмена запроса ошибкой не считается
func (s *EnrollmentStore) fail(err error) {
	if apiclient.IsCanceled(err) {
		return
	}
	s.state.Error = apiclient.UserMessage(err)
	s.state.Errors = validate.Merge(nil, apiclient.FieldErrors(err))
}

func (s *EnrollmentStore) upsertLocked(e entity.Enrollment) {
	for i := range s.state.Enrollments {
		if s.state.Enrollments[i].ID == e.ID {
			s.state.Enrollments[i] = e
			return
		}
	}
	s.state.Enrollments = append(s.state.Enrollments, e)
}
