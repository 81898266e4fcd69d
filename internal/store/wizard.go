package store

import (
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/validate"
)

// WizardStep шаг мастера записи
type WizardStep int

const (
	StepPersonal WizardStep = iota
	StepPreferences
	StepPayment
)

func (s WizardStep) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepPreferences:
		return "preferences"
	case StepPayment:
		return "payment"
	}
	return "unknown"
}

// WizardData поля всех трех шагов
type WizardData struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	TrainingID string
	Schedule   string
	Motivation string

	Method   entity.PaymentMethodKind
	Operator string
	PayPhone string
	Card     entity.CardDetails
}

type personalStep struct {
	FirstName string `json:"firstName" validate:"notblank"`
	LastName  string `json:"lastName" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone10"`
}

type preferencesStep struct {
	TrainingID string `json:"trainingId" validate:"required"`
	Schedule   string `json:"schedule" validate:"required,oneof=morning afternoon evening weekend"`
	Motivation string `json:"motivation" validate:"max=1000"`
}

type WizardState struct {
	Step   WizardStep
	Data   WizardData
	Errors validate.FieldErrors
}

// Wizard трехшаговая форма записи. Переход вперед только после проверки шага.
type Wizard struct {
	mu     sync.Mutex
	step   WizardStep
	data   WizardData
	errors validate.FieldErrors
}

func NewWizard() *Wizard {
	w := &Wizard{}
	w.data = defaultWizardData()
	return w
}

func defaultWizardData() WizardData {
	return WizardData{Schedule: "morning", Method: entity.MethodMobileMoney}
}

func (w *Wizard) State() WizardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WizardState{Step: w.step, Data: w.data, Errors: copyErrors(w.errors)}
}

// Update меняет данные формы
func (w *Wizard) Update(fn func(d *WizardData)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.data)
}

// Next проверяет текущий шаг и переходит дальше. false, если есть ошибки.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	errs := w.validateLocked(w.step)
	w.errors = errs
	if errs != nil {
		return false
	}
	if w.step < StepPayment {
		w.step++
	}
	return true
}

func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors = nil
	if w.step > StepPersonal {
		w.step--
	}
}

// Reset возвращает все поля к значениям по умолчанию
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepPersonal
	w.data = defaultWizardData()
	w.errors = nil
}

// Submission данные для EnrollmentStore.EnrollAndPay. Все шаги проверяются заново.
func (w *Wizard) Submission() (trainingID, motivation string, method entity.InitiatePaymentReq, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepPayment {
		return "", "", entity.InitiatePaymentReq{}, ErrWizardIncomplete
	}
	for step := StepPersonal; step <= StepPayment; step++ {
		if errs := w.validateLocked(step); errs != nil {
			w.step = step
			w.errors = errs
			return "", "", entity.InitiatePaymentReq{}, errs
		}
	}
	return w.data.TrainingID, w.data.Motivation, w.paymentLocked(), nil
}

func (w *Wizard) validateLocked(step WizardStep) validate.FieldErrors {
	d := w.data
	switch step {
	case StepPersonal:
		return validate.Struct(personalStep{FirstName: d.FirstName, LastName: d.LastName, Email: d.Email, Phone: d.Phone})
	case StepPreferences:
		return validate.Struct(preferencesStep{TrainingID: d.TrainingID, Schedule: d.Schedule, Motivation: d.Motivation})
	case StepPayment:
		return validate.PaymentMethod(w.paymentLocked())
	}
	return nil
}

func (w *Wizard) paymentLocked() entity.InitiatePaymentReq {
	req := entity.InitiatePaymentReq{Method: w.data.Method}
	switch w.data.Method {
	case entity.MethodMobileMoney:
		req.Operator = w.data.Operator
		req.Phone = w.data.PayPhone
	case entity.MethodCard:
		card := w.data.Card
		req.Card = &card
	}
	return req
}
