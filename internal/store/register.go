package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/rx3lixir/cepic-app/pkg/apiclient"
	"github.com/rx3lixir/cepic-app/pkg/nav"
)

const codeLength = 6

// RegisterAPI вызовы регистрации и двухфакторной проверки
type RegisterAPI interface {
	Register(ctx context.Context, req entity.RegisterReq) (*entity.RegisterRes, error)
	VerifyTwoFactor(ctx context.Context, email, code string) (*entity.User, error)
	ResendTwoFactor(ctx context.Context, email string) error
}

// RegisterPhase суперсостояние регистрации
type RegisterPhase int

const (
	PhaseCollecting RegisterPhase = iota
	PhaseAwaitingCode
)

func (p RegisterPhase) String() string {
	if p == PhaseAwaitingCode {
		return "awaitingTwoFA"
	}
	return "collecting"
}

type RegisterState struct {
	Phase   RegisterPhase
	Form    validate.RegisterForm
	Code    string
	Errors  validate.FieldErrors
	Loading bool
	Error   string
	Notice  string
}

// RegisterFlow машина состояний регистрации: сбор данных, затем
// (если сервер требует) ввод 6-значного кода из письма
type RegisterFlow struct {
	mu        sync.Mutex
	api       RegisterAPI
	auth      *AuthStore
	navigator nav.Navigator
	log       *slog.Logger
	state     RegisterState

	// gen растет при Cancel; ответы запросов прошлого поколения отбрасываются
	gen uint64
}

func NewRegisterFlow(api RegisterAPI, auth *AuthStore, navigator nav.Navigator, log *slog.Logger) *RegisterFlow {
	return &RegisterFlow{api: api, auth: auth, navigator: navigator, log: loggerOrDefault(log)}
}

func (f *RegisterFlow) State() RegisterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state
	st.Errors = copyErrors(st.Errors)
	return st
}

// SetField меняет поле формы и снимает его ошибку
func (f *RegisterFlow) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Phase != PhaseCollecting {
		return ErrNotCollecting
	}

	form := &f.state.Form
	switch name {
	case "firstName":
		form.FirstName = value
	case "lastName":
		form.LastName = value
	case "email":
		form.Email = value
	case "password":
		form.Password = value
	case "confirmPassword":
		form.ConfirmPassword = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	delete(f.state.Errors, name)
	return nil
}

// Submit проверяет форму локально и только потом отправляет ее на сервер.
// Сервер решает, нужен ли код подтверждения.
func (f *RegisterFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Phase != PhaseCollecting {
		f.mu.Unlock()
		return ErrNotCollecting
	}
	form := f.state.Form
	if errs := validate.Struct(form); errs != nil {
		f.state.Errors = errs
		f.mu.Unlock()
		return errs
	}
	f.state.Loading = true
	f.state.Error = ""
	f.state.Errors = nil
	gen := f.gen
	f.mu.Unlock()

	res, err := f.api.Register(ctx, form.Request())

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return ErrRegisterCanceled
	}
	f.state.Loading = false
	if err != nil {
		f.state.Errors = validate.Merge(f.state.Errors, apiclient.FieldErrors(err))
		f.state.Error = apiclient.UserMessage(err)
		f.mu.Unlock()
		return err
	}

	if res.RequiresTwoFactor {
		f.state.Phase = PhaseAwaitingCode
		f.state.Code = ""
		if res.Email != "" {
			f.state.Form.Email = res.Email
		}
		f.state.Notice = "A verification code has been sent to " + f.state.Form.Email
		f.mu.Unlock()
		f.log.InfoContext(ctx, "Registration awaiting verification code", "email", form.Email)
		return nil
	}

	f.state = RegisterState{}
	f.mu.Unlock()

	f.complete(ctx, res.User)
	return nil
}

// SetCode оставляет только цифры и обрезает до 6 символов
func (f *RegisterFlow) SetCode(raw string) {
	code := validate.Digits(raw)
	if len(code) > codeLength {
		code = code[:codeLength]
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Code = code
	delete(f.state.Errors, "code")
}

// Verify отправляет код и при успехе завершает регистрацию
func (f *RegisterFlow) Verify(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Phase != PhaseAwaitingCode {
		f.mu.Unlock()
		return ErrNotAwaitingCode
	}
	if len(f.state.Code) != codeLength {
		f.state.Errors = validate.FieldErrors{"code": "Enter the 6-digit code"}
		f.mu.Unlock()
		return ErrInvalidCode
	}
	email, code := f.state.Form.Email, f.state.Code
	f.state.Loading = true
	f.state.Error = ""
	gen := f.gen
	f.mu.Unlock()

	user, err := f.api.VerifyTwoFactor(ctx, email, code)

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return ErrRegisterCanceled
	}
	f.state.Loading = false
	if err != nil {
		f.state.Errors = validate.Merge(nil, apiclient.FieldErrors(err))
		f.state.Error = apiclient.UserMessage(err)
		f.mu.Unlock()
		return err
	}
	f.state = RegisterState{}
	f.mu.Unlock()

	f.complete(ctx, user)
	return nil
}

// Resend просит сервер выслать новый код. Состояние меняется только уведомлением.
func (f *RegisterFlow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.state.Phase != PhaseAwaitingCode {
		f.mu.Unlock()
		return ErrNotAwaitingCode
	}
	email := f.state.Form.Email
	gen := f.gen
	f.mu.Unlock()

	err := f.api.ResendTwoFactor(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return ErrRegisterCanceled
	}
	if err != nil {
		f.state.Error = apiclient.UserMessage(err)
		return err
	}
	f.state.Notice = "A new verification code has been sent"
	return nil
}

// Cancel сбрасывает все собранные данные и возвращает к пустой форме.
// Ответ запроса, ушедшего до отмены, состояние уже не меняет.
func (f *RegisterFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state = RegisterState{}
}

func (f *RegisterFlow) complete(ctx context.Context, user *entity.User) {
	if f.auth != nil {
		f.auth.SetUser(user)
	}
	if user != nil {
		f.log.InfoContext(ctx, "Registration completed", "user_id", user.ID)
	}
	if f.navigator != nil {
		f.navigator.Navigate(nav.RouteHome)
	}
}

func copyErrors(in validate.FieldErrors) validate.FieldErrors {
	if in == nil {
		return nil
	}
	out := make(validate.FieldErrors, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
