package validate

import "github.com/rx3lixir/cepic-app/internal/entity"

// RegisterForm форма регистрации
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"notblank"`
	LastName        string `json:"lastName" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Request тело запроса регистрации без подтверждения пароля
func (f RegisterForm) Request() entity.RegisterReq {
	return entity.RegisterReq{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Password:  f.Password,
	}
}

// LoginForm форма входа
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// MobileMoneyForm оплата через оператора мобильных денег
type MobileMoneyForm struct {
	Operator string `json:"operator" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone10"`
}

// CardForm оплата картой. Это проверка для интерфейса, решающую делает сервер.
type CardForm struct {
	Number      string `json:"number" validate:"required,cardnumber"`
	Holder      string `json:"holder" validate:"notblank"`
	ExpiryMonth int    `json:"expiryMonth" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiryYear" validate:"required"`
	CVV         string `json:"cvv" validate:"required,cvv"`
}

// ContactForm форма обратной связи
type ContactForm struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone10"`
	Subject string `json:"subject" validate:"notblank"`
	Message string `json:"message" validate:"required,min=10"`
}

// PaymentMethod проверяет способ оплаты перед созданием платежной сессии
func PaymentMethod(req entity.InitiatePaymentReq) FieldErrors {
	switch req.Method {
	case entity.MethodMobileMoney:
		return Struct(MobileMoneyForm{Operator: req.Operator, Phone: req.Phone})
	case entity.MethodCard:
		if req.Card == nil {
			return FieldErrors{"card": "Card details are required"}
		}
		return Struct(CardForm{
			Number:      req.Card.Number,
			Holder:      req.Card.Holder,
			ExpiryMonth: req.Card.ExpiryMonth,
			ExpiryYear:  req.Card.ExpiryYear,
			CVV:         req.Card.CVV,
		})
	default:
		return FieldErrors{"method": "Select a payment method"}
	}
}
