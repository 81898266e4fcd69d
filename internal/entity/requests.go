package entity

// Envelope общий конверт ответов API
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// CSRFTokenRes ответ GET /csrf-token
type CSRFTokenRes struct {
	CSRFToken string `json:"csrfToken"`
}

// RegisterReq запрос на регистрацию
type RegisterReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterRes ответ регистрации. RequiresTwoFactor решает сервер.
type RegisterRes struct {
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	Email             string `json:"email,omitempty"`
	User              *User  `json:"user,omitempty"`
}

// LoginReq запрос на вход
type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyCodeReq запрос проверки 2FA кода
type VerifyCodeReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendCodeReq запрос повторной отправки кода
type ResendCodeReq struct {
	Email string `json:"email"`
}

// UserRes ответ с пользователем
type UserRes struct {
	User User `json:"user"`
}

// CreateEnrollmentReq запрос на запись
type CreateEnrollmentReq struct {
	TrainingID string `json:"trainingId"`
	Motivation string `json:"motivation,omitempty"`
}

// UpdateEnrollmentReq запрос на изменение записи
type UpdateEnrollmentReq struct {
	Status EnrollmentStatus `json:"status"`
}

// CardDetails данные карты. Номер целиком уходит только в платежный шлюз.
type CardDetails struct {
	Number      string `json:"number"`
	Holder      string `json:"holder"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	CVV         string `json:"cvv"`
}

// InitiatePaymentReq запрос на создание платежной сессии
type InitiatePaymentReq struct {
	EnrollmentID string            `json:"enrollmentId"`
	Method       PaymentMethodKind `json:"method"`
	Operator     string            `json:"operator,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Card         *CardDetails      `json:"card,omitempty"`
}

// InitiatePaymentRes ответ платежной сессии: либо isSimulation,
// либо paymentUrl внешней страницы оплаты
type InitiatePaymentRes struct {
	TransactionID string `json:"transactionId"`
	IsSimulation  bool   `json:"isSimulation"`
	PaymentURL    string `json:"paymentUrl,omitempty"`
	Message       string `json:"message,omitempty"`
}

// VerifyPaymentRes ответ проверки платежа
type VerifyPaymentRes struct {
	TransactionID string        `json:"transactionId"`
	Status        PaymentStatus `json:"status"`
	Enrollment    *Enrollment   `json:"enrollment,omitempty"`
}

// BookListRes ответ списка книг
type BookListRes struct {
	Books      []Book     `json:"books"`
	Pagination Pagination `json:"pagination"`
}

// BookmarkRes ответ на переключение закладки
type BookmarkRes struct {
	BookID       string `json:"bookId"`
	IsBookmarked bool   `json:"isBookmarked"`
}

// ContactReq форма обратной связи
type ContactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}
