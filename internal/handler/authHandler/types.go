package authhandler

import "time"

// Options поведение аутентификации
type Options struct {
	TwoFactor       bool
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	CodeTTL         time.Duration
	CodeMaxAttempts int
	SecureCookies   bool
}

// RegisterUserReq представляет запрос на регистрацию
type RegisterUserReq struct {
	FirstName string `json:"firstName" validate:"notblank,max=100"`
	LastName  string `json:"lastName" validate:"notblank,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginUserReq представляет запрос на вход пользователя
type LoginUserReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyCodeReq проверка кода из письма
type VerifyCodeReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendCodeReq struct {
	Email string `json:"email" validate:"required,email"`
}
