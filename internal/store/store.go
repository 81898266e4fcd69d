// Package store содержит контейнеры состояния фронтенда. Каждый стор владеет
// своим срезом состояния, ходит в API через обертки internal/api и никогда не
// отдает наружу неожиданную ошибку без записи сообщения в поле Error.
package store

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rx3lixir/cepic-app/pkg/apiclient"
)

var (
	ErrUnknownPromo       = errors.New("unknown promo code")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNotCollecting      = errors.New("registration is awaiting a verification code")
	ErrNotAwaitingCode    = errors.New("no verification code is pending")
	ErrInvalidCode        = errors.New("verification code must have 6 digits")
	ErrRegisterCanceled   = errors.New("registration was canceled")
	ErrUnknownField       = errors.New("unknown form field")
	ErrInvalidPayment     = errors.New("payment response has neither simulation flag nor payment url")
	ErrWizardIncomplete   = errors.New("registration wizard is not on the payment step")
)

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

// isUnauthenticated 401 от сервера
func isUnauthenticated(err error) bool {
	return apiclient.StatusOf(err) == http.StatusUnauthorized
}
