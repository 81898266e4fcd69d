package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error ошибка API: статус и сообщение из конверта {error} / {success:false, error}
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf возвращает HTTP статус ошибки API или 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// FieldErrors ошибки полей из ответа сервера
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// IsCanceled запрос отменен вызывающим (новый запрос вытеснил старый).
// Это не ошибка для пользователя.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeout истек таймаут клиента или контекста
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetwork сетевая ошибка: ответа от сервера нет
func IsNetwork(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// UserMessage переводит ошибку в строку для интерфейса.
// Сообщения доменных ошибок сервера показываются как есть.
func UserMessage(err error) string {
	if err == nil || IsCanceled(err) {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return "Your session has expired. Please sign in again."
		case apiErr.Status == http.StatusForbidden:
			return "You are not allowed to perform this action."
		case apiErr.Status == http.StatusNotFound:
			return "The requested resource was not found."
		case apiErr.Status >= http.StatusInternalServerError:
			return "The server encountered an error. Please try again later."
		default:
			return "The request could not be completed."
		}
	}

	if IsTimeout(err) {
		return "The server took too long to respond. Please try again."
	}
	if IsNetwork(err) {
		return "Unable to reach the server. Check your connection and try again."
	}
	return "An unexpected error occurred."
}
