// Package handler общие части HTTP обработчиков: единая обработка ошибок,
// разбор тела и параметров пути.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

const maxBodyBytes = 1 << 20

// APIFunc обработчик, возвращающий ошибку для централизованной обработки
type APIFunc func(w http.ResponseWriter, r *http.Request) error

// Error ошибка с HTTP статусом и текстом для клиента
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func BadRequest(msg string) error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) error     { return &Error{Status: http.StatusNotFound, Message: msg} }

// Conflict 409 с ошибкой конкретного поля
func Conflict(field, msg string) error {
	return &Error{Status: http.StatusConflict, Message: msg, Fields: map[string]string{field: msg}}
}

// MakeHTTPHandlerFunc превращает APIFunc в http.HandlerFunc и переводит
// ошибки в статусы и конверт {success:false, error, errors}
func MakeHTTPHandlerFunc(log logger.Logger, f APIFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}

		var (
			apiErr *Error
			fields validate.FieldErrors
		)
		switch {
		case errors.As(err, &fields):
			middleware.WriteJSON(w, http.StatusBadRequest, middleware.APIError{Error: "Validation failed", Errors: fields})
		case errors.As(err, &apiErr):
			if apiErr.Status >= http.StatusInternalServerError {
				log.ErrorContext(r.Context(), "HTTP handler error", "error", err, "path", r.URL.Path)
			}
			middleware.WriteJSON(w, apiErr.Status, middleware.APIError{Error: apiErr.Message, Errors: apiErr.Fields})
		case errors.Is(err, repository.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Resource not found")
		case errors.Is(err, repository.ErrAlreadyExists):
			middleware.WriteError(w, http.StatusConflict, "Resource already exists")
		case errors.Is(err, context.DeadlineExceeded):
			log.WarnContext(r.Context(), "Storage timeout", "path", r.URL.Path)
			middleware.WriteError(w, http.StatusGatewayTimeout, "Request timed out")
		default:
			log.ErrorContext(r.Context(), "HTTP handler error", "error", err, "path", r.URL.Path)
			middleware.WriteError(w, http.StatusInternalServerError, "An unexpected error occurred")
		}
	}
}

// DecodeJSON читает JSON тело запроса в dst
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return BadRequest("Request body is required")
		}
		return BadRequest("Invalid request body")
	}
	return nil
}

// ParseIDFromURL извлекает идентификатор из пути
func ParseIDFromURL(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" || len(id) > 64 {
		return "", BadRequest(fmt.Sprintf("invalid %s", paramName))
	}
	return id, nil
}

// Claims данные пользователя, положенные AuthMiddleware
func Claims(r *http.Request) (*token.UserClaims, error) {
	claims, ok := contextkeys.ClaimsFrom(r.Context())
	if !ok {
		return nil, Unauthorized("Authorization required")
	}
	return claims, nil
}

// OK успешный ответ в конверте
func OK(w http.ResponseWriter, status int, data any) error {
	return middleware.WriteData(w, status, data)
}

// Message успешный ответ только с сообщением
func Message(w http.ResponseWriter, status int, msg string) error {
	return middleware.WriteJSON(w, status, middleware.APIResponse{Success: true, Message: msg})
}
