package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

// APIError представляет структуру ошибки для ответов API
type APIError struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// APIResponse успешный ответ: {success: true, data, message}
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Config конфигурация для middleware
type Config struct {
	TokenMaker   *token.JWTMaker
	Logger       logger.Logger
	CORSConfig   CORSConfig
	SecureCookie bool
}

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil && (statusCode == http.StatusNoContent || statusCode == http.StatusAccepted) {
		return nil
	}

	if data == nil {
		data = map[string]any{}
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteData успешный ответ в конверте
func WriteData(w http.ResponseWriter, statusCode int, data any) error {
	return WriteJSON(w, statusCode, APIResponse{Success: true, Data: data})
}

// WriteError ответ с ошибкой в конверте
func WriteError(w http.ResponseWriter, statusCode int, msg string) error {
	return WriteJSON(w, statusCode, APIError{Error: msg})
}
