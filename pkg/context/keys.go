package context

import (
	"context"
	"net/http"
	"time"

	"github.com/rx3lixir/cepic-app/pkg/token"
)

type authKey struct{}

// AuthKey ключ claims пользователя в контексте запроса
var AuthKey = authKey{}

const DefaultStorageTimeout = 5 * time.Second

func WithClaims(ctx context.Context, claims *token.UserClaims) context.Context {
	return context.WithValue(ctx, AuthKey, claims)
}

// ClaimsFrom claims, положенные AuthMiddleware
func ClaimsFrom(ctx context.Context) (*token.UserClaims, bool) {
	claims, ok := ctx.Value(AuthKey).(*token.UserClaims)
	return claims, ok && claims != nil
}

// StorageContext контекст хранилища с таймаутом по умолчанию
func StorageContext(r *http.Request) (context.Context, context.CancelFunc) {
	return StorageContextWithTimeout(r, DefaultStorageTimeout)
}

func StorageContextWithTimeout(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}
