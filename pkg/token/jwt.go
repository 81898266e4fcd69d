package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongKind    = errors.New("token has wrong kind")
)

// JWTMaker подписывает и проверяет HS256 токены
type JWTMaker struct {
	secretKey []byte
}

func NewJWTMaker(secretKey string) *JWTMaker {
	return &JWTMaker{secretKey: []byte(secretKey)}
}

func (m *JWTMaker) CreateToken(userID, email string, isAdmin bool, kind Kind, duration time.Duration) (string, *UserClaims, error) {
	claims, err := NewUserClaims(userID, email, isAdmin, kind, duration)
	if err != nil {
		return "", nil, err
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}

	return signed, claims, nil
}

// VerifyToken проверяет подпись, срок и назначение токена
func (m *JWTMaker) VerifyToken(tokenStr string, kind Kind) (*UserClaims, error) {
	claims := &UserClaims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Kind != kind {
		return nil, ErrWrongKind
	}

	return claims, nil
}
