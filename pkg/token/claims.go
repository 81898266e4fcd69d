package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind назначение токена: access нельзя подменить refresh и наоборот
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type UserClaims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Kind    Kind   `json:"kind"`
	jwt.RegisteredClaims
}

func NewUserClaims(userID, email string, isAdmin bool, kind Kind, duration time.Duration) (*UserClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("error generating token Id: %w", err)
	}

	now := time.Now()
	return &UserClaims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}, nil
}
