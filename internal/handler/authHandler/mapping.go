package authhandler

import (
	"strings"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// RegisterReqToUser новый пользователь из запроса регистрации
func RegisterReqToUser(req *RegisterUserReq, hash string, verified bool) *entity.User {
	return &entity.User{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  hash,
		Role:          entity.RoleUser,
		EmailVerified: verified,
	}
}

// UserToRes ответ с пользователем
func UserToRes(u *entity.User) entity.UserRes {
	return entity.UserRes{User: *u}
}
