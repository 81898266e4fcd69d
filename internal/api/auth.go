package api

import (
	"context"
	"net/http"

	"github.com/rx3lixir/cepic-app/internal/entity"
)

// Auth эндпоинты /auth/*
type Auth struct {
	c Sender
}

func (a *Auth) Register(ctx context.Context, req entity.RegisterReq) (*entity.RegisterRes, error) {
	var res entity.RegisterRes
	if err := a.c.Send(ctx, http.MethodPost, "/auth/register", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *Auth) Login(ctx context.Context, req entity.LoginReq) (*entity.User, error) {
	var res entity.UserRes
	if err := a.c.Send(ctx, http.MethodPost, "/auth/login", req, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (a *Auth) VerifyTwoFactor(ctx context.Context, email, code string) (*entity.User, error) {
	var res entity.UserRes
	req := entity.VerifyCodeReq{Email: email, Code: code}
	if err := a.c.Send(ctx, http.MethodPost, "/auth/verify-2fa", req, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (a *Auth) ResendTwoFactor(ctx context.Context, email string) error {
	return a.c.Send(ctx, http.MethodPost, "/auth/resend-2fa", entity.ResendCodeReq{Email: email}, nil)
}

func (a *Auth) Logout(ctx context.Context) error {
	return a.c.Send(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me проверка сессии. 401 означает, что пользователь не вошел.
func (a *Auth) Me(ctx context.Context) (*entity.User, error) {
	var res entity.UserRes
	if err := a.c.Send(ctx, http.MethodGet, "/auth/me", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}
