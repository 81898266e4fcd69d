package authhandler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/handler"
	"github.com/rx3lixir/cepic-app/internal/mailer"
	"github.com/rx3lixir/cepic-app/internal/repository"
	"github.com/rx3lixir/cepic-app/internal/validate"
	contextkeys "github.com/rx3lixir/cepic-app/pkg/context"
	"github.com/rx3lixir/cepic-app/pkg/logger"
	"github.com/rx3lixir/cepic-app/pkg/middleware"
	"github.com/rx3lixir/cepic-app/pkg/password"
	"github.com/rx3lixir/cepic-app/pkg/token"
)

const codeDigits = 6

var errInvalidCredentials = handler.Unauthorized("Invalid email or password")

type authHandler struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	codes      repository.CodeRepository
	mailer     mailer.Mailer
	tokenMaker *token.JWTMaker
	opts       Options
	logger     logger.Logger
}

func NewAuthHandler(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	codes repository.CodeRepository,
	m mailer.Mailer,
	tokenMaker *token.JWTMaker,
	opts Options,
	log logger.Logger,
) *authHandler {
	if opts.CodeMaxAttempts <= 0 {
		opts.CodeMaxAttempts = 5
	}
	return &authHandler{
		users:      users,
		sessions:   sessions,
		codes:      codes,
		mailer:     m,
		tokenMaker: tokenMaker,
		opts:       opts,
		logger:     log,
	}
}

// handleRegister создает пользователя. С 2FA отправляет код, без нее сразу открывает сессию.
func (h *authHandler) handleRegister(w http.ResponseWriter, r *http.Request) error {
	h.logger.InfoContext(r.Context(), "Handling register request")

	req := new(RegisterUserReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	hash, err := password.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	user := RegisterReqToUser(req, hash, !h.opts.TwoFactor)
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			h.logger.WarnContext(ctx, "Email already registered", "email", user.Email)
			return handler.Conflict("email", "Email already in use")
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	if h.opts.TwoFactor {
		if err := h.issueCode(ctx, user.Email); err != nil {
			return err
		}
		h.logger.InfoContext(ctx, "User registered, awaiting verification", "email", user.Email)
		return handler.OK(w, http.StatusCreated, entity.RegisterRes{RequiresTwoFactor: true, Email: user.Email})
	}

	if err := h.startSession(ctx, w, user); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "User registered", "email", user.Email)
	return handler.OK(w, http.StatusCreated, entity.RegisterRes{User: user})
}

// handleLogin обрабатывает запрос на логин пользователя
func (h *authHandler) handleLogin(w http.ResponseWriter, r *http.Request) error {
	h.logger.InfoContext(r.Context(), "Handling login request")

	req := new(LoginUserReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.WarnContext(ctx, "Login for unknown email", "email", req.Email)
			return errInvalidCredentials
		}
		return fmt.Errorf("error getting user: %w", err)
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "Invalid password attempt", "email", req.Email)
		return errInvalidCredentials
	}

	if h.opts.TwoFactor && !user.EmailVerified {
		return handler.Forbidden("Email address is not verified")
	}

	if err := h.startSession(ctx, w, user); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "User logged in successfully", "email", user.Email)
	return handler.OK(w, http.StatusOK, UserToRes(user))
}

// handleVerifyCode подтверждает email кодом и открывает сессию
func (h *authHandler) handleVerifyCode(w http.ResponseWriter, r *http.Request) error {
	req := new(VerifyCodeReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	code, err := h.codes.Get(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return handler.BadRequest("Verification code expired, request a new one")
		}
		return fmt.Errorf("error getting code: %w", err)
	}

	if code.Attempts >= h.opts.CodeMaxAttempts {
		_ = h.codes.Delete(ctx, req.Email)
		h.logger.WarnContext(ctx, "Too many verification attempts", "email", req.Email)
		return &handler.Error{Status: http.StatusTooManyRequests, Message: "Too many attempts, request a new code"}
	}

	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(req.Code)) != 1 {
		if _, err := h.codes.IncrementAttempts(ctx, req.Email); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("error counting attempt: %w", err)
		}
		return &handler.Error{
			Status:  http.StatusBadRequest,
			Message: "Invalid verification code",
			Fields:  map[string]string{"code": "Invalid verification code"},
		}
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("error getting user: %w", err)
	}
	if err := h.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("error verifying user: %w", err)
	}
	user.EmailVerified = true

	if err := h.codes.Delete(ctx, req.Email); err != nil {
		h.logger.WarnContext(ctx, "Failed to delete used code", "email", req.Email, "error", err)
	}

	if err := h.startSession(ctx, w, user); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Email verified", "email", user.Email)
	return handler.OK(w, http.StatusOK, UserToRes(user))
}

// handleResendCode выдает новый код. Для неизвестного адреса ответ тот же.
func (h *authHandler) handleResendCode(w http.ResponseWriter, r *http.Request) error {
	req := new(ResendCodeReq)
	if err := handler.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if errs := validate.Struct(req); errs != nil {
		return errs
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	user, err := h.users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.logger.WarnContext(ctx, "Resend for unknown email", "email", req.Email)
	case err != nil:
		return fmt.Errorf("error getting user: %w", err)
	case user.EmailVerified:
		return handler.BadRequest("Email address is already verified")
	default:
		if err := h.issueCode(ctx, user.Email); err != nil {
			return err
		}
	}

	return handler.Message(w, http.StatusOK, "A new verification code has been sent")
}

// handleRefreshToken выдает новый access токен по refresh cookie
func (h *authHandler) handleRefreshToken(w http.ResponseWriter, r *http.Request) error {
	h.logger.InfoContext(r.Context(), "Handling token refresh request")

	cookie, err := r.Cookie(middleware.RefreshCookie)
	if err != nil || cookie.Value == "" {
		return handler.Unauthorized("Refresh token required")
	}

	refreshClaims, err := h.tokenMaker.VerifyToken(cookie.Value, token.KindRefresh)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid refresh token", "error", err)
		middleware.ClearAuthCookies(w, h.opts.SecureCookies)
		return handler.Unauthorized("Invalid refresh token")
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	session, err := h.sessions.Get(ctx, refreshClaims.RegisteredClaims.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("error getting session: %w", err)
	}

	// Проверяем что сессия жива и принадлежит владельцу токена
	if session == nil || session.IsRevoked || session.UserID != refreshClaims.UserID {
		h.logger.WarnContext(ctx, "Session is not valid", "session_id", refreshClaims.RegisteredClaims.ID)
		middleware.ClearAuthCookies(w, h.opts.SecureCookies)
		return handler.Unauthorized("Session expired")
	}

	user, err := h.users.GetByID(ctx, refreshClaims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			middleware.ClearAuthCookies(w, h.opts.SecureCookies)
			return handler.Unauthorized("Session expired")
		}
		return fmt.Errorf("error getting user: %w", err)
	}

	accessToken, _, err := h.tokenMaker.CreateToken(user.ID, user.Email, user.IsAdmin(), token.KindAccess, h.opts.AccessTTL)
	if err != nil {
		return fmt.Errorf("error creating token: %w", err)
	}
	middleware.SetAuthCookie(w, middleware.AccessCookie, accessToken, h.opts.AccessTTL, h.opts.SecureCookies)

	h.logger.InfoContext(ctx, "Access token refreshed successfully", "email", user.Email)
	return handler.Message(w, http.StatusOK, "Token refreshed")
}

// handleLogout отзывает сессию и очищает cookies. Работает и без действующего access токена.
func (h *authHandler) handleLogout(w http.ResponseWriter, r *http.Request) error {
	h.logger.InfoContext(r.Context(), "Handling logout request")

	if cookie, err := r.Cookie(middleware.RefreshCookie); err == nil && cookie.Value != "" {
		if claims, err := h.tokenMaker.VerifyToken(cookie.Value, token.KindRefresh); err == nil {
			ctx, cancel := contextkeys.StorageContext(r)
			defer cancel()

			err := h.sessions.Revoke(ctx, claims.RegisteredClaims.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				h.logger.ErrorContext(ctx, "Failed to revoke session", "session_id", claims.RegisteredClaims.ID, "error", err)
				return fmt.Errorf("error revoking session: %w", err)
			}
		}
	}

	middleware.ClearAuthCookies(w, h.opts.SecureCookies)
	return handler.Message(w, http.StatusOK, "Logged out")
}

// handleMe текущий пользователь
func (h *authHandler) handleMe(w http.ResponseWriter, r *http.Request) error {
	claims, err := handler.Claims(r)
	if err != nil {
		return err
	}

	ctx, cancel := contextkeys.StorageContext(r)
	defer cancel()

	user, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return handler.Unauthorized("User no longer exists")
		}
		return fmt.Errorf("error getting user: %w", err)
	}
	return handler.OK(w, http.StatusOK, UserToRes(user))
}

// startSession выпускает пару токенов, сохраняет сессию refresh токена и ставит cookies
func (h *authHandler) startSession(ctx context.Context, w http.ResponseWriter, user *entity.User) error {
	accessToken, _, err := h.tokenMaker.CreateToken(user.ID, user.Email, user.IsAdmin(), token.KindAccess, h.opts.AccessTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to create access token", "error", err)
		return fmt.Errorf("error creating token: %w", err)
	}

	refreshToken, refreshClaims, err := h.tokenMaker.CreateToken(user.ID, user.Email, user.IsAdmin(), token.KindRefresh, h.opts.RefreshTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to create refresh token", "error", err)
		return fmt.Errorf("error creating token: %w", err)
	}

	err = h.sessions.Create(ctx, entity.Session{
		ID:        refreshClaims.RegisteredClaims.ID,
		UserID:    user.ID,
		ExpiresAt: refreshClaims.RegisteredClaims.ExpiresAt.Time,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to create session", "error", err)
		return fmt.Errorf("error creating session: %w", err)
	}

	middleware.SetAuthCookie(w, middleware.AccessCookie, accessToken, h.opts.AccessTTL, h.opts.SecureCookies)
	middleware.SetAuthCookie(w, middleware.RefreshCookie, refreshToken, h.opts.RefreshTTL, h.opts.SecureCookies)
	return nil
}

// issueCode генерирует код, сохраняет его с TTL и отправляет письмом.
// Новый код заменяет предыдущий и сбрасывает счетчик попыток.
func (h *authHandler) issueCode(ctx context.Context, email string) error {
	code, err := GenerateCode(codeDigits)
	if err != nil {
		return fmt.Errorf("error generating code: %w", err)
	}

	err = h.codes.Save(ctx, entity.VerificationCode{
		Email:     strings.ToLower(email),
		Code:      code,
		ExpiresAt: time.Now().Add(h.opts.CodeTTL),
	})
	if err != nil {
		return fmt.Errorf("error saving code: %w", err)
	}

	if err := h.mailer.SendCode(ctx, email, code, h.opts.CodeTTL); err != nil {
		return fmt.Errorf("error sending code: %w", err)
	}
	return nil
}

// GenerateCode случайный числовой код заданной длины
func GenerateCode(digits int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
