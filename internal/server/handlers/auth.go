package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/globalconnect/internal/models"
	"github.com/iudanet/globalconnect/internal/server/metrics"
	"github.com/iudanet/globalconnect/internal/server/storage"
	"github.com/iudanet/globalconnect/internal/validation"
	"github.com/iudanet/globalconnect/pkg/api"
)

// Сообщения ответов, на которые опирается клиент
const (
	msgEmailRegistered = "Email already registered"
	msgUsernameTaken   = "Username already taken"
	msgInvalidLogin    = "Invalid email or password"
	msgInvalidRefresh  = "Invalid refresh token"
	msgUserNotFound    = "User not found"
	msgResetRequested  = "If the email exists, a reset token has been generated"
	msgInvalidReset    = "Invalid or expired reset token"
	msgResetDone       = "Password reset successful"
	msgInvalidOldPass  = "Invalid old password"
	msgPasswordChanged = "Password changed successfully"
	msgLoggedOut       = "Logged out successfully"
	msgInternal        = "Internal server error"
	msgInvalidBody     = "Invalid request body"
)

const maxRequestBodyLength = 1 << 20

// TokenIssuer выпускает пару токенов
type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, error)
	GenerateRefreshToken() (string, time.Time, error)
}

// ResetMailer доставляет токен сброса пароля
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// AuthRecorder учитывает события аутентификации
type AuthRecorder interface {
	RecordAuthEvent(event string)
}

// AuthConfig параметры AuthHandler
type AuthConfig struct {
	// NewResetToken генерирует токен сброса пароля
	NewResetToken func() (string, error)
	ResetTokenTTL time.Duration
	BcryptCost    int
	// ExposeResetToken возвращает токен сброса в ответе. Только для разработки.
	ExposeResetToken bool
}

// AuthHandler обрабатывает запросы /api/auth/*
type AuthHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	tokens   storage.TokenStorage
	issuer   TokenIssuer
	mailer   ResetMailer
	recorder AuthRecorder
	now      func() time.Time
	cfg      AuthConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	tokens storage.TokenStorage,
	issuer TokenIssuer,
	mailer ResetMailer,
	recorder AuthRecorder,
	cfg AuthConfig,
) *AuthHandler {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &AuthHandler{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		mailer:   mailer,
		recorder: recorder,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя, в ответ сразу выдается пара токенов
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	req.Email = normalizeEmail(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	errs := validation.FieldErrors{}
	addField(errs, "email", validation.ValidateEmail(req.Email))
	addField(errs, "username", validation.ValidateUsername(req.Username))
	addField(errs, "password", validation.ValidatePassword(req.Password))
	if len(errs) > 0 {
		h.sendValidationError(w, errs)
		return
	}

	// Проверяем заранее, чтобы вернуть конкретное сообщение.
	// Уникальные индексы в БД закрывают гонку между проверкой и вставкой.
	if _, err := h.users.GetUserByEmail(ctx, req.Email); err == nil {
		h.sendError(w, msgEmailRegistered, http.StatusBadRequest)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.internalError(ctx, w, "failed to check email", err)
		return
	}

	if _, err := h.users.GetUserByUsername(ctx, req.Username); err == nil {
		h.sendError(w, msgUsernameTaken, http.StatusBadRequest)
		return
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		h.internalError(ctx, w, "failed to check username", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.cfg.BcryptCost)
	if err != nil {
		h.internalError(ctx, w, "failed to hash password", err)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    h.now(),
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			h.sendError(w, msgEmailRegistered, http.StatusBadRequest)
		case errors.Is(err, storage.ErrUsernameTaken):
			h.sendError(w, msgUsernameTaken, http.StatusBadRequest)
		default:
			h.internalError(ctx, w, "failed to create user", err)
		}
		return
	}

	resp, err := h.issueTokens(ctx, user.ID)
	if err != nil {
		h.internalError(ctx, w, "failed to issue tokens", err)
		return
	}

	h.recorder.RecordAuthEvent(metrics.EventRegister)
	h.logger.InfoContext(ctx, "user registered successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	req.Email = normalizeEmail(req.Email)
	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendValidationError(w, validation.FieldErrors{"email": err.Error()})
		return
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.recorder.RecordAuthEvent(metrics.EventLoginFailed)
			h.logger.WarnContext(ctx, "login failed: user not found")
			h.sendError(w, msgInvalidLogin, http.StatusUnauthorized)
			return
		}
		h.internalError(ctx, w, "failed to get user", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.recorder.RecordAuthEvent(metrics.EventLoginFailed)
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, msgInvalidLogin, http.StatusUnauthorized)
		return
	}

	resp, err := h.issueTokens(ctx, user.ID)
	if err != nil {
		h.internalError(ctx, w, "failed to issue tokens", err)
		return
	}

	h.recorder.RecordAuthEvent(metrics.EventLogin)
	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh
// Старый refresh token удаляется, выдается новая пара (ротация)
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		h.refreshFailed(ctx, w, msgInvalidRefresh, "empty refresh token")
		return
	}

	stored, err := h.tokens.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.refreshFailed(ctx, w, msgInvalidRefresh, "refresh token not found")
			return
		}
		h.internalError(ctx, w, "failed to get refresh token", err)
		return
	}

	if !h.now().Before(stored.ExpiresAt) {
		h.refreshFailed(ctx, w, msgInvalidRefresh, "refresh token expired")
		return
	}

	if _, err := h.users.GetUserByID(ctx, stored.UserID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.refreshFailed(ctx, w, msgUserNotFound, "refresh token owner not found")
			return
		}
		h.internalError(ctx, w, "failed to get user", err)
		return
	}

	access, err := h.issuer.GenerateAccessToken(stored.UserID)
	if err != nil {
		h.internalError(ctx, w, "failed to generate access token", err)
		return
	}

	next, err := h.newRefreshToken(stored.UserID)
	if err != nil {
		h.internalError(ctx, w, "failed to generate refresh token", err)
		return
	}

	if err := h.tokens.RotateRefreshToken(ctx, req.RefreshToken, next); err != nil {
		// Параллельный refresh уже использовал этот токен
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.refreshFailed(ctx, w, msgInvalidRefresh, "refresh token already rotated")
			return
		}
		h.internalError(ctx, w, "failed to rotate refresh token", err)
		return
	}

	h.recorder.RecordAuthEvent(metrics.EventRefresh)
	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", stored.UserID))

	h.sendJSON(w, api.TokenResponse{
		AccessToken:  access,
		RefreshToken: next.Token,
		TokenType:    api.TokenTypeBearer,
	}, http.StatusOK)
}

// ForgotPassword обрабатывает POST /api/auth/forgot-password
// Ответ одинаковый для существующих и несуществующих email
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	req.Email = normalizeEmail(req.Email)
	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendValidationError(w, validation.FieldErrors{"email": err.Error()})
		return
	}

	resp := api.MessageResponse{Message: msgResetRequested}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.InfoContext(ctx, "password reset requested for unknown email")
			h.sendJSON(w, resp, http.StatusOK)
			return
		}
		h.internalError(ctx, w, "failed to get user", err)
		return
	}

	token, err := h.cfg.NewResetToken()
	if err != nil {
		h.internalError(ctx, w, "failed to generate reset token", err)
		return
	}

	if err := h.users.SetResetToken(ctx, user.ID, token, h.now().Add(h.cfg.ResetTokenTTL)); err != nil {
		h.internalError(ctx, w, "failed to store reset token", err)
		return
	}

	// Ошибка доставки не раскрывается клиенту: токен уже сохранен
	if err := h.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to send reset email", slog.String("user_id", user.ID), slog.Any("error", err))
	}

	if h.cfg.ExposeResetToken {
		resp.ResetToken = token
	}

	h.recorder.RecordAuthEvent(metrics.EventResetRequested)
	h.logger.InfoContext(ctx, "password reset token generated", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// ResetPassword обрабатывает POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		h.sendValidationError(w, validation.FieldErrors{"new_password": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.cfg.BcryptCost)
	if err != nil {
		h.internalError(ctx, w, "failed to hash password", err)
		return
	}

	userID, err := h.users.ResetPassword(ctx, strings.TrimSpace(req.Token), string(hash), h.now())
	if err != nil {
		if errors.Is(err, storage.ErrInvalidToken) {
			h.logger.WarnContext(ctx, "invalid or expired reset token")
			h.sendError(w, msgInvalidReset, http.StatusBadRequest)
			return
		}
		h.internalError(ctx, w, "failed to reset password", err)
		return
	}

	// Старые сессии после сброса пароля недействительны
	if n, err := h.tokens.DeleteUserTokens(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "failed to revoke refresh tokens", slog.String("user_id", userID), slog.Any("error", err))
	} else {
		h.logger.InfoContext(ctx, "refresh tokens revoked", slog.String("user_id", userID), slog.Int("tokens_deleted", n))
	}

	h.recorder.RecordAuthEvent(metrics.EventPasswordReset)
	h.logger.InfoContext(ctx, "password reset successfully", slog.String("user_id", userID))

	h.sendJSON(w, api.MessageResponse{Message: msgResetDone}, http.StatusOK)
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	h.logger.DebugContext(ctx, "returning current user", slog.String("user_id", user.ID))

	h.sendJSON(w, api.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
	}, http.StatusOK)
}

// ChangePassword обрабатывает POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		h.sendValidationError(w, validation.FieldErrors{"new_password": err.Error()})
		return
	}

	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		h.logger.WarnContext(ctx, "change password: invalid old password", slog.String("user_id", user.ID))
		h.sendError(w, msgInvalidOldPass, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.cfg.BcryptCost)
	if err != nil {
		h.internalError(ctx, w, "failed to hash password", err)
		return
	}

	if err := h.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		h.internalError(ctx, w, "failed to update password", err)
		return
	}

	h.recorder.RecordAuthEvent(metrics.EventPasswordChanged)
	h.logger.InfoContext(ctx, "password changed successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, api.MessageResponse{Message: msgPasswordChanged}, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Удаляет все refresh tokens пользователя; access token истечет сам
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.internalError(ctx, w, "logout without authenticated user", errors.New("missing user id in context"))
		return
	}

	deleted, err := h.tokens.DeleteUserTokens(ctx, userID)
	if err != nil {
		h.internalError(ctx, w, "failed to delete user tokens", err)
		return
	}

	h.recorder.RecordAuthEvent(metrics.EventLogout)
	h.logger.InfoContext(ctx, "user logged out successfully",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deleted))

	h.sendJSON(w, api.MessageResponse{Message: msgLoggedOut}, http.StatusOK)
}

// currentUser загружает пользователя из контекста, выставленного AuthMiddleware
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.internalError(ctx, w, "handler without authenticated user", errors.New("missing user id in context"))
		return nil, false
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "authenticated user not found", slog.String("user_id", userID))
			h.sendError(w, msgUserNotFound, http.StatusNotFound)
			return nil, false
		}
		h.internalError(ctx, w, "failed to get user", err)
		return nil, false
	}

	return user, true
}

// issueTokens выпускает и сохраняет новую пару токенов
func (h *AuthHandler) issueTokens(ctx context.Context, userID string) (*api.TokenResponse, error) {
	access, err := h.issuer.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	refresh, err := h.newRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	if err := h.tokens.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &api.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		TokenType:    api.TokenTypeBearer,
	}, nil
}

func (h *AuthHandler) newRefreshToken(userID string) (*models.RefreshToken, error) {
	token, expiresAt, err := h.issuer.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	return &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: h.now(),
	}, nil
}

func (h *AuthHandler) refreshFailed(ctx context.Context, w http.ResponseWriter, detail, reason string) {
	h.recorder.RecordAuthEvent(metrics.EventRefreshFailed)
	h.logger.WarnContext(ctx, "refresh failed", slog.String("reason", reason))
	h.sendError(w, detail, http.StatusUnauthorized)
}

// decode читает JSON тело запроса; при ошибке отвечает 422
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyLength)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		h.logger.WarnContext(r.Context(), "failed to decode request", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.sendError(w, msgInvalidBody, http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (h *AuthHandler) internalError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
	h.sendError(w, msgInternal, http.StatusInternalServerError)
}

// sendValidationError отвечает 422 с перечнем ошибок полей в detail
func (h *AuthHandler) sendValidationError(w http.ResponseWriter, errs validation.FieldErrors) {
	h.sendError(w, errs.Error(), http.StatusUnprocessableEntity)
}

// sendJSON отправляет JSON ответ
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	sendJSON(h.logger, w, data, statusCode)
}

// sendError отправляет JSON ответ с ошибкой
func (h *AuthHandler) sendError(w http.ResponseWriter, detail string, statusCode int) {
	sendJSON(h.logger, w, api.ErrorResponse{Detail: detail}, statusCode)
}

func addField(errs validation.FieldErrors, field string, err error) {
	if err != nil {
		errs[field] = err.Error()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
