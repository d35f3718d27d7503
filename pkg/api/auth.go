package api

import "time"

// TokenTypeBearer значение token_type во всех ответах с токенами
const TokenTypeBearer = "bearer"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`    // email пользователя (уникальный)
	Username string `json:"username"` // username пользователя (уникальный)
	Password string `json:"password"` // пароль в открытом виде, сервер хранит только bcrypt хеш
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest представляет запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // opaque refresh token
	TokenType    string `json:"token_type"`    // всегда "bearer"
}

// ForgotPasswordRequest запрос на генерацию токена сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest запрос на сброс пароля по токену
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest запрос на смену пароля авторизованным пользователем
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// MessageResponse простой ответ с сообщением.
// ResetToken заполняется только в dev-режиме для /auth/forgot-password.
type MessageResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

// UserResponse представляет текущего пользователя (/auth/me)
type UserResponse struct {
	CreatedAt    time.Time `json:"created_at"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Detail string `json:"detail"` // человекочитаемое описание ошибки
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
