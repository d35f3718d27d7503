package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt        time.Time  `json:"created_at"`                   // время создания
	ProfileImage     *string    `json:"profile_image,omitempty"`      // URL аватара, может отсутствовать
	ResetTokenExpiry *time.Time `json:"reset_token_expiry,omitempty"` // срок действия токена сброса
	ID               string     `json:"id"`                           // UUID пользователя
	Email            string     `json:"email"`                        // уникальный email
	Username         string     `json:"username"`                     // уникальный username
	PasswordHash     string     `json:"-"`                            // bcrypt хеш пароля
	ResetToken       string     `json:"-"`                            // активный токен сброса пароля
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`      // opaque значение токена
	UserID    string    `json:"user_id"`    // ID пользователя
}
