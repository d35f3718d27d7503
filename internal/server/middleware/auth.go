package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/globalconnect/internal/server/handlers"
)

// CredentialsError detail ответа 401 для отсутствующего или невалидного bearer токена
const CredentialsError = "Could not validate credentials"

// TokenValidator проверяет access token и возвращает ID пользователя
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Missing Authorization header", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				unauthorized(w)
				return
			}

			userID, err := validator.ValidateAccessToken(parts[1])
			if err != nil {
				logger.WarnContext(r.Context(), "Invalid access token", "error", err)
				unauthorized(w)
				return
			}

			logger.DebugContext(r.Context(), "User authenticated", "user_id", userID)

			next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, CredentialsError, http.StatusUnauthorized)
}
