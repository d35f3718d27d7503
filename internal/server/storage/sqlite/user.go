package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/globalconnect/internal/models"
	"github.com/iudanet/globalconnect/internal/server/storage"
)

const userColumns = `id, email, username, password_hash, profile_image, created_at, reset_token, reset_token_expiry`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, profile_image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.ProfileImage,
		user.CreatedAt.UTC(),
	)

	if err != nil {
		// modernc возвращает текст вида "constraint failed: UNIQUE constraint failed: users.email (2067)"
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
			return storage.ErrEmailTaken
		case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
			return storage.ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id", userID)
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "username", username)
}

// getUser выбирает пользователя по одной уникальной колонке.
// column подставляется только из констант выше.
func (s *Storage) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ?`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var (
		profileImage sql.NullString
		resetToken   sql.NullString
		resetExpiry  sql.NullTime
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&profileImage,
		&user.CreatedAt,
		&resetToken,
		&resetExpiry,
	); err != nil {
		return nil, err
	}

	if profileImage.Valid {
		user.ProfileImage = &profileImage.String
	}
	user.ResetToken = resetToken.String
	if resetExpiry.Valid {
		user.ResetTokenExpiry = &resetExpiry.Time
	}

	return user, nil
}

// UpdatePassword replaces the password hash of the user
func (s *Storage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectAffected(result, storage.ErrUserNotFound)
}

// SetResetToken stores a password reset token for the user
func (s *Storage) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	query := `UPDATE users SET reset_token = ?, reset_token_expiry = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, token, expiry.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return expectAffected(result, storage.ErrUserNotFound)
}

// ResetPassword consumes a valid reset token and sets the new password hash
func (s *Storage) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (string, error) {
	if token == "" {
		return "", storage.ErrInvalidToken
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var userID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE reset_token = ? AND reset_token_expiry > ?`,
		token, now.UTC(),
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find reset token: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL WHERE id = ?`,
		passwordHash, userID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to reset password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return userID, nil
}

// expectAffected возвращает notFound, если запрос не затронул ни одной строки
func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
