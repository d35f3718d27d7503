package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/globalconnect/internal/client/api"
	"github.com/iudanet/globalconnect/internal/client/storage"
	pkgapi "github.com/iudanet/globalconnect/pkg/api"
)

// Сообщения по умолчанию, если сервер не прислал detail
const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// Session holds the authentication state of this device.
// It implements api.RefreshListener to follow token refreshes.
type Session struct {
	client APIClient
	tokens storage.SecureStorage
	logger *slog.Logger
	user   *User
	mu     sync.RWMutex
	state  State
	// signouts растет при каждом выходе или истечении сессии
	signouts uint64
}

// Compile-time checks
var (
	_ Service             = (*Session)(nil)
	_ api.RefreshListener = (*Session)(nil)
)

// NewSession создает сессию и подписывает ее на события обновления токенов
func NewSession(client APIClient, tokens storage.SecureStorage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		client: client,
		tokens: tokens,
		logger: logger,
		state:  StateUnauthenticated,
	}
	client.SetRefreshListener(s)
	return s
}

// User returns the current user or nil
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is loaded
func (s *Session) IsAuthenticated() bool {
	return s.User() != nil
}

// Login выполняет вход по email и паролю
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.setState(StateAuthenticating)

	tokens, err := s.client.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", "email", email, "error", err)
		s.reset()
		return userError(err, msgLoginFailed)
	}

	if err := s.establish(ctx, tokens); err != nil {
		return userError(err, msgLoginFailed)
	}

	s.logger.InfoContext(ctx, "logged in", "email", email)
	return nil
}

// Register регистрирует пользователя и сразу открывает сессию
func (s *Session) Register(ctx context.Context, email, password, username string) error {
	s.setState(StateAuthenticating)

	tokens, err := s.client.Register(ctx, pkgapi.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "registration failed", "email", email, "error", err)
		s.reset()
		return userError(err, msgRegistrationFailed)
	}

	if err := s.establish(ctx, tokens); err != nil {
		return userError(err, msgRegistrationFailed)
	}

	s.logger.InfoContext(ctx, "registered", "email", email, "username", username)
	return nil
}

// Logout уведомляет сервер и всегда очищает локальные токены
func (s *Session) Logout(ctx context.Context) error {
	if _, err := s.client.Logout(ctx); err != nil {
		// Ошибка сервера не мешает локальному выходу
		s.logger.WarnContext(ctx, "server logout failed", "error", err)
	}

	err := s.clearTokens(ctx)
	s.signOut()
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// RefreshUser перечитывает текущего пользователя. При ошибке пользователь остается прежним.
func (s *Session) RefreshUser(ctx context.Context) error {
	s.mu.RLock()
	signouts := s.signouts
	s.mu.RUnlock()

	resp, err := s.client.Me(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to refresh user", "error", err)
		return fmt.Errorf("failed to refresh user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Сессия истекла или пользователь вышел во время запроса
	if s.signouts != signouts {
		return nil
	}
	s.user = userFromResponse(resp)
	s.state = StateAuthenticated
	return nil
}

// Restore восстанавливает сессию при старте: при наличии access токена загружает
// пользователя, а при неудаче удаляет оба токена.
func (s *Session) Restore(ctx context.Context) error {
	_, err := s.tokens.GetItem(ctx, storage.KeyAccessToken)
	if errors.Is(err, storage.ErrNotFound) {
		s.reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	s.setState(StateAuthenticating)
	resp, err := s.client.Me(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "stored session is no longer valid", "error", err)
		clearErr := s.clearTokens(ctx)
		s.reset()
		if clearErr != nil {
			return fmt.Errorf("failed to clear tokens: %w", clearErr)
		}
		return nil
	}

	s.authenticated(userFromResponse(resp))
	return nil
}

// RefreshStarted implements api.RefreshListener
func (s *Session) RefreshStarted() {
	s.setState(StateRefreshing)
}

// RefreshFinished implements api.RefreshListener
func (s *Session) RefreshFinished(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRefreshing {
		return
	}
	switch {
	case err != nil:
		s.state = StateUnauthenticated
	case s.user != nil:
		s.state = StateAuthenticated
	default:
		// Обновление во время входа: пользователь еще загружается
		s.state = StateAuthenticating
	}
}

// SessionExpired implements api.RefreshListener
func (s *Session) SessionExpired() {
	s.logger.Info("session expired, signed out")
	s.signOut()
}

// establish сохраняет пару токенов и загружает пользователя
func (s *Session) establish(ctx context.Context, tokens *pkgapi.TokenResponse) error {
	if err := s.tokens.SetItem(ctx, storage.KeyAccessToken, tokens.AccessToken); err != nil {
		s.reset()
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if err := s.tokens.SetItem(ctx, storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
		s.reset()
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	resp, err := s.client.Me(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load current user", "error", err)
		_ = s.clearTokens(ctx)
		s.reset()
		return err
	}

	s.authenticated(userFromResponse(resp))
	return nil
}

func (s *Session) clearTokens(ctx context.Context) error {
	return errors.Join(
		s.tokens.DeleteItem(ctx, storage.KeyAccessToken),
		s.tokens.DeleteItem(ctx, storage.KeyRefreshToken),
	)
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) authenticated(user *User) {
	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()
}

func (s *Session) signOut() {
	s.mu.Lock()
	s.user = nil
	s.state = StateUnauthenticated
	s.signouts++
	s.mu.Unlock()
}

// userError превращает ошибку в сообщение для пользователя
func userError(err error, fallback string) error {
	msg := api.Detail(err)
	if msg == "" {
		msg = fallback
	}
	return &Error{Message: msg, Err: err}
}
