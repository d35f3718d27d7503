package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/globalconnect/internal/client/storage"
	"github.com/iudanet/globalconnect/pkg/api"
)

const refreshPath = "/auth/refresh"

// refreshTimeout ограничивает общий refresh, который не зависит от отмены вызывающих
const refreshTimeout = 30 * time.Second

// RefreshListener observes the token refresh lifecycle of the client.
// RefreshStarted and RefreshFinished are called once per shared refresh;
// SessionExpired is called after the client has cleared both stored tokens.
type RefreshListener interface {
	RefreshStarted()
	RefreshFinished(err error)
	SessionExpired()
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Запросы получают bearer токен из хранилища; при 401 токены обновляются один раз.
type Client struct {
	tokens     storage.SecureStorage
	listener   RefreshListener
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	refreshes  singleflight.Group
	mu         sync.RWMutex
}

// Option настраивает Client
type Option func(*Client)

// WithHTTPClient заменяет HTTP клиент по умолчанию
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger задает логгер клиента
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает новый API клиент.
// backendURL - адрес бэкенда без суффикса /api.
func NewClient(backendURL string, tokens storage.SecureStorage, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(backendURL, "/") + "/api",
		tokens:  tokens,
		logger:  slog.Default(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root all request paths are relative to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetRefreshListener registers l to observe refreshes. nil removes the listener.
func (c *Client) SetRefreshListener(l RefreshListener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

func (c *Client) currentListener() RefreshListener {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listener
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", req, &resp, false); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", req, &resp, false); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh токен на новую пару, минуя перехватчик
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	body := api.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, refreshPath, body, &resp, false); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Me возвращает текущего пользователя
func (c *Client) Me(ctx context.Context) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("get current user failed: %w", err)
	}
	return &resp, nil
}

// Logout завершает сессию на сервере
func (c *Client) Logout(ctx context.Context) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, &resp, true); err != nil {
		return nil, fmt.Errorf("logout request failed: %w", err)
	}
	return &resp, nil
}

// ForgotPassword запрашивает токен сброса пароля
func (c *Client) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/forgot-password", req, &resp, false); err != nil {
		return nil, fmt.Errorf("forgot password request failed: %w", err)
	}
	return &resp, nil
}

// ResetPassword устанавливает новый пароль по токену сброса
func (c *Client) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/reset-password", req, &resp, false); err != nil {
		return nil, fmt.Errorf("reset password request failed: %w", err)
	}
	return &resp, nil
}

// ChangePassword меняет пароль текущего пользователя
func (c *Client) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) (*api.MessageResponse, error) {
	var resp api.MessageResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/change-password", req, &resp, true); err != nil {
		return nil, fmt.Errorf("change password request failed: %w", err)
	}
	return &resp, nil
}

// Health проверяет доступность сервера. /health живет вне префикса /api.
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	url := strings.TrimSuffix(c.baseURL, "/api") + "/health"
	status, body, err := c.send(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return nil, err
	}
	if err := decodeResponse(status, body, &resp); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос.
// authorized запросы несут bearer токен и проходят через refresh-and-retry;
// запросы с учетными данными (login, register, refresh) этого не делают,
// потому что их 401 означает неверные данные, а не истекший токен.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any, authorized bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	url := c.baseURL + path
	if !authorized {
		status, respBody, err := c.send(ctx, method, url, payload, "")
		if err != nil {
			return err
		}
		return decodeResponse(status, respBody, result)
	}

	accessToken, err := c.storedToken(ctx, storage.KeyAccessToken)
	if err != nil {
		return err
	}

	status, respBody, err := c.send(ctx, method, url, payload, accessToken)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return decodeResponse(status, respBody, result)
	}

	refreshToken, err := c.storedToken(ctx, storage.KeyRefreshToken)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		// Обновлять нечем: исходный 401 уходит вызывающему как есть
		return newHTTPError(status, respBody)
	}

	newAccess, err := c.refreshShared(ctx, accessToken, refreshToken)
	if err != nil {
		// Отмена вызывающего не означает, что сессия истекла
		if ctx.Err() != nil {
			return err
		}
		c.expireSession(ctx)
		return err
	}

	// Единственный повтор
	status, respBody, err = c.send(ctx, method, url, payload, newAccess)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		c.logger.WarnContext(ctx, "request still unauthorized after token refresh", "path", path)
		c.expireSession(ctx)
	}
	return decodeResponse(status, respBody, result)
}

// refreshShared обновляет токены; параллельные вызовы разделяют один запрос.
// staleAccess - токен, с которым запрос получил 401: если в хранилище уже лежит
// другой, пару обновил кто-то раньше и новый refresh не нужен.
// Общий запрос не наследует отмену ctx: к нему могут присоединиться другие вызывающие.
func (c *Client) refreshShared(ctx context.Context, staleAccess, refreshToken string) (string, error) {
	current, err := c.storedToken(ctx, storage.KeyAccessToken)
	if err == nil && current != "" && current != staleAccess {
		return current, nil
	}

	v, err, _ := c.refreshes.Do(refreshToken, func() (any, error) {
		listener := c.currentListener()
		if listener != nil {
			listener.RefreshStarted()
		}

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		access, err := c.rotateTokens(refreshCtx, refreshToken)

		if listener != nil {
			listener.RefreshFinished(err)
		}
		return access, err
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) rotateTokens(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		c.logger.WarnContext(ctx, "token refresh failed", "error", err)
		return "", err
	}

	if err := c.tokens.SetItem(ctx, storage.KeyAccessToken, resp.AccessToken); err != nil {
		return "", fmt.Errorf("failed to store access token: %w", err)
	}
	if err := c.tokens.SetItem(ctx, storage.KeyRefreshToken, resp.RefreshToken); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	c.logger.DebugContext(ctx, "tokens refreshed")
	return resp.AccessToken, nil
}

// expireSession удаляет оба токена и уведомляет слушателя
func (c *Client) expireSession(ctx context.Context) {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken} {
		if err := c.tokens.DeleteItem(ctx, key); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear token", "key", key, "error", err)
		}
	}
	if listener := c.currentListener(); listener != nil {
		listener.SessionExpired()
	}
}

// storedToken возвращает токен или пустую строку, если его нет
func (c *Client) storedToken(ctx context.Context, key string) (string, error) {
	value, err := c.tokens.GetItem(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// send выполняет один HTTP запрос и возвращает статус и тело ответа
func (c *Client) send(ctx context.Context, method, url string, payload []byte, bearer string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

func decodeResponse(status int, body []byte, result any) error {
	if status < 200 || status >= 300 {
		return newHTTPError(status, body)
	}
	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
