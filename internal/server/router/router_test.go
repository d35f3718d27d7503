package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/globalconnect/internal/server/handlers"
	"github.com/iudanet/globalconnect/internal/server/jwt"
	"github.com/iudanet/globalconnect/internal/server/mailer"
	"github.com/iudanet/globalconnect/internal/server/metrics"
	"github.com/iudanet/globalconnect/internal/server/middleware"
	"github.com/iudanet/globalconnect/internal/server/storage/sqlite"
	"github.com/iudanet/globalconnect/pkg/api"
)

type testServer struct {
	srv *httptest.Server
}

func setupTestServer(t *testing.T, limiter *middleware.PathRateLimiter) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens := jwt.NewService("test-secret", jwt.DefaultAccessTokenTTL, jwt.DefaultRefreshTokenTTL)
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	auth := handlers.NewAuthHandler(logger, store, store, tokens, mailer.NewLogMailer(logger), collector, handlers.AuthConfig{
		NewResetToken:    jwt.NewOpaqueToken,
		ResetTokenTTL:    jwt.DefaultResetTokenTTL,
		BcryptCost:       bcrypt.MinCost,
		ExposeResetToken: true,
	})

	h := New(Deps{
		Logger:      logger,
		Auth:        auth,
		Health:      handlers.NewHealthHandler(logger, store, "test"),
		Validator:   tokens,
		Metrics:     collector,
		Gatherer:    reg,
		RateLimiter: limiter,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_AuthFlow(t *testing.T) {
	s := setupTestServer(t, nil)

	// Регистрация
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    "Anna@Example.com",
		Username: "anna",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeBody[api.TokenResponse](t, resp)
	assert.Equal(t, api.TokenTypeBearer, registered.TokenType)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	// Текущий пользователь
	resp = s.do(t, http.MethodGet, "/api/auth/me", registered.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[api.UserResponse](t, resp)
	assert.Equal(t, "anna@example.com", me.Email)
	assert.Equal(t, "anna", me.Username)
	assert.NotEmpty(t, me.ID)

	// Повторная регистрация того же email
	resp = s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    "anna@example.com",
		Username: "anna2",
		Password: "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", decodeBody[api.ErrorResponse](t, resp).Detail)

	// Refresh выдает новую пару, старый refresh token больше не работает
	resp = s.do(t, http.MethodPost, "/api/auth/refresh", "", api.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decodeBody[api.TokenResponse](t, resp)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	resp = s.do(t, http.MethodPost, "/api/auth/refresh", "", api.RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid refresh token", decodeBody[api.ErrorResponse](t, resp).Detail)

	// Смена пароля
	resp = s.do(t, http.MethodPost, "/api/auth/change-password", refreshed.AccessToken, api.ChangePasswordRequest{
		OldPassword: "wrong-password",
		NewPassword: "newsecret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/change-password", refreshed.AccessToken, api.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "newsecret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "anna@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", decodeBody[api.ErrorResponse](t, resp).Detail)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "anna@example.com", Password: "newsecret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeBody[api.TokenResponse](t, resp)

	// Logout отзывает все refresh токены пользователя
	resp = s.do(t, http.MethodPost, "/api/auth/logout", loggedIn.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", decodeBody[api.MessageResponse](t, resp).Message)

	for _, token := range []string{refreshed.RefreshToken, loggedIn.RefreshToken} {
		resp = s.do(t, http.MethodPost, "/api/auth/refresh", "", api.RefreshRequest{RefreshToken: token})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestRouter_PasswordReset(t *testing.T) {
	s := setupTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    "ivan@example.com",
		Username: "ivan",
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decodeBody[api.TokenResponse](t, resp)

	// Неизвестный email получает тот же ответ без токена
	resp = s.do(t, http.MethodPost, "/api/auth/forgot-password", "", api.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	unknown := decodeBody[api.MessageResponse](t, resp)
	assert.Empty(t, unknown.ResetToken)

	resp = s.do(t, http.MethodPost, "/api/auth/forgot-password", "", api.ForgotPasswordRequest{Email: "ivan@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	forgot := decodeBody[api.MessageResponse](t, resp)
	assert.Equal(t, unknown.Message, forgot.Message)
	require.NotEmpty(t, forgot.ResetToken)

	resp = s.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: "bogus", NewPassword: "resetpass1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired reset token", decodeBody[api.ErrorResponse](t, resp).Detail)

	resp = s.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: forgot.ResetToken, NewPassword: "resetpass1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Токен сброса одноразовый
	resp = s.do(t, http.MethodPost, "/api/auth/reset-password", "", api.ResetPasswordRequest{Token: forgot.ResetToken, NewPassword: "another12"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Сессии, выданные до сброса, больше не обновляются
	resp = s.do(t, http.MethodPost, "/api/auth/refresh", "", api.RefreshRequest{RefreshToken: session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "ivan@example.com", Password: "resetpass1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ProtectedRoutesRequireBearer(t *testing.T) {
	s := setupTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		bearer string
	}{
		{method: http.MethodGet, path: "/api/auth/me"},
		{method: http.MethodGet, path: "/api/auth/me", bearer: "not-a-jwt"},
		{method: http.MethodPost, path: "/api/auth/logout"},
		{method: http.MethodPost, path: "/api/auth/change-password"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := s.do(t, tt.method, tt.path, tt.bearer, nil)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			assert.Equal(t, middleware.CredentialsError, decodeBody[api.ErrorResponse](t, resp).Detail)
		})
	}
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := setupTestServer(t, nil)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    "not-an-email",
		Username: "al",
		Password: "123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	detail := decodeBody[api.ErrorResponse](t, resp).Detail
	assert.Contains(t, detail, "email")
	assert.Contains(t, detail, "password")

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/auth/login", bytes.NewBufferString("{broken"))
	require.NoError(t, err)
	raw, err := s.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = raw.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, raw.StatusCode)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := setupTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[api.HealthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `globalconnect_auth_events_total{event="login_failed"} 1`)
	assert.Contains(t, out, `route="/api/auth/login"`)
}

func TestRouter_NotFound(t *testing.T) {
	s := setupTestServer(t, nil)

	resp := s.do(t, http.MethodGet, "/api/listings", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", decodeBody[api.ErrorResponse](t, resp).Detail)
}

func TestRouter_AuthRateLimit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	limiter := middleware.NewPathRateLimiter([]middleware.PathRateLimit{
		{Path: "/api/auth/login", Rate: 2, Window: time.Minute},
	}, 100, time.Minute, logger)
	t.Cleanup(limiter.Stop)

	s := setupTestServer(t, limiter)

	login := api.LoginRequest{Email: "ghost@example.com", Password: "secret123"}
	for i := 0; i < 2; i++ {
		resp := s.do(t, http.MethodPost, "/api/auth/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := s.do(t, http.MethodPost, "/api/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Остальные маршруты ограничены общим лимитом
	resp = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
