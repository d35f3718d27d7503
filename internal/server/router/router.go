// Package router собирает HTTP маршруты сервера и цепочку middleware.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iudanet/globalconnect/internal/server/handlers"
	"github.com/iudanet/globalconnect/internal/server/metrics"
	"github.com/iudanet/globalconnect/internal/server/middleware"
)

// Пути без access логов: их опрашивают мониторинг и балансировщик
var quietPaths = []string{"/health", "/metrics"}

// Deps зависимости New
type Deps struct {
	Logger    *slog.Logger
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Validator middleware.TokenValidator

	// Metrics и Gatherer опциональны: без них /metrics не регистрируется
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// RateLimiter опционален
	RateLimiter *middleware.PathRateLimiter
}

// New возвращает http.Handler со всеми маршрутами.
//
// Порядок middleware:
//
//	RequestID → Recovery → Logging → Metrics → RateLimit
//
// /api/auth/me, /change-password и /logout требуют bearer токен.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware(deps.Logger))
	r.Use(middleware.LoggingWithSkip(deps.Logger, quietPaths))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Middleware)
	}

	r.Get("/health", deps.Health.Health)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/refresh", deps.Auth.Refresh)
		r.Post("/forgot-password", deps.Auth.ForgotPassword)
		r.Post("/reset-password", deps.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.Logger, deps.Validator))

			r.Get("/me", deps.Auth.Me)
			r.Post("/change-password", deps.Auth.ChangePassword)
			r.Post("/logout", deps.Auth.Logout)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	})

	return r
}
