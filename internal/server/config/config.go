// Package config загружает конфигурацию сервера из окружения, .env файла и флагов.
// Приоритет: флаги > переменные окружения > .env > значения по умолчанию.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/iudanet/globalconnect/internal/server/mailer"
)

// Config конфигурация сервера
type Config struct {
	Mail             mailer.Config
	Address          string
	DatabasePath     string
	JWTSecret        string
	CleanupSchedule  string
	LogLevel         slog.Level
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration
	RateWindow       time.Duration
	ShutdownTimeout  time.Duration
	RateLimit        int
	AuthRateLimit    int
	ExposeResetToken bool
}

// Default возвращает конфигурацию по умолчанию (без JWT секрета)
func Default() *Config {
	return &Config{
		Address:         ":8000",
		DatabasePath:    "globalconnect.db",
		CleanupSchedule: "@hourly",
		LogLevel:        slog.LevelInfo,
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
		RateWindow:      time.Minute,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       100,
		AuthRateLimit:   10,
		Mail: mailer.Config{
			From:     "noreply@globalconnect.app",
			SMTPPort: "587",
		},
	}
}

// Load разбирает аргументы командной строки, подгружает .env и окружение
func Load(args []string) (*Config, error) {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	envFile := flags.String("env-file", ".env", "path to .env file (ignored if missing)")
	address := flags.String("a", "", "listen address (SERVER_ADDRESS)")
	dbPath := flags.String("d", "", "SQLite database path (DATABASE_PATH)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error (LOG_LEVEL)")
	exposeReset := flags.Bool("expose-reset-token", false, "return reset tokens in API responses, development only (EXPOSE_RESET_TOKEN)")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := loadEnvFile(*envFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	var flagErr error
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.Address = *address
		case "d":
			cfg.DatabasePath = *dbPath
		case "log-level":
			if err := cfg.LogLevel.UnmarshalText([]byte(*logLevel)); err != nil {
				flagErr = fmt.Errorf("invalid -log-level: %w", err)
			}
		case "expose-reset-token":
			cfg.ExposeResetToken = *exposeReset
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile загружает .env. Уже заданные переменные окружения не перезаписываются.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error

	envString("SERVER_ADDRESS", &c.Address)
	envString("DATABASE_PATH", &c.DatabasePath)
	envString("JWT_SECRET", &c.JWTSecret)
	envString("CLEANUP_SCHEDULE", &c.CleanupSchedule)

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	errs = append(errs,
		envScaled("ACCESS_TOKEN_EXPIRE_MINUTES", time.Minute, &c.AccessTokenTTL),
		envScaled("REFRESH_TOKEN_EXPIRE_DAYS", 24*time.Hour, &c.RefreshTokenTTL),
		envScaled("RESET_TOKEN_EXPIRE_HOURS", time.Hour, &c.ResetTokenTTL),
		envDuration("RATE_LIMIT_WINDOW", &c.RateWindow),
		envDuration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout),
		envInt("RATE_LIMIT_REQUESTS", &c.RateLimit),
		envInt("AUTH_RATE_LIMIT_REQUESTS", &c.AuthRateLimit),
		envBool("EXPOSE_RESET_TOKEN", &c.ExposeResetToken),
	)

	envString("MAIL_FROM", &c.Mail.From)
	envString("SMTP_HOST", &c.Mail.SMTPHost)
	envString("SMTP_PORT", &c.Mail.SMTPPort)
	envString("SMTP_USERNAME", &c.Mail.SMTPUsername)
	envString("SMTP_PASSWORD", &c.Mail.SMTPPassword)
	envString("SENDGRID_API_KEY", &c.Mail.SendGridAPIKey)

	return errors.Join(errs...)
}

// Validate проверяет обязательные параметры и диапазоны
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	for name, d := range map[string]time.Duration{
		"access token TTL":  c.AccessTokenTTL,
		"refresh token TTL": c.RefreshTokenTTL,
		"reset token TTL":   c.ResetTokenTTL,
		"rate limit window": c.RateWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.RateLimit <= 0 || c.AuthRateLimit <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}

	return errors.Join(errs...)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// envScaled читает целое число единиц unit (минуты, дни, часы)
func envScaled(key string, unit time.Duration, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = time.Duration(n) * unit
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
