// Package cleanup удаляет просроченные refresh токены по расписанию cron.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenPurger удаляет refresh токены, истекшие до now
type TokenPurger interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}

// PurgeRecorder учитывает количество удаленных токенов
type PurgeRecorder interface {
	RecordTokensPurged(count int)
}

// Job периодически чистит таблицу refresh_tokens.
// Запуск идемпотентен: если удалять нечего, ошибки нет.
type Job struct {
	tokens   TokenPurger
	recorder PurgeRecorder
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time
	timeout  time.Duration
}

// NewJob создает задачу очистки. recorder может быть nil.
func NewJob(tokens TokenPurger, recorder PurgeRecorder, logger *slog.Logger) *Job {
	return &Job{
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		timeout:  30 * time.Second,
	}
}

// Run удаляет просроченные токены один раз
func (j *Job) Run(ctx context.Context) (int, error) {
	start := time.Now()

	deleted, err := j.tokens.DeleteExpiredTokens(ctx, j.now())
	if err != nil {
		j.logger.ErrorContext(ctx, "token cleanup failed", slog.Any("error", err))
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordTokensPurged(deleted)
	}

	j.logger.InfoContext(ctx, "token cleanup completed",
		slog.Int("deleted", deleted),
		slog.Duration("duration", time.Since(start)),
	)

	return deleted, nil
}

// Start планирует Run по cron выражению (поддерживаются дескрипторы вроде "@hourly").
// Первая очистка выполняется сразу. Остановка через Stop.
func (j *Job) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))

	_, err := c.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, j.timeout)
		defer cancel()
		_, _ = j.Run(runCtx)
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	if _, err := j.Run(ctx); err != nil {
		j.logger.WarnContext(ctx, "initial token cleanup failed", slog.Any("error", err))
	}

	j.cron = c
	c.Start()

	j.logger.InfoContext(ctx, "token cleanup scheduled", slog.String("schedule", schedule))
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (j *Job) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
