package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Expirer помечает просроченными устаревшие вызовы о помощи.
type Expirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Scheduler периодически запускает истечение вызовов по cron-расписанию.
type Scheduler struct {
	cron    *cron.Cron
	expirer Expirer
	logger  *slog.Logger
	timeout time.Duration
}

// New разбирает spec (стандартный cron или дескрипторы вида "@every 1m") и регистрирует задачу.
func New(spec string, e Expirer, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		expirer: e,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce выполняет одну итерацию истечения.
func (s *Scheduler) RunOnce(ctx context.Context) {
	n, err := s.expirer.ExpireStale(ctx)
	if err != nil {
		s.logger.Error("expire help requests failed", "err", err)
		return
	}
	if n > 0 {
		s.logger.Info("help requests expired", "count", n)
	}
}

// Start запускает планировщик в отдельной горутине.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения текущей задачи или отмены ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
