package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bailflow/core/internal/application/reconciliation"
)

// cronTickerInterval is the interval at which the cron loop checks the clock
const cronTickerInterval = 1 * time.Minute

// ErrSchedulerNotRunning is returned when a trigger is requested on a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// ReconciliationCronConfig holds configuration for the daily reconciliation trigger
type ReconciliationCronConfig struct {
	Enabled bool
	// Hour is the local hour (0-23) the daily run fires at
	Hour int
	// Timeout is the maximum duration of a single reconciliation run
	Timeout time.Duration
}

// DefaultReconciliationCronConfig returns the default trigger configuration,
// firing at 03:00 local time.
func DefaultReconciliationCronConfig() ReconciliationCronConfig {
	return ReconciliationCronConfig{
		Enabled: true,
		Hour:    3,
		Timeout: 10 * time.Minute,
	}
}

// ReconciliationCronScheduler fires one reconciliation run per day at the
// configured hour. A date guard keeps the run from firing twice on the same
// day even if ticks land on the same minute repeatedly.
type ReconciliationCronScheduler struct {
	config ReconciliationCronConfig
	engine *reconciliation.Engine
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunDate string // YYYY-MM-DD of the last fired run
	lastRunAt   *time.Time
	nextRunAt   *time.Time
}

// NewReconciliationCronScheduler creates a new daily reconciliation trigger
func NewReconciliationCronScheduler(
	config ReconciliationCronConfig,
	engine *reconciliation.Engine,
	logger *zap.Logger,
) *ReconciliationCronScheduler {
	return &ReconciliationCronScheduler{
		config: config,
		engine: engine,
		logger: logger,
	}
}

// Start starts the cron loop
func (s *ReconciliationCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("reconciliation scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.Timep("next_run_at", s.nextRunAt),
	)
	return nil
}

// Stop stops the cron loop, waiting for an in-flight run to finish
func (s *ReconciliationCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerManualRun fires a reconciliation run immediately. The run uses a
// background context so it survives the triggering HTTP request.
func (s *ReconciliationCronScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runOnce(context.Background())
	return nil
}

// GetStatus returns the current scheduler status
func (s *ReconciliationCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"hour":        s.config.Hour,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

func (s *ReconciliationCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runOnce(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

func (s *ReconciliationCronScheduler) shouldRun(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Hour() == s.config.Hour && s.lastRunDate != now.Format("2006-01-02")
}

func (s *ReconciliationCronScheduler) runOnce(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunDate = now.Format("2006-01-02")
	s.lastRunAt = &now
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	run, err := s.engine.Run(runCtx)
	if err != nil {
		s.logger.Error("scheduled reconciliation run failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled reconciliation run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
	)
}

func (s *ReconciliationCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.Hour, 0, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}
