package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	applease "github.com/bailflow/core/internal/application/lease"
)

// ActivationSweepConfig holds configuration for the periodic activation sweep
type ActivationSweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

// DefaultActivationSweepConfig returns the default sweep configuration
func DefaultActivationSweepConfig() ActivationSweepConfig {
	return ActivationSweepConfig{
		Enabled:  true,
		Interval: 1 * time.Hour,
	}
}

// ActivationSweepScheduler periodically activates fully signed leases whose
// activation conditions were met out of band, for example when an entry
// inspection was signed while the lease was locked.
type ActivationSweepScheduler struct {
	config ActivationSweepConfig
	leases *applease.Service
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewActivationSweepScheduler creates a new activation sweep scheduler
func NewActivationSweepScheduler(
	config ActivationSweepConfig,
	leases *applease.Service,
	logger *zap.Logger,
) *ActivationSweepScheduler {
	return &ActivationSweepScheduler{
		config: config,
		leases: leases,
		logger: logger,
	}
}

// Start starts the sweep loop
func (s *ActivationSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.sweepLoop(ctx)

	s.logger.Info("activation sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the sweep loop
func (s *ActivationSweepScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("activation sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ActivationSweepScheduler) sweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ActivationSweepScheduler) sweep(ctx context.Context) {
	activated, err := s.leases.SweepActivations(ctx)
	if err != nil {
		s.logger.Error("activation sweep failed", zap.Error(err))
		return
	}
	if activated > 0 {
		s.logger.Info("activation sweep finished", zap.Int("activated", activated))
	}
}
