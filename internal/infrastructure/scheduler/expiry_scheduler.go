package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RunStatus represents the outcome of an expiry sweep
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// ExpiryRun records one expiry sweep for monitoring
type ExpiryRun struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Status       RunStatus
	ExpiredCount int
	Error        string
}

// ExpiryExecutor expires overdue estimates. The application layer's estimate
// service satisfies this.
type ExpiryExecutor interface {
	// ExpireOverdue expires every open estimate past its validity window and
	// returns how many were expired
	ExpireOverdue(ctx context.Context) (int, error)
}

// ExpirySchedulerConfig holds configuration for the expiry scheduler
type ExpirySchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// Interval is how often the sweep runs
	Interval time.Duration
	// RunTimeout is the maximum time one sweep can take
	RunTimeout time.Duration
}

// DefaultExpirySchedulerConfig returns default configuration
func DefaultExpirySchedulerConfig() ExpirySchedulerConfig {
	return ExpirySchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunTimeout: 5 * time.Minute,
	}
}

// Validate validates the configuration
func (c *ExpirySchedulerConfig) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidConfig
	}
	if c.RunTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ExpiryScheduler periodically expires estimates whose validity window has
// passed. Each sweep delegates to the executor; a failed sweep is retried at
// the next tick.
type ExpiryScheduler struct {
	config   ExpirySchedulerConfig
	executor ExpiryExecutor
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Run history for monitoring (in-memory, limited size)
	historyMu  sync.RWMutex
	history    []ExpiryRun
	maxHistory int
}

// NewExpiryScheduler creates a new expiry scheduler
func NewExpiryScheduler(config ExpirySchedulerConfig, executor ExpiryExecutor, logger *zap.Logger) (*ExpiryScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ExpiryScheduler{
		config:     config,
		executor:   executor,
		logger:     logger,
		history:    make([]ExpiryRun, 0, 50),
		maxHistory: 50,
	}, nil
}

// Start starts the scheduler. The first sweep runs immediately.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
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
	go s.run(ctx)

	s.logger.Info("Estimate expiry scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler, waiting for an in-flight sweep
func (s *ExpiryScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Estimate expiry scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TriggerNow runs one sweep outside the regular schedule
func (s *ExpiryScheduler) TriggerNow(ctx context.Context) (int, error) {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return 0, ErrSchedulerNotRunning
	}

	return s.sweep(ctx)
}

// History returns a copy of recent runs, newest last
func (s *ExpiryScheduler) History() []ExpiryRun {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()
	return append([]ExpiryRun(nil), s.history...)
}

// IsRunning reports whether the scheduler is active
func (s *ExpiryScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ExpiryScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Sweep once on start so a restart does not delay expiry by an interval
	if _, err := s.sweep(ctx); err != nil {
		s.logger.Error("Initial expiry sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.sweep(ctx); err != nil {
				s.logger.Error("Expiry sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *ExpiryScheduler) sweep(ctx context.Context) (int, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	run := ExpiryRun{StartedAt: time.Now()}

	count, err := s.executor.ExpireOverdue(runCtx)
	run.CompletedAt = time.Now()
	run.ExpiredCount = count

	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = RunStatusSuccess
		if count > 0 {
			s.logger.Info("Expired overdue estimates", zap.Int("count", count))
		}
	}

	s.recordRun(run)
	return count, err
}

func (s *ExpiryScheduler) recordRun(run ExpiryRun) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append(s.history, run)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}
