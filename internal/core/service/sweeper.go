package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Expirer removes expired entries from a key space.
type Expirer interface {
	DeleteExpired(ctx context.Context, nowMillis int64, samplePerShard int) int
}

// SweeperConfig configures a Sweeper.
type SweeperConfig struct {
	// Interval between sweeps. Zero or negative disables the sweeper.
	Interval time.Duration
	// SamplePerShard bounds the entries visited per shard per sweep
	// (0 visits every entry).
	SamplePerShard int
}

// Sweeper periodically removes expired entries. Reads already hide expired
// keys, so the sweeper only bounds memory held by keys nobody reads again.
type Sweeper struct {
	cfg    SweeperConfig
	ks     Expirer
	clock  Clock
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweeper creates a Sweeper. A nil clock uses the wall clock.
func NewSweeper(cfg SweeperConfig, ks Expirer, clock Clock, logger *slog.Logger) *Sweeper {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cfg:    cfg,
		ks:     ks,
		clock:  clock,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the background loop. It is a no-op when the interval is
// not positive.
func (s *Sweeper) Start() {
	if s.cfg.Interval <= 0 {
		s.logger.Info("expiry sweeper disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.closed {
		return
	}
	s.running = true

	s.logger.Info("expiry sweeper started",
		"interval", s.cfg.Interval,
		"sample_per_shard", s.cfg.SamplePerShard)
	go s.loop()
}

// SweepOnce runs a single sweep and returns the number of removed entries.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	return s.ks.DeleteExpired(ctx, s.clock(), s.cfg.SamplePerShard)
}

func (s *Sweeper) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.SweepOnce(context.Background()); n > 0 {
				s.logger.Debug("expired keys swept", "count", n)
			}
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the background loop and waits for it to exit, bounded by ctx.
func (s *Sweeper) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	running := s.running
	close(s.stopCh)
	s.mu.Unlock()

	if !running {
		return nil
	}

	select {
	case <-s.doneCh:
		s.logger.Info("expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
