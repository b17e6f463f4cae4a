package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"collabcore/internal/core/ports"
	"collabcore/pkg/utils"
)

// SweeperConfig sets the cadence and retention for background cleanup.
type SweeperConfig struct {
	SignalingInterval   time.Duration
	ScreenShareInterval time.Duration
	RecordingInterval   time.Duration
	RecordingRetention  int
}

// CleanupMetrics receives sweep outcomes. Implementations must be safe
// for concurrent use.
type CleanupMetrics interface {
	RecordCleanup(registry string, removed int)
}

// Sweeper drives the periodic cleanup passes: expired signaling sessions,
// idle screen shares, and old terminal recording jobs. Each registry keeps
// its own removal rules; the sweeper only owns the schedule.
type Sweeper struct {
	cfg        SweeperConfig
	signaling  ports.SignalingRegistry
	shares     ports.ScreenShareRegistry
	recordings ports.RecordingCoordinator
	metrics    CleanupMetrics
	logger     *zap.SugaredLogger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(cfg SweeperConfig, signaling ports.SignalingRegistry, shares ports.ScreenShareRegistry, recordings ports.RecordingCoordinator, logger *zap.SugaredLogger) *Sweeper {
	return &Sweeper{
		cfg:        cfg,
		signaling:  signaling,
		shares:     shares,
		recordings: recordings,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// SetMetrics attaches a cleanup metrics sink. Must be called before Start.
func (s *Sweeper) SetMetrics(metrics CleanupMetrics) {
	s.metrics = metrics
}

// Start launches the cleanup loops. Loops with a non-positive interval
// are not started.
func (s *Sweeper) Start(ctx context.Context) {
	s.run(ctx, s.cfg.SignalingInterval, func(ctx context.Context) {
		s.report("signaling", s.signaling.CleanupExpired(ctx, utils.Now()))
	})
	s.run(ctx, s.cfg.ScreenShareInterval, func(ctx context.Context) {
		s.report("screen_share", s.shares.Cleanup(ctx, utils.Now()))
	})
	s.run(ctx, s.cfg.RecordingInterval, func(ctx context.Context) {
		s.report("recording", s.recordings.CleanupOlderThan(ctx, s.cfg.RecordingRetention))
	})
	s.logger.Infow("sweeper started",
		"signaling_interval", s.cfg.SignalingInterval,
		"screen_share_interval", s.cfg.ScreenShareInterval,
		"recording_interval", s.cfg.RecordingInterval,
	)
}

func (s *Sweeper) run(ctx context.Context, interval time.Duration, pass func(context.Context)) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pass(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Sweeper) report(registry string, removed int) {
	if s.metrics != nil {
		s.metrics.RecordCleanup(registry, removed)
	}
	if removed > 0 {
		s.logger.Infow("cleanup pass removed entries", "registry", registry, "removed", removed)
	}
}

// Stop halts all loops and waits for in-flight passes to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
