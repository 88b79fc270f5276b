package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops idle widget instances and reports how many went.
type Sweeper interface {
	Sweep() int
}

// Scheduler runs the widget registry sweep on a cron schedule.
type Scheduler struct {
	sweeper  Sweeper
	logger   *zap.Logger
	cron     *cron.Cron
	schedule string

	mu      sync.Mutex
	running bool
	lastRun time.Time
	swept   int
}

func NewScheduler(sweeper Sweeper, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		schedule: schedule,
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.RunSweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// RunSweep performs one sweep immediately.
func (s *Scheduler) RunSweep() {
	startTime := time.Now()
	removed := s.sweeper.Sweep()

	s.mu.Lock()
	s.lastRun = startTime
	s.swept += removed
	s.mu.Unlock()

	s.logger.Debug("Widget sweep completed",
		zap.Int("removed", removed),
		zap.Duration("duration", time.Since(startTime)))
}

// Stop waits for a sweep in progress. s.mu is released first because
// RunSweep takes it when the sweep finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"last_run": s.lastRun,
		"swept":    s.swept,
	}
}
