package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Warmer fills the cache of one season.
type Warmer interface {
	Warm(ctx context.Context, season int) error
}

// Scheduler periodically warms the cache for configured seasons.
type Scheduler struct {
	scheduler *gocron.Scheduler
	warmer    Warmer
	seasons   []int
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(seasons []int, interval time.Duration, warmer Warmer, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		warmer:    warmer,
		seasons:   seasons,
		interval:  interval,
		timeout:   2 * time.Minute,
		logger:    logger,
	}
}

// Start schedules the warm job, runs it once right away and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.seasons) == 0 {
		s.logger.Info("scheduler: no seasons configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	if _, err := s.scheduler.Every(interval).Do(s.run); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// run warms seasons one after another so the upstream sites see one request
// stream at a time.
func (s *Scheduler) run() {
	s.logger.Info("scheduler: warming cache", zap.Ints("seasons", s.seasons))

	failed := 0
	for _, season := range s.seasons {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.warmer.Warm(ctx, season)
		cancel()
		if err != nil {
			failed++
			s.logger.Warn("scheduler: warm failed", zap.Int("season", season), zap.Error(err))
		}
	}

	s.logger.Info("scheduler: completed cache warm", zap.Int("seasons", len(s.seasons)), zap.Int("failed", failed))
}
