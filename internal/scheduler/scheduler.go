package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/metrics"
)

// Refresher is the store operation the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Status struct {
	Running       bool      `json:"running"`
	Interval      string    `json:"interval"`
	LastRun       time.Time `json:"lastRun"`
	NextRun       time.Time `json:"nextRun"`
	InFlight      bool      `json:"inFlight"`
	SkipIfRunning bool      `json:"skipIfRunning"`
}

// Scheduler refreshes the selected city's forecast on a fixed interval.
type Scheduler struct {
	refresher     Refresher
	logger        *zap.Logger
	metrics       *metrics.BuddyMetrics
	interval      time.Duration
	timeout       time.Duration
	skipIfRunning bool

	mu       sync.Mutex
	running  bool
	inFlight bool
	lastRun  time.Time
	nextRun  time.Time
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(refresher Refresher, interval time.Duration, logger *zap.Logger, m *metrics.BuddyMetrics) *Scheduler {
	return &Scheduler{
		refresher:     refresher,
		logger:        logger,
		metrics:       m,
		interval:      interval,
		timeout:       60 * time.Second,
		skipIfRunning: true,
	}
}

// Start begins ticking. The first refresh happens one interval from now:
// the store already refreshes during Init.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.interval <= 0 {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.nextRun = time.Now().Add(s.interval)

	s.logger.Info("Scheduler started",
		zap.Duration("interval", s.interval),
		zap.Time("next_run", s.nextRun))

	s.wg.Add(1)
	go s.run(s.stop)
}

func (s *Scheduler) run(stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.nextRun = time.Now().Add(s.interval)
			s.mu.Unlock()
			s.logger.Debug("Scheduler tick")
			s.metrics.RecordScheduledRun()
			s.runRefresh()
		case <-stop:
			return
		}
	}
}

func (s *Scheduler) runRefresh() {
	s.mu.Lock()
	if s.skipIfRunning && s.inFlight {
		s.mu.Unlock()
		s.logger.Debug("Skipping refresh, previous run still in flight")
		return
	}
	s.inFlight = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	s.logger.Info("Starting scheduled refresh")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("Scheduled refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
	} else {
		s.logger.Info("Scheduled refresh completed",
			zap.Duration("duration", time.Since(startTime)))
	}
}

// Stop halts the ticker and waits for a refresh in progress.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.logger.Info("Stopping scheduler")
	close(s.stop)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// ForceRun refreshes outside the schedule without blocking the caller.
func (s *Scheduler) ForceRun() {
	s.logger.Info("Manually triggering refresh")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh()
	}()
}

func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Running:       s.running,
		Interval:      s.interval.String(),
		LastRun:       s.lastRun,
		NextRun:       s.nextRun,
		InFlight:      s.inFlight,
		SkipIfRunning: s.skipIfRunning,
	}
}
