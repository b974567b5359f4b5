package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrInvalidTime = errors.New("invalid reminder time")

// Local is a Notifier that delivers to a Sink immediately and runs daily
// schedules on an in-process cron.
type Local struct {
	sink    Sink
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]cron.EntryID
	running bool
}

func NewLocal(sink Sink, timeout time.Duration, logger *zap.Logger) *Local {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Local{
		sink:    sink,
		cron:    cron.New(),
		logger:  logger,
		timeout: timeout,
		entries: make(map[string]cron.EntryID),
	}
}

func (l *Local) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.cron.Start()
	l.logger.Info("Notification scheduler started")
}

// Stop halts the cron and waits for deliveries in flight.
func (l *Local) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	<-l.cron.Stop().Done()
	l.logger.Info("Notification scheduler stopped")
}

func (l *Local) Permission(_ context.Context) (Permission, error) {
	if l.sink == nil {
		return PermissionDenied, nil
	}
	return PermissionGranted, nil
}

func (l *Local) Notify(ctx context.Context, msg Message) (string, error) {
	if l.sink == nil {
		return "", fmt.Errorf("notify: %w", errNoSink)
	}
	if err := l.sink.Deliver(ctx, msg); err != nil {
		return "", fmt.Errorf("notify: %w", err)
	}
	return uuid.NewString(), nil
}

var errNoSink = errors.New("no delivery sink configured")

func (l *Local) ScheduleDaily(_ context.Context, hour, minute int, msg Message) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	if l.sink == nil {
		return "", fmt.Errorf("schedule: %w", errNoSink)
	}

	id := uuid.NewString()
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	entryID, err := l.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if err := l.sink.Deliver(ctx, msg); err != nil {
			l.logger.Warn("Daily notification delivery failed",
				zap.String("id", id),
				zap.Error(err))
		}
	})
	if err != nil {
		return "", fmt.Errorf("schedule %q: %w", spec, err)
	}

	l.mu.Lock()
	l.entries[id] = entryID
	l.mu.Unlock()

	l.logger.Info("Daily notification scheduled",
		zap.String("id", id),
		zap.Int("hour", hour),
		zap.Int("minute", minute))
	return id, nil
}

// Cancel is a no-op for unknown ids.
func (l *Local) Cancel(_ context.Context, id string) error {
	l.mu.Lock()
	entryID, ok := l.entries[id]
	delete(l.entries, id)
	l.mu.Unlock()

	if ok {
		l.cron.Remove(entryID)
		l.logger.Info("Scheduled notification cancelled", zap.String("id", id))
	}
	return nil
}

// NextRun reports when a scheduled notification fires next after from.
func (l *Local) NextRun(id string, from time.Time) (time.Time, bool) {
	l.mu.Lock()
	entryID, ok := l.entries[id]
	l.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	entry := l.cron.Entry(entryID)
	if entry.Schedule == nil {
		return time.Time{}, false
	}
	return entry.Schedule.Next(from), true
}

func (l *Local) Scheduled() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
