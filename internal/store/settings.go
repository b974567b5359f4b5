package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
	"github.com/bobby-s-dev/weather-buddy/internal/notify"
)

func (s *Store) SetKidMode(ctx context.Context, on bool) {
	s.mu.Lock()
	s.prefs.KidMode = on
	s.mu.Unlock()
	s.persistPrefs(ctx)
}

func (s *Store) SetThemeChoice(ctx context.Context, choice models.ThemeChoice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: theme %q", ErrInvalidSetting, choice)
	}
	s.mu.Lock()
	s.prefs.ThemeChoice = choice
	s.mu.Unlock()
	s.persistPrefs(ctx)
	return nil
}

func (s *Store) SetTemperatureUnit(ctx context.Context, unit models.TemperatureUnit) error {
	if !unit.Valid() {
		return fmt.Errorf("%w: unit %q", ErrInvalidSetting, unit)
	}
	s.mu.Lock()
	s.prefs.TemperatureUnit = unit
	s.mu.Unlock()
	s.persistPrefs(ctx)
	return nil
}

func (s *Store) SetNotificationSound(ctx context.Context, on bool) {
	s.mu.Lock()
	s.prefs.NotificationSound = on
	s.mu.Unlock()
	s.persistPrefs(ctx)
}

// SetNotificationsEnabled asks for permission before turning notifications
// on. Denial leaves them off, queues a notice and returns an error wrapping
// models.ErrPermissionDenied.
func (s *Store) SetNotificationsEnabled(ctx context.Context, on bool) error {
	if on {
		if err := s.checkPermission(ctx); err != nil {
			s.mu.Lock()
			s.prefs.NotificationsEnabled = false
			s.pushToast(models.ToastNotice, "Notifications are off", "Allow notifications to hear about wild weather.")
			s.mu.Unlock()
			s.persistPrefs(ctx)
			return err
		}
	}

	s.mu.Lock()
	s.prefs.NotificationsEnabled = on
	s.mu.Unlock()
	s.persistPrefs(ctx)
	return nil
}

func (s *Store) checkPermission(ctx context.Context) error {
	if s.notifier == nil {
		return fmt.Errorf("notifications unavailable: %w", models.ErrPermissionDenied)
	}
	perm, err := s.notifier.Permission(ctx)
	if err != nil {
		return fmt.Errorf("notification permission: %w", err)
	}
	if perm != notify.PermissionGranted {
		return fmt.Errorf("notification permission %s: %w", perm, models.ErrPermissionDenied)
	}
	return nil
}

func (s *Store) SetAlertRule(ctx context.Context, id models.AlertID, enabled bool) error {
	s.mu.Lock()
	found := false
	for i := range s.prefs.AlertRules {
		if s.prefs.AlertRules[i].ID == id {
			s.prefs.AlertRules[i].Enabled = enabled
			found = true
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("%w: alert %q", ErrInvalidSetting, id)
	}
	s.persistPrefs(ctx)
	return nil
}

// SetDailyReminder cancels any scheduled reminder and, when enabled,
// schedules a new one at hour:minute local time.
func (s *Store) SetDailyReminder(ctx context.Context, enabled bool, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: reminder time %02d:%02d", ErrInvalidSetting, hour, minute)
	}

	s.mu.Lock()
	oldID := s.prefs.DailyReminder.NotificationID
	sound := s.prefs.NotificationSound
	s.mu.Unlock()

	if oldID != "" && s.notifier != nil {
		if err := s.notifier.Cancel(ctx, oldID); err != nil {
			s.logger.Warn("Failed to cancel daily reminder",
				zap.String("id", oldID),
				zap.Error(err))
		}
	}

	reminder := models.DailyReminder{Enabled: enabled, Hour: hour, Minute: minute}
	var result error
	if enabled {
		id, err := s.scheduleReminder(ctx, hour, minute, sound)
		if err != nil {
			reminder.Enabled = false
			result = err
		}
		reminder.NotificationID = id
	}

	s.mu.Lock()
	s.prefs.DailyReminder = reminder
	s.mu.Unlock()
	s.persistPrefs(ctx)

	return result
}

func (s *Store) scheduleReminder(ctx context.Context, hour, minute int, sound bool) (string, error) {
	if err := s.checkPermission(ctx); err != nil {
		return "", err
	}
	id, err := s.notifier.ScheduleDaily(ctx, hour, minute, notify.ReminderMessage(sound))
	if err != nil {
		s.metrics.RecordNotification("reminder", "error")
		return "", fmt.Errorf("schedule daily reminder: %w", err)
	}
	s.metrics.RecordNotification("reminder", "success")
	return id, nil
}

// rescheduleReminder restores an enabled reminder after a restart, since
// schedule ids do not outlive the process.
func (s *Store) rescheduleReminder(ctx context.Context) {
	s.mu.Lock()
	reminder := s.prefs.DailyReminder
	sound := s.prefs.NotificationSound
	s.mu.Unlock()

	if !reminder.Enabled {
		return
	}

	id, err := s.scheduleReminder(ctx, reminder.Hour, reminder.Minute, sound)
	if err != nil {
		s.logger.Warn("Failed to restore daily reminder", zap.Error(err))
	}

	s.mu.Lock()
	s.prefs.DailyReminder.NotificationID = id
	s.mu.Unlock()
	s.persistPrefs(ctx)
}
