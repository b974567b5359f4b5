// Package notify delivers local notifications and sounds. Both are optional
// capabilities: the store accepts nil for either and skips the feature.
package notify

import (
	"context"

	"github.com/bobby-s-dev/weather-buddy/internal/models"
)

type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound bool   `json:"sound"`
}

// ReminderMessage is the copy of the daily reminder notification.
func ReminderMessage(sound bool) Message {
	return Message{
		Title: "Weather Buddy time!",
		Body:  "Tap me to see todays kid-friendly forecast!",
		Sound: sound,
	}
}

func AlertMessage(hit models.AlertHit, sound bool) Message {
	return Message{Title: hit.Title, Body: hit.Body, Sound: sound}
}

// Notifier schedules notifications. Every schedule call returns an opaque id
// that Cancel accepts.
type Notifier interface {
	Permission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, msg Message) (string, error)
	ScheduleDaily(ctx context.Context, hour, minute int, msg Message) (string, error)
	Cancel(ctx context.Context, id string) error
}

type Sound string

// SoundSuccess accompanies a fired weather alert.
const SoundSuccess Sound = "success"

type SoundPlayer interface {
	Play(ctx context.Context, s Sound) error
}

// Sink delivers a message right now.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}
