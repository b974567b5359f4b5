package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
	"go.uber.org/zap"
)

// ShoutrrrSink forwards notifications to every configured shoutrrr URL.
type ShoutrrrSink struct {
	sender *router.ServiceRouter
}

func NewShoutrrrSink(urls []string, timeout time.Duration) (*ShoutrrrSink, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one notification URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("invalid notification URL: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return &ShoutrrrSink{sender: sender}, nil
}

func (s *ShoutrrrSink) Deliver(_ context.Context, msg Message) error {
	params := stypes.Params{}
	if msg.Title != "" {
		params.SetTitle(msg.Title)
	}
	for _, err := range s.sender.Send(msg.Body, &params) {
		if err != nil {
			return err
		}
	}
	return nil
}

// LogSink writes notifications to the log. It is the default when no URLs
// are configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, msg Message) error {
	s.logger.Info("Notification",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Bool("sound", msg.Sound))
	return nil
}

// LogPlayer stands in for an audio device.
type LogPlayer struct {
	logger *zap.Logger
}

func NewLogPlayer(logger *zap.Logger) *LogPlayer {
	return &LogPlayer{logger: logger}
}

func (p *LogPlayer) Play(_ context.Context, s Sound) error {
	p.logger.Debug("Playing sound", zap.String("sound", string(s)))
	return nil
}
