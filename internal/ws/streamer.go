package ws

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/twobackfromtheend/rlbot-overlay-script/internal/ingest"
)

// MessageSource produces the messages for one broadcast tick.
type MessageSource interface {
	Messages() []ingest.Message
}

// publisher is the part of Hub the streamer needs.
type publisher interface {
	IsEmpty() bool
	Publish(msg ingest.Message)
}

// Streamer publishes the current game state to every viewer at a fixed rate.
type Streamer struct {
	hub      publisher
	source   MessageSource
	interval time.Duration
	logger   *zap.Logger
}

// minInterval bounds the tick rate at 1 kHz.
const minInterval = time.Millisecond

// NewStreamer creates a Streamer that ticks rateHz times per second.
// Non-positive rates fall back to 30 Hz; rates above 1 kHz are capped.
func NewStreamer(hub publisher, source MessageSource, rateHz int, logger *zap.Logger) *Streamer {
	if rateHz <= 0 {
		rateHz = 30
	}
	interval := time.Second / time.Duration(rateHz)
	if interval < minInterval {
		interval = minInterval
	}
	return &Streamer{
		hub:      hub,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the time between ticks.
func (s *Streamer) Interval() time.Duration {
	return s.interval
}

// Run starts the broadcast loop. Call in a goroutine.
// Returns when context is cancelled.
func (s *Streamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("streamer started",
		zap.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("streamer stopping")
			return

		case <-ticker.C:
			s.tick()
		}
	}
}

// tick publishes one round of messages. Nothing is computed while no
// viewer is connected, so a pending spectate waits for the next viewer.
func (s *Streamer) tick() {
	if s.hub.IsEmpty() {
		return
	}

	for _, msg := range s.source.Messages() {
		s.hub.Publish(msg)
	}
}
