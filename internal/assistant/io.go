package assistant

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Capture error taxonomy. The first two are retryable within a listening
// attempt, ErrChannelDown ends the attempt (the loop itself keeps running),
// ErrSourceClosed means the channel is gone for good.
var (
	ErrNoSpeech       = errors.New("no speech detected")
	ErrUnintelligible = errors.New("could not understand audio")
	ErrChannelDown    = errors.New("input channel unavailable")
	ErrSourceClosed   = errors.New("input source closed")
)

// UtteranceSource yields one normalized lowercase utterance per call.
// An empty string with a nil error means nothing was captured this cycle.
type UtteranceSource interface {
	Capture(ctx context.Context) (string, error)
}

// ResponseSink plays or prints a response. Best effort: failures are
// logged by the caller, never fatal.
type ResponseSink interface {
	Say(text string) error
}

// ThrottledSink serializes concurrent Say calls and drops messages that
// arrive within the minimum interval of the previous one. Background
// workers use it as their feedback channel so rapid events cannot talk
// over each other mid-utterance.
type ThrottledSink struct {
	mu       sync.Mutex
	sink     ResponseSink
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewThrottledSink(sink ResponseSink, interval time.Duration) *ThrottledSink {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ThrottledSink{sink: sink, interval: interval, now: time.Now}
}

func (t *ThrottledSink) Say(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return nil
	}
	t.last = now
	return t.sink.Say(text)
}
