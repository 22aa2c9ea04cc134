package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/AaronLay10/InnerVoice/internal/scenario"
)

// Delays are the three suspension points of a run. Thoughts arrive quickly,
// speech arrives after a typing delay, and turns are separated by a pause.
type Delays struct {
	Thought   time.Duration // before each internal thought
	Typing    time.Duration // while the speaker is typing
	TurnPause time.Duration // after each spoken line except the last
}

// DefaultDelays returns the reference cadence.
func DefaultDelays() Delays {
	return Delays{
		Thought:   600 * time.Millisecond,
		Typing:    1000 * time.Millisecond,
		TurnPause: 800 * time.Millisecond,
	}
}

// Validate rejects negative delays.
func (d Delays) Validate() error {
	var problems []string
	if d.Thought < 0 {
		problems = append(problems, fmt.Sprintf("thought delay must not be negative: %s", d.Thought))
	}
	if d.Typing < 0 {
		problems = append(problems, fmt.Sprintf("typing delay must not be negative: %s", d.Typing))
	}
	if d.TurnPause < 0 {
		problems = append(problems, fmt.Sprintf("turn pause must not be negative: %s", d.TurnPause))
	}
	if len(problems) > 0 {
		return &scenario.ConfigurationError{Problems: problems}
	}
	return nil
}

// Sleeper suspends a run for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// EventType names an engine lifecycle event.
type EventType string

const (
	EventBanner    EventType = "banner"
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventCancelled EventType = "cancelled"
	EventRejected  EventType = "rejected"
)

// Event is a lifecycle notification. Scenario is nil for EventRejected.
type Event struct {
	Type     EventType
	Scenario *scenario.Scenario
	Result   Result
}

// Observer receives lifecycle events. It may be called from the HTTP
// goroutine (rejections) and the playback goroutine, so implementations
// must be safe for concurrent use.
type Observer interface {
	PlaybackEvent(e Event)
}

// Result summarizes one run.
type Result struct {
	Key      string `json:"scenario"`
	Title    string `json:"title"`
	Thoughts int    `json:"thoughts"`
	Messages int    `json:"messages"`
	Err      error  `json:"-"`
}
