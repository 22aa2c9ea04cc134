// Package playback drives a scenario into the internal and external panes on
// a timed cadence. Only one run is in flight at a time.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/AaronLay10/InnerVoice/internal/random"
	"github.com/AaronLay10/InnerVoice/internal/scenario"
)

// ErrBusy is returned when a run is requested while another is in progress.
var ErrBusy = errors.New("playback already in progress")

// ThoughtSink receives internal thoughts.
type ThoughtSink interface {
	AppendThought(t scenario.Thought)
	Reset()
}

// MessageSink receives spoken lines.
type MessageSink interface {
	AppendMessage(speaker, text string)
	Reset()
}

// TypingSignal is the single-slot typing indicator. "" clears it.
type TypingSignal interface {
	SetTyping(speaker string)
}

// Options configures an Engine. The three sinks are required.
type Options struct {
	Internal ThoughtSink
	External MessageSink
	Typing   TypingSignal
	Observer Observer
	Picker   scenario.Picker
	Delays   Delays
	Sleeper  Sleeper
	Logger   *log.Logger
}

// Engine plays scenarios from a catalog.
type Engine struct {
	catalog  *scenario.Catalog
	internal ThoughtSink
	external MessageSink
	typing   TypingSignal
	observer Observer
	picker   scenario.Picker
	delays   Delays
	sleeper  Sleeper
	logger   *log.Logger

	busy      atomic.Bool
	mu        sync.RWMutex
	current   *scenario.Scenario
	completed int
}

// New creates an engine. An empty catalog or negative delay is a
// *scenario.ConfigurationError.
func New(catalog *scenario.Catalog, opts Options) (*Engine, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, &scenario.ConfigurationError{Problems: []string{"catalog has no scenarios"}}
	}
	if err := opts.Delays.Validate(); err != nil {
		return nil, err
	}
	if opts.Internal == nil || opts.External == nil || opts.Typing == nil {
		return nil, fmt.Errorf("playback: internal, external and typing sinks are required")
	}

	picker := opts.Picker
	if picker == nil {
		rng, err := random.New(0)
		if err != nil {
			return nil, err
		}
		picker = scenario.RandomPicker(rng)
	}
	sleeper := opts.Sleeper
	if sleeper == nil {
		sleeper = timerSleeper{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		catalog:  catalog,
		internal: opts.Internal,
		external: opts.External,
		typing:   opts.Typing,
		observer: opts.Observer,
		picker:   picker,
		delays:   opts.Delays,
		sleeper:  sleeper,
		logger:   logger,
	}, nil
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *scenario.Catalog {
	return e.catalog
}

// Busy reports whether a run is in progress.
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// Current returns the scenario being played, or nil when idle.
func (e *Engine) Current() *scenario.Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Completed returns the number of runs that played to the end.
func (e *Engine) Completed() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.completed
}

// Run plays a scenario chosen by the picker and blocks until it finishes.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	return e.RunScenario(ctx, "")
}

// RunScenario plays the scenario stored under key, or a picked one when key
// is empty, and blocks until it finishes.
func (e *Engine) RunScenario(ctx context.Context, key string) (Result, error) {
	s, err := e.begin(key)
	if err != nil {
		return Result{}, err
	}
	res := e.play(ctx, s)
	return res, res.Err
}

// Start begins a run in the background. The busy check and scenario
// selection happen before Start returns; the channel yields the result once.
func (e *Engine) Start(ctx context.Context, key string) (*scenario.Scenario, <-chan Result, error) {
	s, err := e.begin(key)
	if err != nil {
		return nil, nil, err
	}
	done := make(chan Result, 1)
	go func() {
		done <- e.play(ctx, s)
		close(done)
	}()
	return s, done, nil
}

func (e *Engine) begin(key string) (*scenario.Scenario, error) {
	if !e.busy.CompareAndSwap(false, true) {
		e.notify(Event{Type: EventRejected})
		return nil, ErrBusy
	}

	pick := e.picker
	if key != "" {
		pick = scenario.FixedPicker(key)
	}
	s, err := pick(e.catalog)
	if err != nil {
		e.busy.Store(false)
		return nil, err
	}

	e.mu.Lock()
	e.current = s
	e.mu.Unlock()
	return s, nil
}

func (e *Engine) play(ctx context.Context, s *scenario.Scenario) Result {
	res := Result{Key: s.Key, Title: s.Title}

	e.internal.Reset()
	e.external.Reset()
	e.notify(Event{Type: EventBanner, Scenario: s})
	e.notify(Event{Type: EventStarted, Scenario: s})
	e.logger.Printf("playback: started scenario=%s steps=%d", s.Key, len(s.Steps))

	for i, step := range s.Steps {
		for _, t := range step.Internal {
			if err := e.sleeper.Sleep(ctx, e.delays.Thought); err != nil {
				return e.finish(s, res, err)
			}
			e.internal.AppendThought(t)
			res.Thoughts++
		}

		e.typing.SetTyping(step.Speaker)
		err := e.sleeper.Sleep(ctx, e.delays.Typing)
		e.typing.SetTyping("")
		if err != nil {
			return e.finish(s, res, err)
		}

		e.external.AppendMessage(step.Speaker, step.Text)
		res.Messages++

		if i < len(s.Steps)-1 {
			if err := e.sleeper.Sleep(ctx, e.delays.TurnPause); err != nil {
				return e.finish(s, res, err)
			}
		}
	}

	return e.finish(s, res, nil)
}

// finish clears busy before notifying so observers see the engine idle.
func (e *Engine) finish(s *scenario.Scenario, res Result, err error) Result {
	res.Err = err

	e.mu.Lock()
	e.current = nil
	if err == nil {
		e.completed++
	}
	e.mu.Unlock()
	e.busy.Store(false)

	if err != nil {
		e.logger.Printf("playback: cancelled scenario=%s thoughts=%d messages=%d: %v", s.Key, res.Thoughts, res.Messages, err)
		e.notify(Event{Type: EventCancelled, Scenario: s, Result: res})
		return res
	}

	e.logger.Printf("playback: completed scenario=%s thoughts=%d messages=%d", s.Key, res.Thoughts, res.Messages)
	e.notify(Event{Type: EventCompleted, Scenario: s, Result: res})
	return res
}

func (e *Engine) notify(ev Event) {
	if e.observer != nil {
		e.observer.PlaybackEvent(ev)
	}
}
