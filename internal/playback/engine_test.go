package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
)

var instant = SleeperFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })

type recordingObserver struct {
	mu     sync.Mutex
	events []Event
	onEvt  func(Event)
}

func (o *recordingObserver) PlaybackEvent(e Event) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
	if o.onEvt != nil {
		o.onEvt(e)
	}
}

func (o *recordingObserver) types() []EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]EventType, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	engine   *Engine
	internal *sink.Internal
	external *sink.External
	typing   *sink.Typing
	observer *recordingObserver
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	catalog, err := scenario.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	f := &fixture{
		internal: sink.NewInternal(nil),
		external: sink.NewExternal(nil),
		typing:   sink.NewTyping(nil),
		observer: &recordingObserver{},
	}
	opts.Internal = f.internal
	opts.External = f.external
	opts.Typing = f.typing
	opts.Observer = f.observer
	if opts.Sleeper == nil {
		opts.Sleeper = instant
	}
	opts.Logger = log.New(io.Discard, "", 0)

	f.engine, err = New(catalog, opts)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return f
}

func TestDinnerPlansEndToEnd(t *testing.T) {
	f := newFixture(t, Options{Picker: scenario.FixedPicker("dinner"), Delays: DefaultDelays()})

	res, err := f.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{
		"Partner: Where do you want to go for dinner? Italian or Mexican?",
		"ADHD Partner: Uhhhh...",
		"Partner: It's a simple question.",
		"ADHD Partner: I don't know! You decide! Why is this always on me?!",
	}
	got := f.external.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, m := range got {
		if line := fmt.Sprintf("%s: %s", m.Speaker, m.Text); line != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], line)
		}
	}

	if f.internal.Len() != 8 {
		t.Errorf("expected 8 internal entries, got %d", f.internal.Len())
	}
	if res.Key != "dinner" || res.Thoughts != 8 || res.Messages != 4 {
		t.Errorf("unexpected result: %+v", res)
	}
	if f.engine.Busy() {
		t.Error("expected engine idle after run")
	}
	if f.engine.Completed() != 1 {
		t.Errorf("expected 1 completed run, got %d", f.engine.Completed())
	}
}

func TestRunCountsMatchEveryScenario(t *testing.T) {
	f := newFixture(t, Options{})

	for _, s := range f.engine.Catalog().All() {
		t.Run(s.Key, func(t *testing.T) {
			if _, err := f.engine.RunScenario(context.Background(), s.Key); err != nil {
				t.Fatalf("run %s: %v", s.Key, err)
			}
			if f.external.Len() != len(s.Steps) {
				t.Errorf("expected %d messages, got %d", len(s.Steps), f.external.Len())
			}
			if f.internal.Len() != s.ThoughtCount() {
				t.Errorf("expected %d thoughts, got %d", s.ThoughtCount(), f.internal.Len())
			}
		})
	}
}

func TestThoughtOrderPreserved(t *testing.T) {
	f := newFixture(t, Options{})

	for _, s := range f.engine.Catalog().All() {
		if _, err := f.engine.RunScenario(context.Background(), s.Key); err != nil {
			t.Fatalf("run %s: %v", s.Key, err)
		}

		var want []scenario.Thought
		for _, step := range s.Steps {
			want = append(want, step.Internal...)
		}
		got := f.internal.Entries()
		if len(got) != len(want) {
			t.Fatalf("%s: expected %d thoughts, got %d", s.Key, len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s thought %d: expected %+v, got %+v", s.Key, i, want[i], got[i])
			}
		}
	}
}

func TestDelayPlacement(t *testing.T) {
	delays := Delays{Thought: 1, Typing: 2, TurnPause: 3}
	var slept []time.Duration
	sleeper := SleeperFunc(func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})
	f := newFixture(t, Options{Delays: delays, Sleeper: sleeper})

	if _, err := f.engine.RunScenario(context.Background(), "dinner"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []time.Duration{
		1, 1, 2, 3,
		1, 1, 2, 3,
		1, 1, 2, 3,
		1, 1, 2,
	}
	if len(slept) != len(want) {
		t.Fatalf("expected %d suspensions, got %d: %v", len(want), len(slept), slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("suspension %d: expected %d, got %d", i, want[i], slept[i])
		}
	}
}

func TestTypingSignalDuringTypingDelay(t *testing.T) {
	delays := Delays{Thought: 1, Typing: 2, TurnPause: 3}
	var f *fixture
	var during []string
	sleeper := SleeperFunc(func(ctx context.Context, d time.Duration) error {
		typing := f.typing.Typing()
		if d == delays.Typing {
			during = append(during, typing)
		} else if typing != "" {
			t.Errorf("typing %q outside typing delay", typing)
		}
		return nil
	})
	f = newFixture(t, Options{Delays: delays, Sleeper: sleeper})

	s, _ := f.engine.Catalog().Get("story")
	if _, err := f.engine.RunScenario(context.Background(), "story"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(during) != len(s.Steps) {
		t.Fatalf("expected %d typing delays, got %d", len(s.Steps), len(during))
	}
	for i, step := range s.Steps {
		if during[i] != step.Speaker {
			t.Errorf("step %d: expected %q typing, got %q", i, step.Speaker, during[i])
		}
	}
	if f.typing.Typing() != "" {
		t.Errorf("expected typing cleared after run, got %q", f.typing.Typing())
	}
}

func TestRunWhileBusyIsRejected(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	sleeper := SleeperFunc(func(ctx context.Context, d time.Duration) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	f := newFixture(t, Options{Sleeper: sleeper})

	_, done, err := f.engine.Start(context.Background(), "laundry")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	<-entered

	if !f.engine.Busy() {
		t.Fatal("expected engine busy")
	}
	beforeIn, beforeEx := f.internal.Len(), f.external.Len()

	if _, err := f.engine.Run(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, _, err := f.engine.Start(context.Background(), ""); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy from Start, got %v", err)
	}

	if f.internal.Len() != beforeIn || f.external.Len() != beforeEx {
		t.Errorf("rejected run changed sinks: %d/%d -> %d/%d", beforeIn, beforeEx, f.internal.Len(), f.external.Len())
	}
	if cur := f.engine.Current(); cur == nil || cur.Key != "laundry" {
		t.Errorf("expected laundry still playing, got %v", cur)
	}

	close(release)
	res := <-done
	if res.Err != nil {
		t.Fatalf("run failed: %v", res.Err)
	}
	if res.Messages != 4 {
		t.Errorf("expected 4 messages, got %d", res.Messages)
	}
	if f.engine.Busy() {
		t.Error("expected engine idle")
	}

	rejected := 0
	for _, typ := range f.observer.types() {
		if typ == EventRejected {
			rejected++
		}
	}
	if rejected != 2 {
		t.Errorf("expected 2 rejected events, got %d", rejected)
	}
}

func TestCancelLeavesConsistentState(t *testing.T) {
	delays := Delays{Thought: 1, Typing: 2, TurnPause: 3}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	typingDelays := 0
	sleeper := SleeperFunc(func(ctx context.Context, d time.Duration) error {
		if d == delays.Typing {
			typingDelays++
			if typingDelays == 2 {
				cancel()
			}
		}
		return ctx.Err()
	})
	f := newFixture(t, Options{Delays: delays, Sleeper: sleeper})

	res, err := f.engine.RunScenario(ctx, "dinner")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Messages != 1 || res.Thoughts != 4 {
		t.Errorf("unexpected partial result: %+v", res)
	}
	if f.external.Len() != 1 || f.internal.Len() != 4 {
		t.Errorf("unexpected sink sizes %d/%d", f.internal.Len(), f.external.Len())
	}
	if f.typing.Typing() != "" {
		t.Errorf("expected typing cleared, got %q", f.typing.Typing())
	}
	if f.engine.Busy() {
		t.Error("expected busy cleared after cancel")
	}
	if f.engine.Completed() != 0 {
		t.Errorf("cancelled run counted as completed")
	}

	types := f.observer.types()
	if types[len(types)-1] != EventCancelled {
		t.Errorf("expected last event cancelled, got %v", types)
	}

	if _, err := f.engine.RunScenario(context.Background(), "dinner"); err != nil {
		t.Fatalf("run after cancel failed: %v", err)
	}
}

func TestObserverSeesLifecycleInOrder(t *testing.T) {
	f := newFixture(t, Options{})
	f.observer.onEvt = func(e Event) {
		if e.Type == EventCompleted && f.engine.Busy() {
			t.Error("engine still busy when completion was signalled")
		}
		if e.Type == EventStarted && !f.engine.Busy() {
			t.Error("engine not busy when start was signalled")
		}
	}

	if _, err := f.engine.RunScenario(context.Background(), "story"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	types := f.observer.types()
	want := []EventType{EventBanner, EventStarted, EventCompleted}
	if len(types) != len(want) {
		t.Fatalf("expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
	if f.observer.events[0].Scenario.Title != "Telling a Story" {
		t.Errorf("unexpected banner title %q", f.observer.events[0].Scenario.Title)
	}
}

func TestRunResetsSinks(t *testing.T) {
	f := newFixture(t, Options{})
	f.internal.AppendThought(scenario.Thought{Kind: "stale", Text: "old"})
	f.external.AppendMessage("Partner", "old")

	if _, err := f.engine.RunScenario(context.Background(), "story"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if f.internal.Entries()[0].Kind == "stale" || f.external.Entries()[0].Text == "old" {
		t.Error("sinks were not reset before playback")
	}
}

func TestUnknownScenarioDoesNotStayBusy(t *testing.T) {
	f := newFixture(t, Options{})

	if _, _, err := f.engine.Start(context.Background(), "brunch"); !errors.Is(err, scenario.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.engine.Busy() {
		t.Error("engine left busy after failed pick")
	}
}

func TestNewValidation(t *testing.T) {
	catalog, _ := scenario.Default()
	sinks := Options{
		Internal: sink.NewInternal(nil),
		External: sink.NewExternal(nil),
		Typing:   sink.NewTyping(nil),
	}

	var cfgErr *scenario.ConfigurationError
	if _, err := New(nil, sinks); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for nil catalog, got %v", err)
	}

	bad := sinks
	bad.Delays = Delays{Thought: -1}
	if _, err := New(catalog, bad); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for negative delay, got %v", err)
	}

	if _, err := New(catalog, Options{}); err == nil {
		t.Error("expected error for missing sinks")
	}

	if _, err := New(catalog, sinks); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimerSleeper(t *testing.T) {
	s := timerSleeper{}
	if err := s.Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
