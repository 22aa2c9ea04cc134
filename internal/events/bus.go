// Package events is the in-process event bus between the playback engine and
// the page. Events are kept in a ring buffer for late joiners and fanned out
// to subscribers without blocking the emitter.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is the number of recent events kept for replay.
const DefaultBufferSize = 256

type Event struct {
	Seq       int64                  `json:"seq"`
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Name      string                 `json:"event"`
	Message   string                 `json:"msg,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Subscriber represents a channel that receives events.
type Subscriber chan Event

// Bus manages the event buffer and its subscribers.
type Bus struct {
	buffer *RingBuffer
	seq    atomic.Int64

	mu          sync.RWMutex
	subscribers map[Subscriber]struct{}
}

// NewBus creates a bus that remembers the last size events.
func NewBus(size int) *Bus {
	return &Bus{
		buffer:      NewRingBuffer(size),
		subscribers: make(map[Subscriber]struct{}),
	}
}

// Emit validates, records and broadcasts an event. It returns the event JSON.
func (b *Bus) Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}

	e := Event{
		Seq:       b.seq.Add(1),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Name:      name,
		Message:   msg,
		Fields:    fields,
	}

	b.buffer.Add(e)
	b.broadcast(e)

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Subscribe adds a new subscriber and returns its channel.
// The channel has a buffer to prevent blocking on slow clients.
func (b *Bus) Subscribe() Subscriber {
	ch := make(Subscriber, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. It is a no-op for
// subscribers already removed.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub)
}

// CloseAll removes and closes every subscriber.
func (b *Bus) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = make(map[Subscriber]struct{})
}

// broadcast sends an event to all subscribers.
// Non-blocking: if a subscriber's buffer is full, the event is dropped for that subscriber.
func (b *Bus) broadcast(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- e:
		default:
		}
	}
}

// SubscriberCount returns the current number of subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Recent returns the last n events. n <= 0 returns everything buffered.
func (b *Bus) Recent(n int) []Event {
	all := b.buffer.Snapshot()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Snapshot returns every buffered event, oldest first.
func (b *Bus) Snapshot() []Event {
	return b.buffer.Snapshot()
}

// Total returns the number of events emitted since the bus was created.
func (b *Bus) Total() int64 {
	return b.seq.Load()
}

// Clear resets the event buffer. Used for testing.
func (b *Bus) Clear() {
	b.buffer.Clear()
}
