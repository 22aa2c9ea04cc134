// Package sink holds the append-only output logs written during playback:
// the internal monologue pane, the external conversation pane and the
// single-slot typing indicator.
package sink

import (
	"sync"

	"github.com/AaronLay10/InnerVoice/internal/scenario"
)

// Pane identifies one of the two output logs.
type Pane string

const (
	PaneInternal Pane = "internal"
	PaneExternal Pane = "external"
)

// Message is one spoken line in the external pane.
type Message struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Listener observes sink changes. Calls happen after the change is applied,
// on the goroutine that made it.
type Listener interface {
	ThoughtAppended(seq int, t scenario.Thought)
	MessageAppended(seq int, m Message)
	PaneReset(p Pane)
	TypingChanged(speaker string)
}

// Internal is the append-only log of internal thoughts.
type Internal struct {
	mu       sync.RWMutex
	entries  []scenario.Thought
	listener Listener
}

// NewInternal creates an internal log. listener may be nil.
func NewInternal(listener Listener) *Internal {
	return &Internal{listener: listener}
}

// AppendThought adds a thought to the end of the log.
func (s *Internal) AppendThought(t scenario.Thought) {
	s.mu.Lock()
	s.entries = append(s.entries, t)
	seq := len(s.entries)
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.ThoughtAppended(seq, t)
	}
}

// Reset empties the log.
func (s *Internal) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.PaneReset(PaneInternal)
	}
}

// Len returns the number of entries.
func (s *Internal) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the log.
func (s *Internal) Entries() []scenario.Thought {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]scenario.Thought{}, s.entries...)
}

// External is the append-only log of spoken messages.
type External struct {
	mu       sync.RWMutex
	entries  []Message
	listener Listener
}

// NewExternal creates an external log. listener may be nil.
func NewExternal(listener Listener) *External {
	return &External{listener: listener}
}

// AppendMessage adds a spoken line to the end of the log.
func (s *External) AppendMessage(speaker, text string) {
	m := Message{Speaker: speaker, Text: text}

	s.mu.Lock()
	s.entries = append(s.entries, m)
	seq := len(s.entries)
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.MessageAppended(seq, m)
	}
}

// Reset empties the log.
func (s *External) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.PaneReset(PaneExternal)
	}
}

// Len returns the number of entries.
func (s *External) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the log.
func (s *External) Entries() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message{}, s.entries...)
}

// Typing is a single-slot signal naming the speaker currently composing a
// message. The empty string means nobody is typing.
type Typing struct {
	mu       sync.RWMutex
	speaker  string
	listener Listener
}

// NewTyping creates an empty typing slot. listener may be nil.
func NewTyping(listener Listener) *Typing {
	return &Typing{listener: listener}
}

// SetTyping replaces the slot. Pass "" to clear it.
func (t *Typing) SetTyping(speaker string) {
	t.mu.Lock()
	changed := t.speaker != speaker
	t.speaker = speaker
	t.mu.Unlock()

	if changed && t.listener != nil {
		t.listener.TypingChanged(speaker)
	}
}

// Typing returns the current speaker, or "" when the slot is clear.
func (t *Typing) Typing() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.speaker
}
