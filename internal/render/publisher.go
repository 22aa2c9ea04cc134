package render

import (
	"log"

	"github.com/AaronLay10/InnerVoice/internal/playback"
	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
)

// Emitter is the subset of the event bus the publisher needs.
type Emitter interface {
	Emit(level, name, msg string, fields map[string]interface{}) ([]byte, error)
}

// Publisher forwards sink changes and engine lifecycle events to the bus,
// attaching rendered HTML for the page.
type Publisher struct {
	bus      Emitter
	renderer *Renderer
}

// NewPublisher creates a publisher.
func NewPublisher(bus Emitter, renderer *Renderer) *Publisher {
	return &Publisher{bus: bus, renderer: renderer}
}

func (p *Publisher) ThoughtAppended(seq int, t scenario.Thought) {
	html, err := p.renderer.Thought(t)
	if err != nil {
		p.emit("error", "system.error", "render thought failed", map[string]interface{}{"error": err.Error()})
		return
	}
	tr := p.renderer.Treatment(t.Kind)
	p.emit("info", "thought.appended", "", map[string]interface{}{
		"pane":  string(sink.PaneInternal),
		"seq":   seq,
		"kind":  t.Kind,
		"text":  t.Text,
		"label": tr.Label,
		"class": tr.Class,
		"color": tr.Color,
		"html":  html,
	})
}

func (p *Publisher) MessageAppended(seq int, m sink.Message) {
	html, err := p.renderer.Message(m)
	if err != nil {
		p.emit("error", "system.error", "render message failed", map[string]interface{}{"error": err.Error()})
		return
	}
	p.emit("info", "message.appended", "", map[string]interface{}{
		"pane":    string(sink.PaneExternal),
		"seq":     seq,
		"speaker": m.Speaker,
		"text":    m.Text,
		"side":    p.renderer.Side(m.Speaker),
		"html":    html,
	})
}

func (p *Publisher) PaneReset(pane sink.Pane) {
	p.emit("info", "pane.reset", "", map[string]interface{}{"pane": string(pane)})
}

func (p *Publisher) TypingChanged(speaker string) {
	msg := ""
	if speaker != "" {
		msg = speaker + " is typing..."
	}
	p.emit("info", "typing.changed", msg, map[string]interface{}{
		"speaker": speaker,
		"typing":  speaker != "",
	})
}

func (p *Publisher) PlaybackEvent(e playback.Event) {
	switch e.Type {
	case playback.EventBanner:
		p.emit("info", "scenario.banner", "now playing: "+e.Scenario.Title, map[string]interface{}{
			"scenario": e.Scenario.Key,
			"title":    e.Scenario.Title,
			"banner":   "Scenario: " + e.Scenario.Title,
		})
	case playback.EventStarted:
		p.emit("info", "playback.started", "", map[string]interface{}{
			"scenario": e.Scenario.Key,
			"title":    e.Scenario.Title,
			"steps":    len(e.Scenario.Steps),
		})
	case playback.EventCompleted:
		p.emit("info", "playback.completed", "", resultFields(e.Result))
	case playback.EventCancelled:
		fields := resultFields(e.Result)
		if e.Result.Err != nil {
			fields["error"] = e.Result.Err.Error()
		}
		p.emit("warn", "playback.cancelled", "", fields)
	case playback.EventRejected:
		p.emit("warn", "playback.rejected", playback.ErrBusy.Error(), nil)
	}
}

func resultFields(r playback.Result) map[string]interface{} {
	return map[string]interface{}{
		"scenario": r.Key,
		"title":    r.Title,
		"thoughts": r.Thoughts,
		"messages": r.Messages,
	}
}

func (p *Publisher) emit(level, name, msg string, fields map[string]interface{}) {
	if _, err := p.bus.Emit(level, name, msg, fields); err != nil {
		log.Printf("render: emit %s failed: %v", name, err)
	}
}
