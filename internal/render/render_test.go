package render

import (
	"strings"
	"testing"

	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
)

func newTestRenderer() *Renderer {
	return New([2]string{"Partner", "ADHD Partner"})
}

func TestTreatmentKnownKind(t *testing.T) {
	tr := newTestRenderer().Treatment("tangent")
	if tr.Class != "thought-tangent" {
		t.Errorf("expected class thought-tangent, got %q", tr.Class)
	}
	if tr.Label != "tangent" {
		t.Errorf("expected label tangent, got %q", tr.Label)
	}
	if tr.Color != kindColors["tangent"] {
		t.Errorf("expected tangent color, got %q", tr.Color)
	}
}

func TestTreatmentUnknownKindFallsBack(t *testing.T) {
	r := newTestRenderer()

	tests := []struct {
		kind  string
		class string
		label string
	}{
		{"déjà vu", "thought-d-j-vu", "déjà vu"},
		{"Hyper Focus", "thought-hyper-focus", "Hyper Focus"},
		{"", "thought-default", "thought"},
		{"???", "thought-default", "???"},
	}

	for _, tt := range tests {
		tr := r.Treatment(tt.kind)
		if tr.Class != tt.class {
			t.Errorf("kind %q: expected class %q, got %q", tt.kind, tt.class, tr.Class)
		}
		if tr.Label != tt.label {
			t.Errorf("kind %q: expected label %q, got %q", tt.kind, tt.label, tr.Label)
		}
		if tr.Color != DefaultColor {
			t.Errorf("kind %q: expected default color, got %q", tt.kind, tr.Color)
		}
	}
}

func TestSetColorRejectsInvalidColor(t *testing.T) {
	r := newTestRenderer()
	r.SetColor("Hope", "#00ff00")
	r.SetColor("doubt", "red; background: url(x)")

	if got := r.Treatment("hope").Color; got != "#00ff00" {
		t.Errorf("expected override color, got %q", got)
	}
	if got := r.Treatment("doubt").Color; got != DefaultColor {
		t.Errorf("expected default color for invalid override, got %q", got)
	}
}

func TestThoughtEscapesText(t *testing.T) {
	html, err := newTestRenderer().Thought(scenario.Thought{
		Kind: `x" onclick="alert(1)`,
		Text: "<script>alert('hi')</script>",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("text not escaped: %s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("expected escaped script tag: %s", html)
	}
	if strings.Contains(html, `onclick="`) {
		t.Errorf("kind escaped into attribute: %s", html)
	}
	if !strings.Contains(html, `class="thought-label"`) {
		t.Errorf("missing label span: %s", html)
	}
}

func TestMessageSides(t *testing.T) {
	r := newTestRenderer()

	a, err := r.Message(sink.Message{Speaker: "Partner", Text: "Hi"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(a, "message partner-a") || !strings.Contains(a, "<strong>Partner:</strong><br>Hi") {
		t.Errorf("unexpected partner render: %s", a)
	}

	b, _ := r.Message(sink.Message{Speaker: "ADHD Partner", Text: "Uhhhh..."})
	if !strings.Contains(b, "message partner-b") {
		t.Errorf("unexpected ADHD partner render: %s", b)
	}
}

func TestMessageEscapesSpeaker(t *testing.T) {
	html, _ := newTestRenderer().Message(sink.Message{Speaker: "<b>Eve</b>", Text: "a & b"})
	if strings.Contains(html, "<b>Eve</b>") {
		t.Errorf("speaker not escaped: %s", html)
	}
	if !strings.Contains(html, "a &amp; b") {
		t.Errorf("text not escaped: %s", html)
	}
}
