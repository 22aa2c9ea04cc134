// Package render turns thoughts and messages into escaped HTML fragments for
// the two panes. Presentation lives here so the playback engine only deals in
// structured values.
package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"

	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
)

// Treatment is how one thought kind is displayed.
type Treatment struct {
	Class string `json:"class"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// DefaultColor is used for kinds without a configured color.
const DefaultColor = "#94a3b8"

var kindColors = map[string]string{
	"processing":  "#60a5fa",
	"analysis":    "#38bdf8",
	"intended":    "#34d399",
	"focus":       "#34d399",
	"emotion":     "#f472b6",
	"shame":       "#f472b6",
	"regret":      "#f472b6",
	"distraction": "#fbbf24",
	"tangent":     "#fbbf24",
	"association": "#fbbf24",
	"shock":       "#f87171",
	"panic":       "#f87171",
	"rejection":   "#f87171",
	"overwhelm":   "#fb923c",
	"freeze":      "#a5b4fc",
	"memory":      "#a78bfa",
	"confusion":   "#a78bfa",
	"defense":     "#c084fc",
	"reality":     "#e879f9",
	"exhaustion":  "#9ca3af",
	"withdrawal":  "#9ca3af",
}

var (
	unsafeClassChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hexColor         = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)
)

var thoughtTmpl = template.Must(template.New("thought").Parse(
	`<div class="internal-monologue"><div class="thought {{.Class}}" style="{{.Style}}">` +
		`<span class="thought-label">&gt;&gt; {{.Label}}</span>` +
		`<span class="thought-text">{{.Text}}</span></div></div>`))

var messageTmpl = template.Must(template.New("message").Parse(
	`<div class="message {{.Side}}"><strong>{{.Speaker}}:</strong><br>{{.Text}}</div>`))

// Renderer maps thought kinds to treatments and renders pane entries.
type Renderer struct {
	roles  [2]string
	colors map[string]string
}

// New creates a renderer. Messages from roles[0] render on side partner-a,
// everyone else on partner-b.
func New(roles [2]string) *Renderer {
	colors := make(map[string]string, len(kindColors))
	for k, v := range kindColors {
		colors[k] = v
	}
	return &Renderer{roles: roles, colors: colors}
}

// SetColor overrides the color for a kind. Invalid colors fall back to
// DefaultColor at render time.
func (r *Renderer) SetColor(kind, color string) {
	r.colors[strings.ToLower(kind)] = color
}

// Treatment returns the display treatment for kind. Unknown kinds get the
// default color; they never fail.
func (r *Renderer) Treatment(kind string) Treatment {
	label := strings.TrimSpace(kind)
	if label == "" {
		label = "thought"
	}

	slug := strings.Trim(unsafeClassChars.ReplaceAllString(strings.ToLower(label), "-"), "-")
	if slug == "" {
		slug = "default"
	}

	color, ok := r.colors[strings.ToLower(label)]
	if !ok || !hexColor.MatchString(color) {
		color = DefaultColor
	}

	return Treatment{Class: "thought-" + slug, Label: label, Color: color}
}

// Side returns the CSS side class for speaker.
func (r *Renderer) Side(speaker string) string {
	if speaker == r.roles[0] {
		return "partner-a"
	}
	return "partner-b"
}

// Thought renders one internal-pane entry.
func (r *Renderer) Thought(t scenario.Thought) (string, error) {
	tr := r.Treatment(t.Kind)
	var buf bytes.Buffer
	err := thoughtTmpl.Execute(&buf, struct {
		Class string
		Style template.CSS
		Label string
		Text  string
	}{
		Class: tr.Class,
		// Color is validated against hexColor above.
		Style: template.CSS("--thought-color: " + tr.Color),
		Label: tr.Label,
		Text:  t.Text,
	})
	return buf.String(), err
}

// Message renders one external-pane entry.
func (r *Renderer) Message(m sink.Message) (string, error) {
	var buf bytes.Buffer
	err := messageTmpl.Execute(&buf, struct {
		Side    string
		Speaker string
		Text    string
	}{r.Side(m.Speaker), m.Speaker, m.Text})
	return buf.String(), err
}
