package api

// Trigger button labels.
const (
	LabelStart       = "Start Simulation"
	LabelBusy        = "Simulating..."
	LabelAgain       = "Simulate Another Conversation"
	LabelUnavailable = "Simulation Unavailable"
)

// TriggerState is what the page's start button should show.
type TriggerState struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Trigger derives the button state from engine readiness, the busy flag and
// the number of completed runs.
func Trigger(ready, busy bool, completed int) TriggerState {
	switch {
	case !ready:
		return TriggerState{Label: LabelUnavailable}
	case busy:
		return TriggerState{Label: LabelBusy}
	case completed > 0:
		return TriggerState{Label: LabelAgain, Enabled: true}
	default:
		return TriggerState{Label: LabelStart, Enabled: true}
	}
}
