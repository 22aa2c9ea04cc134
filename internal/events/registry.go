package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// playback
	"playback.started":   {},
	"playback.completed": {},
	"playback.cancelled": {},
	"playback.rejected":  {},
	"scenario.banner":    {},

	// panes
	"pane.reset":       {},
	"thought.appended": {},
	"message.appended": {},
	"typing.changed":   {},

	// catalog
	"catalog.loaded":  {},
	"catalog.invalid": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
