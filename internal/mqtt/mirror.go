package mqtt

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/AaronLay10/InnerVoice/internal/events"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Source is the subset of the event bus the mirror reads from.
type Source interface {
	Subscribe() events.Subscriber
	Unsubscribe(sub events.Subscriber)
}

// Topic maps an event name onto the broker's topic tree:
// "thought.appended" under prefix "innervoice" becomes
// "innervoice/thought/appended".
func Topic(prefix, name string) string {
	tail := strings.ReplaceAll(name, ".", "/")
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return tail
	}
	return prefix + "/" + tail
}

// Mirror republishes every bus event to the broker until ctx is done or the
// subscription is closed. Publish failures are logged once per streak.
func Mirror(ctx context.Context, src Source, pub Publisher, prefix string) {
	sub := src.Subscribe()
	defer src.Unsubscribe(sub)

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if err := pub.Publish(Topic(prefix, e.Name), data); err != nil {
				if !failing {
					log.Printf("mqtt: publish %s failed: %v", e.Name, err)
					failing = true
				}
				continue
			}
			if failing {
				log.Printf("mqtt: publishing recovered")
				failing = false
			}
		}
	}
}
