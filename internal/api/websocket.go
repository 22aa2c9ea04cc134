package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/AaronLay10/InnerVoice/internal/events"
	"github.com/gorilla/websocket"
)

const (
	// Number of recent events to send on connection when no playback is on record
	recentEventsCount = 50

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// replayEvents picks what a newly connected client needs to rebuild the
// panes: everything since the most recent internal pane reset, or the tail
// of the buffer when no playback has started yet.
func replayEvents(snapshot []events.Event) []events.Event {
	for i := len(snapshot) - 1; i >= 0; i-- {
		e := snapshot[i]
		if e.Name == "pane.reset" && e.Fields["pane"] == "internal" {
			return snapshot[i:]
		}
	}
	if len(snapshot) > recentEventsCount {
		return snapshot[len(snapshot)-recentEventsCount:]
	}
	return snapshot
}

// wsEventsHandler streams bus events to a WebSocket client.
func (s *Server) wsEventsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: ws upgrade failed: %v", err)
		return
	}

	bus := s.opts.Bus
	sub := bus.Subscribe()

	// Events emitted between Subscribe and Snapshot arrive on both paths;
	// live events at or below lastSeq were already replayed.
	var lastSeq int64
	for _, e := range replayEvents(bus.Snapshot()) {
		lastSeq = e.Seq
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("api: ws write recent event failed: %v", err)
			bus.Unsubscribe(sub)
			conn.Close()
			return
		}
	}

	done := make(chan struct{})

	// Reader handles pongs and close frames.
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			bus.Unsubscribe(sub)
			conn.Close()
			return

		case e, ok := <-sub:
			if !ok {
				conn.Close()
				return
			}
			if e.Seq <= lastSeq {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("api: ws write event failed: %v", err)
				bus.Unsubscribe(sub)
				conn.Close()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				bus.Unsubscribe(sub)
				conn.Close()
				return
			}
		}
	}
}
