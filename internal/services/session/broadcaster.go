package session

import (
	"github.com/mcoot/bingogame-go/internal/model"
)

// Broadcaster delivers committed session events to connected clients.
// Publish must not block on slow subscribers.
type Broadcaster interface {
	Publish(sessionID model.SessionID, event model.Event)
}

// Fanout publishes every event to each of its broadcasters in order
type Fanout []Broadcaster

// Publish sends the event to every broadcaster
func (f Fanout) Publish(sessionID model.SessionID, event model.Event) {
	for _, b := range f {
		b.Publish(sessionID, event)
	}
}

var _ Broadcaster = Fanout(nil)
