package response

import (
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Event is the wire form of a published session event, shared by the SSE
// and WebSocket transports
type Event struct {
	Event     string    `json:"event"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// BallDrawn is the data for ball-drawn events
type BallDrawn struct {
	Ball       int `json:"ball"`
	DrawnCount int `json:"drawn_count"`
	Remaining  int `json:"remaining"`
}

// SessionFinished is the data for session-finished events
type SessionFinished struct {
	Winner *string `json:"winner"`
}

// PlayerRef is the data for events that only name a player
type PlayerRef struct {
	PlayerID string `json:"player_id"`
}

// BingoClaimed is the data for bingo-claimed events
type BingoClaimed struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Won         bool   `json:"won"`
}

// StrategyChanged is the data for strategy-changed events
type StrategyChanged struct {
	Strategy string `json:"strategy"`
}

// PresenceChanged is the data for presence-changed events
type PresenceChanged struct {
	PlayerID string `json:"player_id"`
	Online   bool   `json:"online"`
}

// EventFromModel converts a model.Event for broadcast. Events go to every
// subscriber of a session, so player secrets are never included.
func EventFromModel(e model.Event) Event {
	return Event{
		Event:     string(e.Type),
		SessionID: string(e.SessionID),
		Timestamp: e.Timestamp,
		Data:      eventData(e.Payload),
	}
}

func eventData(payload any) any {
	switch p := payload.(type) {
	case *model.Session:
		return SessionFromModel(p, false)
	case model.Player:
		return PlayerFromModel(&p, false)
	case model.BallDrawnPayload:
		return BallDrawn{Ball: p.Ball, DrawnCount: p.DrawnCount, Remaining: p.Remaining}
	case model.SessionFinishedPayload:
		return SessionFinished{Winner: optionalPlayerID(p.Winner)}
	case model.PlayerRemovedPayload:
		return PlayerRef{PlayerID: string(p.PlayerID)}
	case model.BingoClaimedPayload:
		return BingoClaimed{PlayerID: string(p.PlayerID), DisplayName: p.DisplayName, Won: p.Won}
	case model.StrategyChangedPayload:
		return StrategyChanged{Strategy: p.Strategy.String()}
	case model.PresenceChangedPayload:
		return PresenceChanged{PlayerID: string(p.PlayerID), Online: p.Online}
	case nil:
		return struct{}{}
	default:
		return p
	}
}
