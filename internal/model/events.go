package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSessionUpdated  EventType = "session-updated"
	EventBallDrawn       EventType = "ball-drawn"
	EventSessionFinished EventType = "session-finished"
	EventSessionReset    EventType = "session-reset"
	EventSessionDeleted  EventType = "session-deleted"
	EventPlayerJoined    EventType = "player-joined"
	EventPlayerRemoved   EventType = "player-removed"
	EventBingoClaimed    EventType = "bingo-claimed"
	EventCardChanged     EventType = "card-changed"
	EventStrategyChanged EventType = "strategy-changed"
	EventPresenceChanged EventType = "presence-changed"
)

// Event is published to every subscriber of a session
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	Payload   any // Type-specific data
}

// BallDrawnPayload contains data for ball drawn events
type BallDrawnPayload struct {
	Ball       int
	DrawnCount int
	Remaining  int
}

// SessionFinishedPayload contains data for session finished events
type SessionFinishedPayload struct {
	Winner *PlayerID // nil when the pool ran out
}

// PlayerRemovedPayload contains data for player removed events
type PlayerRemovedPayload struct {
	PlayerID PlayerID
}

// BingoClaimedPayload contains data for bingo claim events
type BingoClaimedPayload struct {
	PlayerID    PlayerID
	DisplayName string
	Won         bool
}

// StrategyChangedPayload contains data for strategy changed events
type StrategyChangedPayload struct {
	Strategy WinStrategy
}

// PresenceChangedPayload contains data for presence events
type PresenceChangedPayload struct {
	PlayerID PlayerID
	Online   bool
}
