package model

import (
	"slices"
	"time"
)

// SessionID uniquely identifies a game session
type SessionID string

// SessionState is the derived lifecycle phase of a session
type SessionState string

const (
	SessionStateIdle     SessionState = "idle"     // active, nothing drawn yet
	SessionStateActive   SessionState = "active"   // active, balls drawn
	SessionStateFinished SessionState = "finished" // winner declared or pool empty
)

// Session is one running bingo game: its players, ball pool and outcome
type Session struct {
	ID          SessionID
	Name        string
	ScheduledAt time.Time
	Players     []Player // join order
	Pool        BallPool
	Strategy    WinStrategy
	Winner      *PlayerID
	Active      bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// State returns the lifecycle phase of the session
func (s *Session) State() SessionState {
	switch {
	case !s.Active:
		return SessionStateFinished
	case len(s.Pool.Drawn) == 0:
		return SessionStateIdle
	default:
		return SessionStateActive
	}
}

// GetPlayer returns the player with the given ID, or nil if not a member
func (s *Session) GetPlayer(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// GetPlayerByContact returns the member with the given contact, or nil
func (s *Session) GetPlayerByContact(contact string) *Player {
	for i := range s.Players {
		if s.Players[i].Contact == contact {
			return &s.Players[i]
		}
	}
	return nil
}

// IsWinner reports whether the given player is the recorded winner
func (s *Session) IsWinner(id PlayerID) bool {
	return s.Winner != nil && *s.Winner == id
}

// OnlineCount returns the number of players currently connected
func (s *Session) OnlineCount() int {
	count := 0
	for _, p := range s.Players {
		if p.Online {
			count++
		}
	}
	return count
}

// Clone returns a deep copy that can be mutated without affecting s
func (s *Session) Clone() *Session {
	c := *s
	c.Players = slices.Clone(s.Players)
	for i := range c.Players {
		c.Players[i].Connections = slices.Clone(s.Players[i].Connections)
	}
	c.Pool = s.Pool.Clone()
	if s.Winner != nil {
		w := *s.Winner
		c.Winner = &w
	}
	return &c
}

// SessionSummary is a lightweight listing entry
type SessionSummary struct {
	ID          SessionID
	Name        string
	ScheduledAt time.Time
	PlayerCount int
	DrawnCount  int
	Active      bool
	Winner      *PlayerID
}

// Summary returns the listing entry for the session
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:          s.ID,
		Name:        s.Name,
		ScheduledAt: s.ScheduledAt,
		PlayerCount: len(s.Players),
		DrawnCount:  len(s.Pool.Drawn),
		Active:      s.Active,
		Winner:      s.Winner,
	}
}
