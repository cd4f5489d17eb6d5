package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a participant holding a card in exactly one session
type Player struct {
	ID           PlayerID
	SessionID    SessionID
	DisplayName  string
	Contact      string // external identity, unique within a session
	AccessCode   string // short code the player logs in with
	Card         Card
	Online       bool
	Connections  []string // live connection IDs; Online while non-empty
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AdminID uniquely identifies a host account
type AdminID string

// Admin is a registered host allowed to manage sessions
// Password hash is never sent to clients
type Admin struct {
	ID           AdminID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
