package response

import (
	"time"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
)

// Player represents a session member in API responses.
// Contact and access code are only filled in for hosts.
type Player struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	Contact     string    `json:"contact,omitempty"`
	AccessCode  string    `json:"access_code,omitempty"`
	Card        [5][5]int `json:"card"` // column-major, 0 is the free cell
	Online      bool      `json:"online"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player, reveal bool) Player {
	resp := Player{
		ID:          string(p.ID),
		SessionID:   string(p.SessionID),
		DisplayName: p.DisplayName,
		Online:      p.Online,
		JoinedAt:    p.CreatedAt,
	}
	for col := range p.Card {
		resp.Card[col] = p.Card[col]
	}
	if reveal {
		resp.Contact = p.Contact
		resp.AccessCode = p.AccessCode
	}
	return resp
}

// Session represents a full session snapshot
type Session struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	State       string     `json:"state"`
	Active      bool       `json:"active"`
	Strategy    string     `json:"strategy"`
	Winner      *string    `json:"winner"`
	Drawn       []int      `json:"drawn"`
	LastBall    *int       `json:"last_ball"`
	Remaining   int        `json:"remaining"`
	Players     []Player   `json:"players"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SessionFromModel converts model.Session. reveal includes player contacts
// and access codes.
func SessionFromModel(s *model.Session, reveal bool) Session {
	players := make([]Player, len(s.Players))
	for i := range s.Players {
		players[i] = PlayerFromModel(&s.Players[i], reveal)
	}

	drawn := make([]int, len(s.Pool.Drawn))
	copy(drawn, s.Pool.Drawn)

	var lastBall *int
	if len(drawn) > 0 {
		b := s.Pool.LastDrawn()
		lastBall = &b
	}

	return Session{
		ID:          string(s.ID),
		Name:        s.Name,
		ScheduledAt: optionalTime(s.ScheduledAt),
		State:       string(s.State()),
		Active:      s.Active,
		Strategy:    s.Strategy.String(),
		Winner:      optionalPlayerID(s.Winner),
		Drawn:       drawn,
		LastBall:    lastBall,
		Remaining:   len(s.Pool.Remaining),
		Players:     players,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionSummary is a session listing entry
type SessionSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PlayerCount int        `json:"player_count"`
	DrawnCount  int        `json:"drawn_count"`
	Active      bool       `json:"active"`
	Winner      *string    `json:"winner"`
}

// SessionSummaryFromModel converts model.SessionSummary
func SessionSummaryFromModel(s model.SessionSummary) SessionSummary {
	return SessionSummary{
		ID:          string(s.ID),
		Name:        s.Name,
		ScheduledAt: optionalTime(s.ScheduledAt),
		PlayerCount: s.PlayerCount,
		DrawnCount:  s.DrawnCount,
		Active:      s.Active,
		Winner:      optionalPlayerID(s.Winner),
	}
}

// SessionList is the response for listing sessions
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// DrawResponse is the response after drawing a ball
type DrawResponse struct {
	Ball    int     `json:"ball"`
	Session Session `json:"session"`
}

// ClaimResponse is the response to a bingo claim. A losing claim is
// won=false, not an error.
type ClaimResponse struct {
	Won     bool    `json:"won"`
	Session Session `json:"session"`
}

// PlayerResponse is the response for player endpoints
type PlayerResponse struct {
	Player  Player  `json:"player"`
	Session Session `json:"session"`
}

// Identity describes the authenticated caller
type Identity struct {
	Role        string `json:"role"`
	AdminID     string `json:"admin_id,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	DisplayName string `json:"display_name"`
}

// IdentityFromAuth converts auth.Identity
func IdentityFromAuth(i auth.Identity) Identity {
	return Identity{
		Role:        string(i.Role),
		AdminID:     string(i.AdminID),
		PlayerID:    string(i.PlayerID),
		SessionID:   string(i.SessionID),
		DisplayName: i.DisplayName,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromGrant creates an AuthResponse from a grant
func AuthResponseFromGrant(g *auth.Grant) AuthResponse {
	return AuthResponse{
		Identity:  IdentityFromAuth(g.Identity),
		Token:     g.Token,
		ExpiresAt: g.ExpiresAt,
	}
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalPlayerID(id *model.PlayerID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}
