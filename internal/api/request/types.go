package request

import "time"

// RegisterAdminRequest is the request body for registering a host
type RegisterAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for host login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PlayerLoginRequest is the request body for player login
type PlayerLoginRequest struct {
	SessionID  string `json:"session_id"`
	AccessCode string `json:"access_code"`
}

// CreateSessionRequest is the request body for creating a session.
// Strategy is a name such as "corners"; GameType is the numeric
// alternative (0 full card, 1 diagonal, 2 corners, 3 frame).
type CreateSessionRequest struct {
	Name        string     `json:"name"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Strategy    string     `json:"strategy,omitempty"`
	GameType    *int       `json:"game_type,omitempty"`
}

// UpdateSessionRequest is the request body for renaming or rescheduling
type UpdateSessionRequest struct {
	Name        string     `json:"name,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// SetStrategyRequest is the request body for changing the win strategy
type SetStrategyRequest struct {
	Strategy string `json:"strategy,omitempty"`
	GameType *int   `json:"game_type,omitempty"`
}

// AddPlayerRequest is the request body for adding a player
type AddPlayerRequest struct {
	DisplayName string `json:"display_name"`
	Contact     string `json:"contact"`
}

// ClaimRequest is the request body for a bingo claim. Players claim for
// themselves; hosts name the player.
type ClaimRequest struct {
	PlayerID string `json:"player_id,omitempty"`
}
