package storage

import (
	"context"
	"errors"

	"github.com/mcoot/bingogame-go/internal/model"
)

// ErrConflict is returned when a session was changed by another writer
// since the version the caller read
var ErrConflict = errors.New("session was modified concurrently")

// Storage defines the interface for data persistence
type Storage interface {
	// Session operations

	// SaveSession writes the session if the stored version equals
	// expectedVersion (0 for a session that must not exist yet), then sets
	// session.Version to expectedVersion+1. The session's player records
	// and access-code index are written with it; records for players no
	// longer in the session are removed.
	SaveSession(ctx context.Context, session *model.Session, expectedVersion int64) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	// DeleteSession removes the session and every player record in it
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// Player operations, kept in step with SaveSession
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByAccessCode(ctx context.Context, sessionID model.SessionID, code string) (*model.Player, error)

	// Admin operations
	// SaveAdmin returns model.ErrUsernameTaken if another admin owns the username
	SaveAdmin(ctx context.Context, admin *model.Admin) error
	GetAdmin(ctx context.Context, id model.AdminID) (*model.Admin, error)
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}

// Pinger is implemented by storage backends that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}
