package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Values are copied on the way in and out so callers never share state
// with the store.
type Storage struct {
	mu sync.RWMutex

	sessions        map[model.SessionID]*model.Session
	players         map[model.PlayerID]*model.Player
	accessCodeIndex map[accessCodeKey]model.PlayerID
	admins          map[model.AdminID]*model.Admin
	usernameIndex   map[string]model.AdminID
}

type accessCodeKey struct {
	sessionID model.SessionID
	code      string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:        make(map[model.SessionID]*model.Session),
		players:         make(map[model.PlayerID]*model.Player),
		accessCodeIndex: make(map[accessCodeKey]model.PlayerID),
		admins:          make(map[model.AdminID]*model.Admin),
		usernameIndex:   make(map[string]model.AdminID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sessions[session.ID]
	switch {
	case !ok && expectedVersion != 0:
		return model.ErrSessionNotFound
	case ok && existing.Version != expectedVersion:
		return storage.ErrConflict
	}

	session.Version = expectedVersion + 1

	if existing != nil {
		s.dropPlayers(existing)
	}
	stored := session.Clone()
	s.sessions[session.ID] = stored
	for i := range stored.Players {
		p := stored.Players[i]
		s.players[p.ID] = &p
		s.accessCodeIndex[accessCodeKey{sessionID: session.ID, code: p.AccessCode}] = p.ID
	}
	return nil
}

// dropPlayers removes the player records and index entries for session.
// Caller must hold the write lock.
func (s *Storage) dropPlayers(session *model.Session) {
	for _, p := range session.Players {
		delete(s.players, p.ID)
		delete(s.accessCodeIndex, accessCodeKey{sessionID: session.ID, code: p.AccessCode})
	}
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return model.ErrSessionNotFound
	}
	s.dropPlayers(session)
	delete(s.sessions, id)
	return nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}
	slices.SortFunc(sessions, func(a, b *model.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sessions, nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

func (s *Storage) GetPlayerByAccessCode(ctx context.Context, sessionID model.SessionID, code string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.accessCodeIndex[accessCodeKey{sessionID: sessionID, code: code}]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	p := *player
	return &p, nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.usernameIndex[admin.Username]; ok && owner != admin.ID {
		return model.ErrUsernameTaken
	}
	a := *admin
	s.admins[admin.ID] = &a
	s.usernameIndex[admin.Username] = admin.ID
	return nil
}

func (s *Storage) GetAdmin(ctx context.Context, id model.AdminID) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[id]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	a := *admin
	return &a, nil
}

func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adminID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	admin, ok := s.admins[adminID]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	a := *admin
	return &a, nil
}
