package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrPasswordTooShort   = errors.New("password is too short")
)

const minPasswordLength = 8

// Role is what an authenticated caller is allowed to act as
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// Identity is the resolved caller behind a token
type Identity struct {
	Role        Role
	AdminID     model.AdminID   // set for admins
	PlayerID    model.PlayerID  // set for players
	SessionID   model.SessionID // session the player belongs to
	DisplayName string
}

// IsAdmin reports whether the caller is a host
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Grant is an issued bearer token and who it belongs to
type Grant struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles authentication and token management
type Service struct {
	storage storage.Storage
	clock   clock.Clock

	mu     sync.RWMutex
	grants map[string]*Grant

	tokenDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage:       storage,
		clock:         clock,
		grants:        make(map[string]*Grant),
		tokenDuration: cfg.TokenDuration,
	}
}

// RegisterAdmin creates a host account and logs it in
func (s *Service) RegisterAdmin(ctx context.Context, username, password string) (*Grant, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if username exists
	_, err := s.storage.GetAdminByUsername(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrAdminNotFound) {
		return nil, err
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	admin := &model.Admin{
		ID:           model.AdminID(s.generateID("a_")),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveAdmin(ctx, admin); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	return s.issue(adminIdentity(admin)), nil
}

// LoginAdmin authenticates a host by username and password
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (*Grant, error) {
	admin, err := s.storage.GetAdminByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(adminIdentity(admin)), nil
}

// LoginPlayer authenticates a player with the access code they were given
// when they joined the session
func (s *Service) LoginPlayer(ctx context.Context, sessionID model.SessionID, accessCode string) (*Grant, error) {
	player, err := s.storage.GetPlayerByAccessCode(ctx, sessionID, strings.TrimSpace(accessCode))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issue(Identity{
		Role:        RolePlayer,
		PlayerID:    player.ID,
		SessionID:   player.SessionID,
		DisplayName: player.DisplayName,
	}), nil
}

// ValidateToken checks a token is known and unexpired
func (s *Service) ValidateToken(token string) (*Grant, error) {
	s.mu.RLock()
	grant, ok := s.grants[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidToken
	}

	if s.clock.Now().After(grant.ExpiresAt) {
		s.mu.Lock()
		delete(s.grants, token)
		s.mu.Unlock()
		return nil, ErrInvalidToken
	}

	return grant, nil
}

// InvalidateToken removes a token
func (s *Service) InvalidateToken(token string) {
	s.mu.Lock()
	delete(s.grants, token)
	s.mu.Unlock()
}

// InvalidateSession drops every player token issued for a session
func (s *Service) InvalidateSession(sessionID model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, grant := range s.grants {
		if grant.Identity.Role == RolePlayer && grant.Identity.SessionID == sessionID {
			delete(s.grants, token)
		}
	}
}

// InvalidatePlayer drops every token issued to a player
func (s *Service) InvalidatePlayer(playerID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, grant := range s.grants {
		if grant.Identity.Role == RolePlayer && grant.Identity.PlayerID == playerID {
			delete(s.grants, token)
		}
	}
}

// CleanExpiredTokens removes expired tokens (call periodically)
func (s *Service) CleanExpiredTokens() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, grant := range s.grants {
		if now.After(grant.ExpiresAt) {
			delete(s.grants, token)
		}
	}
}

// RequireAdmin allows only hosts
func RequireAdmin(identity *Identity) error {
	if identity == nil {
		return model.ErrUnauthorized
	}
	if !identity.IsAdmin() {
		return model.ErrForbidden
	}
	return nil
}

// RequireMember allows hosts and players of the given session
func RequireMember(identity *Identity, sessionID model.SessionID) error {
	if identity == nil {
		return model.ErrUnauthorized
	}
	if identity.IsAdmin() || identity.SessionID == sessionID {
		return nil
	}
	return model.ErrForbidden
}

func adminIdentity(admin *model.Admin) Identity {
	return Identity{
		Role:        RoleAdmin,
		AdminID:     admin.ID,
		DisplayName: admin.Username,
	}
}

// issue creates a new token for an identity
func (s *Service) issue(identity Identity) *Grant {
	now := s.clock.Now()

	grant := &Grant{
		Token:     s.generateID("tok_"),
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenDuration),
	}

	s.mu.Lock()
	s.grants[grant.Token] = grant
	s.mu.Unlock()

	return grant
}

// generateID generates a random ID with a prefix
func (s *Service) generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
