package game

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/card"
	"github.com/mcoot/bingogame-go/internal/services/pattern"
)

const (
	idAlphabet         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength           = 12
	accessCodeAlphabet = "0123456789"
	accessCodeLength   = 4
	// attempts at a code not already used in the session
	maxAccessCodeAttempts = 20
	accessCodeSpace       = 10000 // every 4-digit code
)

// Engine applies the session state machine to a working copy of a session.
// It never touches storage; callers own persistence and serialization.
type Engine struct {
	cards  *card.Factory
	random random.Random
	clock  clock.Clock
	logger *slog.Logger
}

// NewEngine creates a new Engine
func NewEngine(cards *card.Factory, random random.Random, clock clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		cards:  cards,
		random: random,
		clock:  clock,
		logger: logger,
	}
}

// NewSession builds a fresh active session with a full pool and no players
func (e *Engine) NewSession(name string, scheduledAt time.Time, strategy model.WinStrategy) (*model.Session, error) {
	if !strategy.IsValid() {
		return nil, model.ErrInvalidStrategy
	}

	now := e.clock.Now()
	session := &model.Session{
		ID:          model.SessionID(e.random.String(idLength, idAlphabet)),
		Name:        name,
		ScheduledAt: scheduledAt,
		Players:     []model.Player{},
		Pool:        e.cards.NewPool(model.DefaultBallCount),
		Strategy:    strategy,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	e.logger.Info("session created",
		slog.String("session_id", string(session.ID)),
		slog.String("strategy", strategy.String()),
	)

	return session, nil
}

// DrawBall draws the next ball. The draw that empties the pool finishes
// the session without a winner and still returns the ball.
func (e *Engine) DrawBall(s *model.Session) (int, error) {
	if !s.Active {
		return 0, model.ErrSessionNotActive
	}

	ball, exhausted, err := s.Pool.DrawNext()
	if err != nil {
		// an active session with an empty pool only comes from bad stored data
		s.Active = false
		return 0, err
	}

	if exhausted {
		s.Active = false
		s.Winner = nil
		e.logger.Info("pool exhausted",
			slog.String("session_id", string(s.ID)),
			slog.Int("drawn", len(s.Pool.Drawn)),
		)
	}

	s.UpdatedAt = e.clock.Now()
	return ball, nil
}

// ClaimBingo checks the player's card against the drawn balls. A false
// result with a nil error is a normal losing claim and changes nothing.
func (e *Engine) ClaimBingo(s *model.Session, playerID model.PlayerID) (bool, error) {
	if !s.Active {
		return false, model.ErrSessionNotActive
	}

	player := s.GetPlayer(playerID)
	if player == nil {
		return false, model.ErrPlayerNotFound
	}

	won, err := pattern.CheckWin(s.Strategy, player.Card, s.Pool.DrawnSet())
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	winner := playerID
	s.Winner = &winner
	s.Active = false
	s.UpdatedAt = e.clock.Now()

	e.logger.Info("bingo",
		slog.String("session_id", string(s.ID)),
		slog.String("player_id", string(playerID)),
		slog.Int("drawn", len(s.Pool.Drawn)),
	)

	return true, nil
}

// Reset restarts the session with a fresh pool, keeping players and cards
func (e *Engine) Reset(s *model.Session) {
	s.Pool = e.cards.NewPool(model.DefaultBallCount)
	s.Winner = nil
	s.Active = true
	s.UpdatedAt = e.clock.Now()
}

// SetStrategy changes the pattern used by later claims
func (e *Engine) SetStrategy(s *model.Session, strategy model.WinStrategy) error {
	if !strategy.IsValid() {
		return model.ErrInvalidStrategy
	}
	s.Strategy = strategy
	s.UpdatedAt = e.clock.Now()
	return nil
}

// UpdateDetails renames or reschedules the session. Empty name and zero
// time leave the existing values.
func (e *Engine) UpdateDetails(s *model.Session, name string, scheduledAt time.Time) {
	if name != "" {
		s.Name = name
	}
	if !scheduledAt.IsZero() {
		s.ScheduledAt = scheduledAt
	}
	s.UpdatedAt = e.clock.Now()
}

// AddPlayer deals a new card to a player joining the session
func (e *Engine) AddPlayer(s *model.Session, name, contact string) (*model.Player, error) {
	if contact != "" && s.GetPlayerByContact(contact) != nil {
		return nil, model.ErrDuplicatePlayer
	}

	id := model.PlayerID(e.random.String(idLength, idAlphabet))
	code, err := e.accessCode(s)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	player := model.Player{
		ID:          id,
		SessionID:   s.ID,
		DisplayName: name,
		Contact:     contact,
		AccessCode:  code,
		Card:        e.cards.Build(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Players = append(s.Players, player)
	s.UpdatedAt = now

	e.logger.Info("player added",
		slog.String("session_id", string(s.ID)),
		slog.String("player_id", string(player.ID)),
	)

	return &player, nil
}

// accessCode picks a code no other member of the session holds. Random
// draws are tried first, then the code space is scanned in order.
func (e *Engine) accessCode(s *model.Session) (string, error) {
	taken := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		taken[p.AccessCode] = true
	}

	for i := 0; i < maxAccessCodeAttempts; i++ {
		code := e.random.String(accessCodeLength, accessCodeAlphabet)
		if !taken[code] {
			return code, nil
		}
	}
	for n := 0; n < accessCodeSpace; n++ {
		code := fmt.Sprintf("%0*d", accessCodeLength, n)
		if !taken[code] {
			return code, nil
		}
	}
	return "", model.ErrSessionFull
}

// RemovePlayer drops a member from the session. Removing a non-member is
// a no-op. Removing the winner clears the winner but the session stays
// finished.
func (e *Engine) RemovePlayer(s *model.Session, playerID model.PlayerID) bool {
	idx := -1
	for i, p := range s.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	s.Players = append(s.Players[:idx], s.Players[idx+1:]...)
	if s.IsWinner(playerID) {
		s.Winner = nil
	}
	s.UpdatedAt = e.clock.Now()

	e.logger.Info("player removed",
		slog.String("session_id", string(s.ID)),
		slog.String("player_id", string(playerID)),
	)

	return true
}

// ChangeCard deals the player a new card. Cards are locked once an
// active session has started drawing.
func (e *Engine) ChangeCard(s *model.Session, playerID model.PlayerID) (*model.Player, error) {
	player := s.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if s.Active && len(s.Pool.Drawn) > 0 {
		return nil, model.ErrCardLocked
	}

	now := e.clock.Now()
	player.Card = e.cards.Build()
	player.UpdatedAt = now
	s.UpdatedAt = now

	updated := *player
	return &updated, nil
}

// SetPresence records a connection opening or closing for a player. The
// player stays online while any connection remains. It reports whether
// anything changed.
func (e *Engine) SetPresence(s *model.Session, playerID model.PlayerID, online bool, connectionID string) (bool, error) {
	player := s.GetPlayer(playerID)
	if player == nil {
		return false, model.ErrPlayerNotFound
	}

	idx := slices.Index(player.Connections, connectionID)
	switch {
	case online && idx == -1:
		player.Connections = append(player.Connections, connectionID)
	case !online && idx != -1:
		player.Connections = slices.Delete(player.Connections, idx, idx+1)
	default:
		return false, nil
	}

	player.Online = len(player.Connections) > 0
	player.UpdatedAt = e.clock.Now()
	return true, nil
}
