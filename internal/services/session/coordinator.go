package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/game"
	"github.com/mcoot/bingogame-go/internal/storage"
)

// ErrClosed is returned for commands issued after Close
var ErrClosed = errors.New("session coordinator closed")

// Config holds configuration for the coordinator
type Config struct {
	// IdleTimeout stops a session's actor after this long without commands.
	// The next command starts a fresh one from storage.
	IdleTimeout time.Duration
}

// DefaultConfig returns default coordinator configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 10 * time.Minute,
	}
}

// Coordinator serializes every mutation of a session through a single
// actor goroutine per session. Reads are served from the last committed
// snapshot without entering the actor.
type Coordinator struct {
	storage     storage.Storage
	engine      *game.Engine
	broadcaster Broadcaster
	clock       clock.Clock
	logger      *slog.Logger
	idleTimeout time.Duration

	mu     sync.Mutex
	actors map[model.SessionID]*actor
	closed bool
	wg     sync.WaitGroup
}

// actor owns one session. mailbox is unbuffered: a command is either
// still waiting for the actor or has been handed over and will be applied.
type actor struct {
	id       model.SessionID
	mailbox  chan command
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	// committed is nil until loaded and after a failed save
	committed atomic.Pointer[model.Session]
}

// mutation applies a command to a working copy. It returns the events to
// publish on commit and whether the copy needs saving at all.
type mutation func(s *model.Session) (events []model.Event, dirty bool, err error)

type command struct {
	ctx    context.Context
	apply  mutation
	delete bool
	reply  chan result
}

type result struct {
	session *model.Session
	err     error
}

// New creates a new Coordinator
func New(
	storage storage.Storage,
	engine *game.Engine,
	broadcaster Broadcaster,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Coordinator {
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if broadcaster == nil {
		broadcaster = Fanout(nil)
	}
	return &Coordinator{
		storage:     storage,
		engine:      engine,
		broadcaster: broadcaster,
		clock:       clock,
		logger:      logger.With(slog.String("component", "session-coordinator")),
		idleTimeout: cfg.IdleTimeout,
		actors:      make(map[model.SessionID]*actor),
	}
}

// CreateSession starts a new session with no players
func (c *Coordinator) CreateSession(ctx context.Context, name string, scheduledAt time.Time, strategy model.WinStrategy) (*model.Session, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	session, err := c.engine.NewSession(name, scheduledAt, strategy)
	if err != nil {
		return nil, err
	}
	if err := c.storage.SaveSession(ctx, session, 0); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.broadcaster.Publish(session.ID, c.event(session.ID, model.EventSessionUpdated, session.Clone()))
	return session.Clone(), nil
}

// GetSession returns the latest committed snapshot
func (c *Coordinator) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	c.mu.Lock()
	a := c.actors[id]
	c.mu.Unlock()

	if a != nil {
		if snapshot := a.committed.Load(); snapshot != nil {
			return snapshot.Clone(), nil
		}
	}
	return c.storage.GetSession(ctx, id)
}

// ListSessions returns a summary of every stored session, oldest first
func (c *Coordinator) ListSessions(ctx context.Context) ([]model.SessionSummary, error) {
	sessions, err := c.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.SessionSummary, len(sessions))
	for i, s := range sessions {
		summaries[i] = s.Summary()
	}
	return summaries, nil
}

// GetPlayer returns a member of the session
func (c *Coordinator) GetPlayer(ctx context.Context, sessionID model.SessionID, playerID model.PlayerID) (*model.Player, error) {
	session, err := c.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	player := session.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

// DeleteSession removes the session and its players and stops its actor
func (c *Coordinator) DeleteSession(ctx context.Context, id model.SessionID) error {
	_, err := c.submit(ctx, id, command{delete: true})
	return err
}

// DrawBall draws the next ball
func (c *Coordinator) DrawBall(ctx context.Context, id model.SessionID) (int, *model.Session, error) {
	var ball int
	session, err := c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		b, err := c.engine.DrawBall(s)
		if err != nil {
			return nil, false, err
		}
		ball = b

		events := []model.Event{c.event(s.ID, model.EventBallDrawn, model.BallDrawnPayload{
			Ball:       b,
			DrawnCount: len(s.Pool.Drawn),
			Remaining:  len(s.Pool.Remaining),
		})}
		if !s.Active {
			events = append(events, c.event(s.ID, model.EventSessionFinished, model.SessionFinishedPayload{}))
		}
		return events, true, nil
	}})
	if err != nil {
		return 0, nil, err
	}
	return ball, session, nil
}

// ClaimBingo checks a player's claim. A losing claim returns false with a
// nil error and leaves the session unchanged.
func (c *Coordinator) ClaimBingo(ctx context.Context, id model.SessionID, playerID model.PlayerID) (bool, *model.Session, error) {
	var won bool
	session, err := c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		w, err := c.engine.ClaimBingo(s, playerID)
		if err != nil {
			return nil, false, err
		}
		won = w

		player := s.GetPlayer(playerID)
		events := []model.Event{c.event(s.ID, model.EventBingoClaimed, model.BingoClaimedPayload{
			PlayerID:    playerID,
			DisplayName: player.DisplayName,
			Won:         w,
		})}
		if w {
			winner := playerID
			events = append(events, c.event(s.ID, model.EventSessionFinished, model.SessionFinishedPayload{Winner: &winner}))
		}
		return events, w, nil
	}})
	if err != nil {
		return false, nil, err
	}
	return won, session, nil
}

// Reset restarts the session with a full pool
func (c *Coordinator) Reset(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		c.engine.Reset(s)
		return []model.Event{c.event(s.ID, model.EventSessionReset, nil)}, true, nil
	}})
}

// SetStrategy changes the win pattern for later claims
func (c *Coordinator) SetStrategy(ctx context.Context, id model.SessionID, strategy model.WinStrategy) (*model.Session, error) {
	return c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		if err := c.engine.SetStrategy(s, strategy); err != nil {
			return nil, false, err
		}
		return []model.Event{c.event(s.ID, model.EventStrategyChanged, model.StrategyChangedPayload{Strategy: strategy})}, true, nil
	}})
}

// UpdateDetails renames or reschedules the session
func (c *Coordinator) UpdateDetails(ctx context.Context, id model.SessionID, name string, scheduledAt time.Time) (*model.Session, error) {
	return c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		c.engine.UpdateDetails(s, name, scheduledAt)
		return nil, true, nil
	}})
}

// AddPlayer deals a card to a new member of the session
func (c *Coordinator) AddPlayer(ctx context.Context, id model.SessionID, name, contact string) (*model.Player, *model.Session, error) {
	var player *model.Player
	session, err := c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		p, err := c.engine.AddPlayer(s, name, contact)
		if err != nil {
			return nil, false, err
		}
		player = p
		return []model.Event{c.event(s.ID, model.EventPlayerJoined, *p)}, true, nil
	}})
	if err != nil {
		return nil, nil, err
	}
	return player, session, nil
}

// RemovePlayer drops a member. Removing a non-member succeeds and
// changes nothing.
func (c *Coordinator) RemovePlayer(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Session, error) {
	return c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		if !c.engine.RemovePlayer(s, playerID) {
			return nil, false, nil
		}
		return []model.Event{c.event(s.ID, model.EventPlayerRemoved, model.PlayerRemovedPayload{PlayerID: playerID})}, true, nil
	}})
}

// ChangeCard deals the player a new card
func (c *Coordinator) ChangeCard(ctx context.Context, id model.SessionID, playerID model.PlayerID) (*model.Player, *model.Session, error) {
	var player *model.Player
	session, err := c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		p, err := c.engine.ChangeCard(s, playerID)
		if err != nil {
			return nil, false, err
		}
		player = p
		return []model.Event{c.event(s.ID, model.EventCardChanged, *p)}, true, nil
	}})
	if err != nil {
		return nil, nil, err
	}
	return player, session, nil
}

// SetPresence marks a player online or offline for a connection
func (c *Coordinator) SetPresence(ctx context.Context, id model.SessionID, playerID model.PlayerID, online bool, connectionID string) (*model.Session, error) {
	return c.submit(ctx, id, command{apply: func(s *model.Session) ([]model.Event, bool, error) {
		wasOnline := false
		if p := s.GetPlayer(playerID); p != nil {
			wasOnline = p.Online
		}
		changed, err := c.engine.SetPresence(s, playerID, online, connectionID)
		if err != nil || !changed {
			return nil, false, err
		}
		if s.GetPlayer(playerID).Online == wasOnline {
			// another connection is still open
			return nil, true, nil
		}
		return []model.Event{c.event(s.ID, model.EventPresenceChanged, model.PresenceChangedPayload{
			PlayerID: playerID,
			Online:   online,
		})}, true, nil
	}})
}

// Close stops every actor and waits for in-flight commands to finish
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	actors := c.actors
	c.actors = make(map[model.SessionID]*actor)
	c.mu.Unlock()

	for _, a := range actors {
		a.shutdown()
	}
	c.wg.Wait()
}

// ActiveActors returns the number of running session actors
func (c *Coordinator) ActiveActors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.actors)
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// submit hands the command to the session's actor and waits for its
// result. If the actor stops before taking the command, a fresh actor is
// started and the handoff retried.
func (c *Coordinator) submit(ctx context.Context, id model.SessionID, cmd command) (*model.Session, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan result, 1)

	for {
		a, err := c.actorFor(id)
		if err != nil {
			return nil, err
		}

		select {
		case a.mailbox <- cmd:
			res := <-cmd.reply
			return res.session, res.err
		case <-a.done:
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// actorFor returns the running actor for a session, starting one if needed
func (c *Coordinator) actorFor(id model.SessionID) (*actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if a, ok := c.actors[id]; ok {
		return a, nil
	}

	a := &actor{
		id:      id,
		mailbox: make(chan command),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.actors[id] = a
	c.wg.Add(1)
	go c.run(a)
	return a, nil
}

// retire removes the actor from the registry if it is still registered
func (c *Coordinator) retire(a *actor) {
	c.mu.Lock()
	if c.actors[a.id] == a {
		delete(c.actors, a.id)
	}
	c.mu.Unlock()
}

func (a *actor) shutdown() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// run is the actor loop. It exits on shutdown, when idle, or once the
// session is found to no longer exist.
func (c *Coordinator) run(a *actor) {
	defer c.wg.Done()
	defer close(a.done)

	idle := time.NewTimer(c.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-a.stop:
			return

		case <-idle.C:
			c.retire(a)
			c.logger.Debug("session actor idle",
				slog.String("session_id", string(a.id)))
			return

		case cmd := <-a.mailbox:
			var res result
			if cmd.delete {
				res.err = c.delete(cmd.ctx, a)
			} else {
				res = c.execute(cmd.ctx, a, cmd.apply)
			}

			finished := (cmd.delete && res.err == nil) || errors.Is(res.err, model.ErrSessionNotFound)
			if finished {
				c.retire(a)
			}
			cmd.reply <- res
			if finished {
				return
			}
			idle.Reset(c.idleTimeout)
		}
	}
}

// load returns the committed snapshot, reading it from storage if needed
func (c *Coordinator) load(ctx context.Context, a *actor) (*model.Session, error) {
	if snapshot := a.committed.Load(); snapshot != nil {
		return snapshot, nil
	}

	session, err := c.storage.GetSession(ctx, a.id)
	if err != nil {
		return nil, err
	}
	if err := session.Pool.Validate(model.DefaultBallCount); err != nil {
		return nil, fmt.Errorf("session %s: %w", a.id, err)
	}
	a.committed.Store(session)
	return session, nil
}

// execute applies one mutation against a copy of the committed snapshot.
// The copy replaces the snapshot only once it is saved.
func (c *Coordinator) execute(ctx context.Context, a *actor, apply mutation) result {
	if err := ctx.Err(); err != nil {
		return result{err: err}
	}

	current, err := c.load(ctx, a)
	if err != nil {
		return result{err: err}
	}

	working := current.Clone()
	events, dirty, err := apply(working)
	if err != nil {
		return result{err: err}
	}

	if dirty {
		// A started command commits even if the caller gives up waiting
		if err := c.storage.SaveSession(context.WithoutCancel(ctx), working, current.Version); err != nil {
			a.committed.Store(nil)
			if errors.Is(err, storage.ErrConflict) {
				c.logger.Warn("session changed outside coordinator",
					slog.String("session_id", string(a.id)),
					slog.Int64("expected_version", current.Version),
				)
			} else {
				c.logger.Error("failed to save session",
					slog.String("session_id", string(a.id)),
					slog.String("error", err.Error()),
				)
			}
			return result{err: err}
		}
		a.committed.Store(working)
	}

	for _, event := range events {
		c.broadcaster.Publish(a.id, event)
	}
	if dirty {
		c.broadcaster.Publish(a.id, c.event(a.id, model.EventSessionUpdated, working.Clone()))
	}

	return result{session: working.Clone()}
}

// delete removes the session from storage and tells subscribers
func (c *Coordinator) delete(ctx context.Context, a *actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.storage.DeleteSession(context.WithoutCancel(ctx), a.id); err != nil {
		return err
	}
	a.committed.Store(nil)

	c.logger.Info("session deleted", slog.String("session_id", string(a.id)))
	c.broadcaster.Publish(a.id, c.event(a.id, model.EventSessionDeleted, nil))
	return nil
}

func (c *Coordinator) event(id model.SessionID, eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: id,
		Payload:   payload,
	}
}
