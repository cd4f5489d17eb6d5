package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newSession(id model.SessionID, players ...model.Player) *model.Session {
	for i := range players {
		players[i].SessionID = id
	}
	return &model.Session{
		ID:        id,
		Name:      "Friday night",
		Players:   players,
		Pool:      model.BallPool{Remaining: []int{3, 1}, Drawn: []int{2}},
		Strategy:  model.StrategyFrame,
		Active:    true,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	winner := model.PlayerID("p1")
	session := newSession("S1", model.Player{
		ID:         "p1",
		AccessCode: "1234",
		Card:       model.Card{{1, 2, 3, 4, 5}, {16, 17, 18, 19, 20}, {31, 32, 0, 33, 34}, {46, 47, 48, 49, 50}, {61, 62, 63, 64, 65}},
	})
	session.Winner = &winner
	session.Active = false

	err := s.storage.SaveSession(s.ctx, session, 0)
	s.Require().NoError(err)
	s.Equal(int64(1), session.Version)

	retrieved, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(int64(1), retrieved.Version)
	s.Equal(session.Pool, retrieved.Pool)
	s.Equal(model.StrategyFrame, retrieved.Strategy)
	s.Equal(session.Players[0].Card, retrieved.Players[0].Card)
	s.True(retrieved.IsWinner("p1"))
	s.False(retrieved.Active)
	s.True(session.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSaveSessionVersionCheck() {
	session := newSession("S1")
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 0))
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 1))

	err := s.storage.SaveSession(s.ctx, newSession("S1"), 1)
	s.ErrorIs(err, storage.ErrConflict)

	err = s.storage.SaveSession(s.ctx, newSession("S1"), 0)
	s.ErrorIs(err, storage.ErrConflict)

	retrieved, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal(int64(2), retrieved.Version)
}

func (s *StorageSuite) TestSaveSessionLeavesVersionOnConflict() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, newSession("S1"), 0))

	stale := newSession("S1")
	err := s.storage.SaveSession(s.ctx, stale, 0)
	s.ErrorIs(err, storage.ErrConflict)
	s.Equal(int64(0), stale.Version)
}

func (s *StorageSuite) TestSaveDeletedSession() {
	err := s.storage.SaveSession(s.ctx, newSession("S1"), 4)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestConcurrentSavesOneWins() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, newSession("S1"), 0))

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.storage.SaveSession(s.ctx, newSession("S1"), 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.True(errors.Is(err, storage.ErrConflict), "unexpected error: %v", err)
	}
	s.Equal(1, succeeded)

	retrieved, err := s.storage.GetSession(s.ctx, "S1")
	s.Require().NoError(err)
	s.Equal(int64(2), retrieved.Version)
}

func (s *StorageSuite) TestSessionTTL() {
	session := newSession("S1", model.Player{ID: "p1", AccessCode: "1234"})
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 0))

	s.True(s.mini.TTL(sessionKey("S1")) > 0, "Session should have TTL")
	s.True(s.mini.TTL(playerKey("p1")) > 0, "Player should have TTL")
	s.True(s.mini.TTL(accessCodeIndexKey("S1", "1234")) > 0, "Access code should have TTL")
}

func (s *StorageSuite) TestDeleteSessionRemovesPlayers() {
	session := newSession("S1", model.Player{ID: "p1", AccessCode: "1234"})
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 0))

	err := s.storage.DeleteSession(s.ctx, "S1")
	s.Require().NoError(err)

	s.False(s.mini.Exists(sessionKey("S1")))
	s.False(s.mini.Exists(playerKey("p1")))
	s.False(s.mini.Exists(accessCodeIndexKey("S1", "1234")))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *StorageSuite) TestDeleteSessionNotFound() {
	err := s.storage.DeleteSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListSessions() {
	first := newSession("S1")
	second := newSession("S2")
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	s.Require().NoError(s.storage.SaveSession(s.ctx, second, 0))
	s.Require().NoError(s.storage.SaveSession(s.ctx, first, 0))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("S1"), sessions[0].ID)
	s.Equal(model.SessionID("S2"), sessions[1].ID)
}

func (s *StorageSuite) TestListSessionsSkipsExpired() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, newSession("S1"), 0))
	s.Require().NoError(s.storage.SaveSession(s.ctx, newSession("S2"), 0))

	s.mini.Del(sessionKey("S1"))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(model.SessionID("S2"), sessions[0].ID)

	members, err := s.mini.Members(sessionsIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"S2"}, members)
}

// Player tests

func (s *StorageSuite) TestPlayerRecordsFollowSession() {
	session := newSession("S1",
		model.Player{ID: "p1", DisplayName: "Ana", AccessCode: "1111"},
		model.Player{ID: "p2", DisplayName: "Ben", AccessCode: "2222"},
	)
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 0))

	player, err := s.storage.GetPlayer(s.ctx, "p2")
	s.Require().NoError(err)
	s.Equal("Ben", player.DisplayName)

	player, err = s.storage.GetPlayerByAccessCode(s.ctx, "S1", "1111")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p1"), player.ID)

	session.Players = session.Players[:1]
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 1))

	_, err = s.storage.GetPlayer(s.ctx, "p2")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayerByAccessCode(s.ctx, "S1", "2222")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayer(s.ctx, "p1")
	s.NoError(err)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.storage.GetPlayerByAccessCode(s.ctx, "S1", "0000")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Admin tests

func (s *StorageSuite) TestSaveAndGetAdmin() {
	admin := &model.Admin{ID: "a1", Username: "host", PasswordHash: "hash"}
	s.Require().NoError(s.storage.SaveAdmin(s.ctx, admin))

	retrieved, err := s.storage.GetAdmin(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("host", retrieved.Username)
	s.Equal("hash", retrieved.PasswordHash)

	retrieved, err = s.storage.GetAdminByUsername(s.ctx, "host")
	s.Require().NoError(err)
	s.Equal(model.AdminID("a1"), retrieved.ID)
}

func (s *StorageSuite) TestSaveAdminRejectsTakenUsername() {
	s.Require().NoError(s.storage.SaveAdmin(s.ctx, &model.Admin{ID: "a1", Username: "host"}))

	err := s.storage.SaveAdmin(s.ctx, &model.Admin{ID: "a2", Username: "host"})
	s.ErrorIs(err, model.ErrUsernameTaken)

	retrieved, err := s.storage.GetAdminByUsername(s.ctx, "host")
	s.Require().NoError(err)
	s.Equal(model.AdminID("a1"), retrieved.ID)

	// Re-saving the owner is an update
	s.NoError(s.storage.SaveAdmin(s.ctx, &model.Admin{ID: "a1", Username: "host", PasswordHash: "new"}))
}

func (s *StorageSuite) TestGetAdminByUsernameNotFound() {
	_, err := s.storage.GetAdminByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAdminNotFound)
}

func (s *StorageSuite) TestAdminNoTTL() {
	s.Require().NoError(s.storage.SaveAdmin(s.ctx, &model.Admin{ID: "a1", Username: "host"}))
	s.Equal(time.Duration(0), s.mini.TTL(adminKey("a1")), "Admin should not have TTL")
}
