package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/pattern"
	redisstorage "github.com/mcoot/bingogame-go/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// Test: host runs a session from creation to a winning claim and a replay
func (s *IntegrationSuite) TestCompleteSessionFlow() {
	_, err := s.app.AuthService.RegisterAdmin(s.ctx, "host", "password123")
	s.Require().NoError(err)

	// Step 1: Create a session that wins on any row
	session, err := s.app.Coordinator.CreateSession(s.ctx, "Friday Night", time.Time{}, model.StrategyHorizontalLine)
	s.Require().NoError(err)
	s.True(session.Active)
	s.Len(session.Pool.Remaining, model.DefaultBallCount)

	// Step 2: Two players join and log in with their access codes
	ana, _, err := s.app.Coordinator.AddPlayer(s.ctx, session.ID, "Ana", "555-0001")
	s.Require().NoError(err)
	ben, _, err := s.app.Coordinator.AddPlayer(s.ctx, session.ID, "Ben", "555-0002")
	s.Require().NoError(err)
	s.NotEqual(ana.AccessCode, ben.AccessCode)

	grant, err := s.app.AuthService.LoginPlayer(s.ctx, session.ID, ana.AccessCode)
	s.Require().NoError(err)
	s.Equal(auth.RolePlayer, grant.Identity.Role)
	s.Equal(ana.ID, grant.Identity.PlayerID)

	// Step 3: Draw until Ana completes a row
	for {
		current, err := s.app.Coordinator.GetSession(s.ctx, session.ID)
		s.Require().NoError(err)
		if pattern.HorizontalLine(ana.Card, current.Pool.DrawnSet()) {
			break
		}
		_, _, err = s.app.Coordinator.DrawBall(s.ctx, session.ID)
		s.Require().NoError(err)
	}

	// Step 4: Ana claims and wins
	won, finished, err := s.app.Coordinator.ClaimBingo(s.ctx, session.ID, ana.ID)
	s.Require().NoError(err)
	s.True(won)
	s.False(finished.Active)
	s.True(finished.IsWinner(ana.ID))

	// Step 5: The finished session rejects further play
	_, _, err = s.app.Coordinator.DrawBall(s.ctx, session.ID)
	s.ErrorIs(err, model.ErrSessionNotActive)
	_, _, err = s.app.Coordinator.ClaimBingo(s.ctx, session.ID, ben.ID)
	s.ErrorIs(err, model.ErrSessionNotActive)

	// Step 6: Storage holds the committed result
	stored, err := s.app.Storage.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(finished.Version, stored.Version)
	s.True(stored.IsWinner(ana.ID))

	// Step 7: Reset for another round, players keep their cards
	reset, err := s.app.Coordinator.Reset(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(reset.Active)
	s.Nil(reset.Winner)
	s.Empty(reset.Pool.Drawn)
	s.Len(reset.Pool.Remaining, model.DefaultBallCount)
	s.Equal(ana.Card, reset.GetPlayer(ana.ID).Card)
}

// Test: removing a player drops their records and the session stays consistent
func (s *IntegrationSuite) TestRemovePlayerFlow() {
	session, err := s.app.Coordinator.CreateSession(s.ctx, "Quiz", time.Time{}, model.StrategyCorners)
	s.Require().NoError(err)
	ana, _, err := s.app.Coordinator.AddPlayer(s.ctx, session.ID, "Ana", "555-0001")
	s.Require().NoError(err)

	updated, err := s.app.Coordinator.RemovePlayer(s.ctx, session.ID, ana.ID)
	s.Require().NoError(err)
	s.Empty(updated.Players)

	_, err = s.app.Storage.GetPlayer(s.ctx, ana.ID)
	s.ErrorIs(err, model.ErrPlayerNotFound)
	_, err = s.app.AuthService.LoginPlayer(s.ctx, session.ID, ana.AccessCode)
	s.ErrorIs(err, auth.ErrInvalidCredentials)
}

// Test: events reach the SSE hub for a watched session
func (s *IntegrationSuite) TestEventsReachSSEHub() {
	session, err := s.app.Coordinator.CreateSession(s.ctx, "Watched", time.Time{}, model.StrategyFullCard)
	s.Require().NoError(err)

	hub := s.app.HubManager.GetOrCreateHub(session.ID)
	s.Require().NoError(s.app.Coordinator.DeleteSession(s.ctx, session.ID))

	s.Eventually(func() bool {
		return s.app.HubManager.GetHub(session.ID) == nil
	}, time.Second, 5*time.Millisecond)
	s.Equal(0, hub.ClientCount())
}

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Storage == nil || app.Coordinator == nil || app.AuthService == nil {
		t.Fatal("New() left components unwired")
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	if _, err := New(Config{StorageType: "sqlite"}); err == nil {
		t.Error("New() accepted an unknown storage type")
	}
	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Error("New() accepted redis storage without RedisConfig")
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()
	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	session, err := app.Coordinator.CreateSession(ctx, "Redis Night", time.Time{}, model.StrategyDiagonal)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, _, err := app.Coordinator.DrawBall(ctx, session.ID); err != nil {
		t.Fatalf("DrawBall() error = %v", err)
	}

	stored, err := app.Storage.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(stored.Pool.Drawn) != 1 {
		t.Errorf("stored drawn = %d, want 1", len(stored.Pool.Drawn))
	}
}
