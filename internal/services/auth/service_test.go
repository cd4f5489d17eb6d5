package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/dependencies/mocks"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedPlayer(sessionID model.SessionID, playerID model.PlayerID, code string) {
	session := &model.Session{
		ID:      sessionID,
		Active:  true,
		Players: []model.Player{{ID: playerID, SessionID: sessionID, DisplayName: "Ana", AccessCode: code}},
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session, 0))
}

// RegisterAdmin tests

func (s *ServiceSuite) TestRegisterAdminSucceeds() {
	grant, err := s.service.RegisterAdmin(s.ctx, "host", "password123")
	s.Require().NoError(err)

	s.NotEmpty(grant.Token)
	s.Equal(RoleAdmin, grant.Identity.Role)
	s.Equal("host", grant.Identity.DisplayName)
	s.NotEmpty(grant.Identity.AdminID)
}

func (s *ServiceSuite) TestRegisterAdminHashesPassword() {
	_, _ = s.service.RegisterAdmin(s.ctx, "host", "password123")

	admin, err := s.storage.GetAdminByUsername(s.ctx, "host")
	s.Require().NoError(err)
	s.NotEmpty(admin.PasswordHash)
	s.NotEqual("password123", admin.PasswordHash) // Should be hashed
}

func (s *ServiceSuite) TestRegisterAdminFailsIfUsernameExists() {
	_, _ = s.service.RegisterAdmin(s.ctx, "host", "password123")

	_, err := s.service.RegisterAdmin(s.ctx, "host", "different456")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterAdminConcurrentSameUsername() {
	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted []*Grant
		taken   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grant, err := s.service.RegisterAdmin(s.ctx, "host", "password123")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				granted = append(granted, grant)
			} else if errors.Is(err, ErrUsernameExists) {
				taken++
			}
		}()
	}
	wg.Wait()

	s.Require().Len(granted, 1)
	s.Equal(attempts-1, taken)

	// The one account that was created can log in
	login, err := s.service.LoginAdmin(s.ctx, "host", "password123")
	s.Require().NoError(err)
	s.Equal(granted[0].Identity.AdminID, login.Identity.AdminID)
}

func (s *ServiceSuite) TestRegisterAdminValidatesInput() {
	_, err := s.service.RegisterAdmin(s.ctx, "  ", "password123")
	s.ErrorIs(err, ErrInvalidUsername)

	_, err = s.service.RegisterAdmin(s.ctx, "host", "short")
	s.ErrorIs(err, ErrPasswordTooShort)
}

// LoginAdmin tests

func (s *ServiceSuite) TestLoginAdminSucceeds() {
	registered, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")

	grant, err := s.service.LoginAdmin(s.ctx, "host", "password123")
	s.Require().NoError(err)
	s.Equal(registered.Identity.AdminID, grant.Identity.AdminID)
	s.NotEqual(registered.Token, grant.Token)
}

func (s *ServiceSuite) TestLoginAdminFailsWithWrongPassword() {
	_, _ = s.service.RegisterAdmin(s.ctx, "host", "password123")

	_, err := s.service.LoginAdmin(s.ctx, "host", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginAdminFailsWithUnknownUser() {
	_, err := s.service.LoginAdmin(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// LoginPlayer tests

func (s *ServiceSuite) TestLoginPlayerSucceeds() {
	s.seedPlayer("S1", "p1", "4821")

	grant, err := s.service.LoginPlayer(s.ctx, "S1", "4821")
	s.Require().NoError(err)
	s.Equal(RolePlayer, grant.Identity.Role)
	s.Equal(model.PlayerID("p1"), grant.Identity.PlayerID)
	s.Equal(model.SessionID("S1"), grant.Identity.SessionID)
	s.Equal("Ana", grant.Identity.DisplayName)
}

func (s *ServiceSuite) TestLoginPlayerFailsWithWrongCode() {
	s.seedPlayer("S1", "p1", "4821")

	_, err := s.service.LoginPlayer(s.ctx, "S1", "0000")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.LoginPlayer(s.ctx, "S2", "4821")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Token tests

func (s *ServiceSuite) TestValidateTokenSucceeds() {
	grant, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")

	validated, err := s.service.ValidateToken(grant.Token)
	s.Require().NoError(err)
	s.Equal(grant.Identity, validated.Identity)
}

func (s *ServiceSuite) TestValidateTokenFailsWithInvalidToken() {
	_, err := s.service.ValidateToken("invalid-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestValidateTokenFailsWhenExpired() {
	grant, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateToken(grant.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestInvalidateTokenRemovesGrant() {
	grant, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")

	s.service.InvalidateToken(grant.Token)

	_, err := s.service.ValidateToken(grant.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestInvalidateSessionDropsPlayerTokens() {
	s.seedPlayer("S1", "p1", "4821")
	player, _ := s.service.LoginPlayer(s.ctx, "S1", "4821")
	admin, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")

	s.service.InvalidateSession("S1")

	_, err := s.service.ValidateToken(player.Token)
	s.ErrorIs(err, ErrInvalidToken)
	_, err = s.service.ValidateToken(admin.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestInvalidatePlayerDropsOnlyThatPlayer() {
	s.seedPlayer("S1", "p1", "4821")
	s.seedPlayer("S2", "p2", "1111")
	first, _ := s.service.LoginPlayer(s.ctx, "S1", "4821")
	second, _ := s.service.LoginPlayer(s.ctx, "S2", "1111")

	s.service.InvalidatePlayer("p1")

	_, err := s.service.ValidateToken(first.Token)
	s.ErrorIs(err, ErrInvalidToken)
	_, err = s.service.ValidateToken(second.Token)
	s.NoError(err)
}

func (s *ServiceSuite) TestCleanExpiredTokensRemovesExpired() {
	grant, _ := s.service.RegisterAdmin(s.ctx, "host", "password123")
	s.clock.Advance(25 * time.Hour)
	fresh, _ := s.service.LoginAdmin(s.ctx, "host", "password123")

	s.service.CleanExpiredTokens()

	s.service.mu.RLock()
	_, hasOld := s.service.grants[grant.Token]
	_, hasFresh := s.service.grants[fresh.Token]
	s.service.mu.RUnlock()
	s.False(hasOld)
	s.True(hasFresh)
}

// Gate tests

func (s *ServiceSuite) TestRequireAdmin() {
	s.ErrorIs(RequireAdmin(nil), model.ErrUnauthorized)
	s.ErrorIs(RequireAdmin(&Identity{Role: RolePlayer, SessionID: "S1"}), model.ErrForbidden)
	s.NoError(RequireAdmin(&Identity{Role: RoleAdmin}))
}

func (s *ServiceSuite) TestRequireMember() {
	player := &Identity{Role: RolePlayer, PlayerID: "p1", SessionID: "S1"}

	s.ErrorIs(RequireMember(nil, "S1"), model.ErrUnauthorized)
	s.NoError(RequireMember(player, "S1"))
	s.ErrorIs(RequireMember(player, "S2"), model.ErrForbidden)
	s.NoError(RequireMember(&Identity{Role: RoleAdmin}, "S2"))
}
