package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/dependencies/clock"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/card"
	"github.com/mcoot/bingogame-go/internal/services/game"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/storage/memory"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

// message decodes both published events and command replies
type message struct {
	Event     string           `json:"event"`
	SessionID string           `json:"session_id"`
	Type      string           `json:"type"`
	Command   string           `json:"command"`
	RequestID string           `json:"request_id"`
	Data      json.RawMessage  `json:"data"`
	Error     *apierr.APIError `json:"error"`
}

type HandlerSuite struct {
	suite.Suite
	hub         *Hub
	coordinator *session.Coordinator
	server      *httptest.Server
	ctx         context.Context
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctx = context.Background()
	logger := testutil.NopLogger()
	rnd := random.New()
	clk := clock.New()

	s.hub = NewHub(logger)
	engine := game.NewEngine(card.New(rnd), rnd, clk, logger)
	s.coordinator = session.New(memory.New(), engine, s.hub, clk, logger, session.DefaultConfig())
	handler := NewHandler(s.hub, s.coordinator, logger)

	// identity comes from the query string here; the API resolves it from a token
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sessionID := model.SessionID(q.Get("session"))
		identity := auth.Identity{Role: auth.RoleAdmin, AdminID: "a1", DisplayName: "host"}
		if pid := q.Get("player"); pid != "" {
			identity = auth.Identity{Role: auth.RolePlayer, PlayerID: model.PlayerID(pid), SessionID: sessionID}
		}
		handler.ServeWS(w, r, sessionID, identity)
	}))
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
	s.hub.Close()
	s.coordinator.Close()
}

func (s *HandlerSuite) createSession() *model.Session {
	created, err := s.coordinator.CreateSession(s.ctx, "Friday", time.Time{}, model.StrategyFullCard)
	s.Require().NoError(err)
	return created
}

func (s *HandlerSuite) addPlayer(sessionID model.SessionID, name, contact string) *model.Player {
	player, _, err := s.coordinator.AddPlayer(s.ctx, sessionID, name, contact)
	s.Require().NoError(err)
	return player
}

func (s *HandlerSuite) dial(sessionID model.SessionID, playerID model.PlayerID) *websocket.Conn {
	q := url.Values{"session": {string(sessionID)}}
	if playerID != "" {
		q.Set("player", string(playerID))
	}
	u := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/?" + q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	s.Require().Eventually(func() bool {
		return s.hub.ClientCount(sessionID) > 0
	}, time.Second, 5*time.Millisecond)
	return conn
}

func (s *HandlerSuite) read(conn *websocket.Conn) message {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var msg message
	s.Require().NoError(conn.ReadJSON(&msg))
	return msg
}

// exchange sends a command and returns the events seen before its reply
func (s *HandlerSuite) exchange(conn *websocket.Conn, cmd Command) ([]string, message) {
	s.Require().NoError(conn.WriteJSON(cmd))
	var events []string
	for {
		msg := s.read(conn)
		if msg.Type != "" {
			return events, msg
		}
		events = append(events, msg.Event)
	}
}

func (s *HandlerSuite) TestPing() {
	created := s.createSession()
	conn := s.dial(created.ID, "")

	_, reply := s.exchange(conn, Command{Type: CommandPing, RequestID: "r1"})
	s.Equal(ReplyPong, reply.Type)
	s.Equal("r1", reply.RequestID)
}

func (s *HandlerSuite) TestAdminDraw() {
	created := s.createSession()
	conn := s.dial(created.ID, "")

	events, reply := s.exchange(conn, Command{Type: CommandDraw})
	s.Equal([]string{"ball-drawn", "session-updated"}, events)
	s.Equal(ReplyResult, reply.Type)
	s.Equal(CommandDraw, reply.Command)

	var data struct {
		Ball int `json:"ball"`
	}
	s.Require().NoError(json.Unmarshal(reply.Data, &data))
	s.GreaterOrEqual(data.Ball, 1)
	s.LessOrEqual(data.Ball, model.DefaultBallCount)
}

func (s *HandlerSuite) TestPlayerCannotDraw() {
	created := s.createSession()
	player := s.addPlayer(created.ID, "Ana", "555-0001")
	conn := s.dial(created.ID, player.ID)

	_, reply := s.exchange(conn, Command{Type: CommandDraw})
	s.Equal(ReplyError, reply.Type)
	s.Require().NotNil(reply.Error)
	s.Equal(apierr.CodeForbidden, reply.Error.Code)
}

func (s *HandlerSuite) TestPlayerLosingClaim() {
	created := s.createSession()
	player := s.addPlayer(created.ID, "Ana", "555-0001")
	conn := s.dial(created.ID, player.ID)

	_, reply := s.exchange(conn, Command{Type: CommandBingo})
	s.Require().Equal(ReplyResult, reply.Type)

	var data struct {
		Won bool `json:"won"`
	}
	s.Require().NoError(json.Unmarshal(reply.Data, &data))
	s.False(data.Won)
}

func (s *HandlerSuite) TestPlayerCannotClaimForAnother() {
	created := s.createSession()
	player := s.addPlayer(created.ID, "Ana", "555-0001")
	other := s.addPlayer(created.ID, "Ben", "555-0002")
	conn := s.dial(created.ID, player.ID)

	_, reply := s.exchange(conn, Command{Type: CommandBingo, PlayerID: string(other.ID)})
	s.Require().NotNil(reply.Error)
	s.Equal(apierr.CodeForbidden, reply.Error.Code)
}

func (s *HandlerSuite) TestAdminClaimRequiresPlayer() {
	created := s.createSession()
	conn := s.dial(created.ID, "")

	_, reply := s.exchange(conn, Command{Type: CommandBingo})
	s.Require().NotNil(reply.Error)
	s.Equal(apierr.CodeInvalidRequest, reply.Error.Code)
}

func (s *HandlerSuite) TestUnknownCommand() {
	created := s.createSession()
	conn := s.dial(created.ID, "")

	_, reply := s.exchange(conn, Command{Type: "shuffle"})
	s.Require().NotNil(reply.Error)
	s.Equal(apierr.CodeInvalidRequest, reply.Error.Code)

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	reply = s.read(conn)
	s.Equal(ReplyError, reply.Type)
}

func (s *HandlerSuite) TestPresenceFollowsConnection() {
	created := s.createSession()
	player := s.addPlayer(created.ID, "Ana", "555-0001")
	conn := s.dial(created.ID, player.ID)

	online := func() bool {
		p, err := s.coordinator.GetPlayer(s.ctx, created.ID, player.ID)
		return err == nil && p.Online
	}
	s.Eventually(online, time.Second, 5*time.Millisecond)

	s.Require().NoError(conn.Close())
	s.Eventually(func() bool { return !online() }, time.Second, 5*time.Millisecond)
}

func (s *HandlerSuite) TestDeleteClosesConnection() {
	created := s.createSession()
	conn := s.dial(created.ID, "")

	s.Require().NoError(s.coordinator.DeleteSession(s.ctx, created.ID))

	msg := s.read(conn)
	s.Equal("session-deleted", msg.Event)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := conn.ReadMessage()
	s.True(websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	s.Equal(0, s.hub.ClientCount(created.ID))
}

func (s *HandlerSuite) TestEventsReachEveryClient() {
	created := s.createSession()
	first := s.dial(created.ID, "")
	second := s.dial(created.ID, "")
	s.Require().Eventually(func() bool {
		return s.hub.ClientCount(created.ID) == 2
	}, time.Second, 5*time.Millisecond)

	_, _, err := s.coordinator.DrawBall(s.ctx, created.ID)
	s.Require().NoError(err)

	for _, conn := range []*websocket.Conn{first, second} {
		s.Equal("ball-drawn", s.read(conn).Event)
		s.Equal("session-updated", s.read(conn).Event)
	}
}
