package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/api/response"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
)

// Command types accepted from clients
const (
	CommandDraw  = "draw"
	CommandBingo = "bingo"
	CommandReset = "reset"
	CommandPing  = "ping"
)

// Reply types sent in answer to a command
const (
	ReplyResult = "result"
	ReplyError  = "error"
	ReplyPong   = "pong"
)

// commandTimeout bounds how long one command may wait on the coordinator
const commandTimeout = 10 * time.Second

// Command is an inbound client message
type Command struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	PlayerID  string `json:"player_id,omitempty"` // hosts claiming for a player
}

// Reply answers a single command. Published events are sent separately
// in the response.Event envelope.
type Reply struct {
	Type      string           `json:"type"`
	Command   string           `json:"command,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	Data      any              `json:"data,omitempty"`
	Error     *apierr.APIError `json:"error,omitempty"`
}

// Handler upgrades requests to WebSocket connections and runs commands
// received on them
type Handler struct {
	hub         *Hub
	coordinator *session.Coordinator
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(hub *Hub, coordinator *session.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
// The caller has already checked the identity may join the session.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, sessionID model.SessionID, identity auth.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(uuid.NewString(), sessionID, identity, conn)
	h.hub.join(client)
	go client.writePump()

	if identity.Role == auth.RolePlayer {
		h.setPresence(client, true)
	}

	h.readPump(client)

	h.hub.leave(client)
	if identity.Role == auth.RolePlayer {
		h.setPresence(client, false)
	}
}

// readPump reads commands until the connection fails
func (h *Handler) readPump(c *Client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("ws read failed",
					slog.String("connection_id", c.id),
					slog.Any("error", err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(c, Reply{Type: ReplyError, Error: describe(apierr.NewInvalidRequestError("invalid message"))})
			continue
		}

		h.reply(c, h.handle(c, cmd))
	}
}

// handle runs one command against the coordinator
func (h *Handler) handle(c *Client, cmd Command) Reply {
	if cmd.Type == CommandPing {
		return Reply{Type: ReplyPong, RequestID: cmd.RequestID}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data, err := h.run(ctx, c, cmd)
	if err != nil {
		return Reply{Type: ReplyError, Command: cmd.Type, RequestID: cmd.RequestID, Error: describe(err)}
	}
	return Reply{Type: ReplyResult, Command: cmd.Type, RequestID: cmd.RequestID, Data: data}
}

func (h *Handler) run(ctx context.Context, c *Client, cmd Command) (any, error) {
	reveal := c.identity.IsAdmin()

	switch cmd.Type {
	case CommandDraw:
		if err := auth.RequireAdmin(&c.identity); err != nil {
			return nil, err
		}
		ball, s, err := h.coordinator.DrawBall(ctx, c.sessionID)
		if err != nil {
			return nil, err
		}
		return response.DrawResponse{Ball: ball, Session: response.SessionFromModel(s, reveal)}, nil

	case CommandReset:
		if err := auth.RequireAdmin(&c.identity); err != nil {
			return nil, err
		}
		s, err := h.coordinator.Reset(ctx, c.sessionID)
		if err != nil {
			return nil, err
		}
		return response.SessionFromModel(s, reveal), nil

	case CommandBingo:
		playerID := c.identity.PlayerID
		if reveal {
			playerID = model.PlayerID(cmd.PlayerID)
			if playerID == "" {
				return nil, apierr.NewInvalidRequestError("player_id is required")
			}
		} else if cmd.PlayerID != "" && model.PlayerID(cmd.PlayerID) != playerID {
			return nil, model.ErrForbidden
		}
		won, s, err := h.coordinator.ClaimBingo(ctx, c.sessionID, playerID)
		if err != nil {
			return nil, err
		}
		return response.ClaimResponse{Won: won, Session: response.SessionFromModel(s, reveal)}, nil

	default:
		return nil, apierr.NewInvalidRequestError("unknown command type")
	}
}

func (h *Handler) reply(c *Client, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("ws failed to encode reply", slog.Any("error", err))
		return
	}
	if !c.enqueue(data) {
		h.logger.Debug("ws reply dropped", slog.String("connection_id", c.id))
	}
}

func (h *Handler) setPresence(c *Client, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	_, err := h.coordinator.SetPresence(ctx, c.sessionID, c.identity.PlayerID, online, c.id)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrSessionNotFound), errors.Is(err, model.ErrPlayerNotFound):
		// the session or player went away while connected
	case errors.Is(err, session.ErrClosed):
		// server shutting down
	default:
		h.logger.Warn("ws presence update failed",
			slog.String("session_id", string(c.sessionID)),
			slog.Bool("online", online),
			slog.Any("error", err))
	}
}

func describe(err error) *apierr.APIError {
	e := apierr.Describe(err)
	return &e
}
