package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

// SaveSession watches the session key so a write from another process
// between the version read and the MULTI aborts the transaction.
func (s *Storage) SaveSession(ctx context.Context, session *model.Session, expectedVersion int64) error {
	key := sessionKey(session.ID)

	stored := *session
	stored.Version = expectedVersion + 1
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := getSession(ctx, tx, session.ID)
		switch {
		case errors.Is(err, model.ErrSessionNotFound):
			if expectedVersion != 0 {
				return err
			}
		case err != nil:
			return err
		case existing.Version != expectedVersion:
			return storage.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if existing != nil {
				for _, p := range existing.Players {
					pipe.Del(ctx, playerKey(p.ID), accessCodeIndexKey(existing.ID, p.AccessCode))
				}
			}
			pipe.Set(ctx, key, data, s.cfg.SessionTTL)
			pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
			for i := range stored.Players {
				p := &stored.Players[i]
				playerData, err := json.Marshal(p)
				if err != nil {
					return err
				}
				pipe.Set(ctx, playerKey(p.ID), playerData, s.cfg.SessionTTL)
				pipe.Set(ctx, accessCodeIndexKey(session.ID, p.AccessCode), string(p.ID), s.cfg.SessionTTL)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrConflict
	}
	if err != nil {
		return err
	}

	session.Version = stored.Version
	return nil
}

// getSession reads a session through any client, including a watching Tx
func getSession(ctx context.Context, c redis.Cmdable, id model.SessionID) (*model.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getSession(ctx, s.client, id)
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	key := sessionKey(id)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}

		// Delete the session, its players and index entries in one transaction
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, p := range existing.Players {
				pipe.Del(ctx, playerKey(p.ID), accessCodeIndexKey(id, p.AccessCode))
			}
			pipe.Del(ctx, key)
			pipe.SRem(ctx, sessionsIndexKey(), string(id))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrConflict
	}
	return err
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	ids, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(model.SessionID(id))
	}

	// Fetch all sessions in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(values))
	var expired []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		var session model.Session
		if err := json.Unmarshal([]byte(str), &session); err != nil {
			continue // Skip invalid data
		}
		sessions = append(sessions, &session)
	}

	if len(expired) > 0 {
		// Best effort: expired sessions leave stale index members behind
		_ = s.client.SRem(ctx, sessionsIndexKey(), expired...).Err()
	}

	slices.SortFunc(sessions, func(a, b *model.Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return sessions, nil
}

// Player operations

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByAccessCode(ctx context.Context, sessionID model.SessionID, code string) (*model.Player, error) {
	// Look up player ID from access code index
	playerIDStr, err := s.client.Get(ctx, accessCodeIndexKey(sessionID, code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(playerIDStr))
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	data, err := json.Marshal(admin)
	if err != nil {
		return err
	}

	// Claim the username first; a different owner means it is taken
	indexKey := usernameIndexKey(admin.Username)
	claimed, err := s.client.SetNX(ctx, indexKey, string(admin.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		owner, err := s.client.Get(ctx, indexKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if owner != string(admin.ID) {
			return model.ErrUsernameTaken
		}
	}

	return s.client.Set(ctx, adminKey(admin.ID), data, 0).Err() // No TTL
}

func (s *Storage) GetAdmin(ctx context.Context, id model.AdminID) (*model.Admin, error) {
	data, err := s.client.Get(ctx, adminKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAdminNotFound
		}
		return nil, err
	}

	var admin model.Admin
	if err := json.Unmarshal(data, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	// Look up admin ID from username index
	adminIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAdminNotFound
		}
		return nil, err
	}

	return s.GetAdmin(ctx, model.AdminID(adminIDStr))
}
