package redis

import (
	"fmt"

	"github.com/mcoot/bingogame-go/internal/model"
)

// Key prefix for all bingo data
const keyPrefix = "bingo"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of all session IDs
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// accessCodeIndexKey returns the Redis key for the session+code -> player_id index
func accessCodeIndexKey(sessionID model.SessionID, code string) string {
	return fmt.Sprintf("%s:idx:access_code:%s:%s", keyPrefix, sessionID, code)
}

// adminKey returns the Redis key for an Admin
func adminKey(id model.AdminID) string {
	return fmt.Sprintf("%s:admin:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> admin_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}
