package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bingogame-go/internal/model"
)

const maxBodyBytes = 1 << 16

// decodeBody reads a JSON request body. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

func sessionIDVar(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}

func playerIDVar(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player_id"])
}

// resolveStrategy accepts a strategy name or the numeric game type; with
// neither the default strategy is used
func resolveStrategy(name string, gameType *int) (model.WinStrategy, error) {
	switch {
	case name != "":
		return model.ParseStrategy(name)
	case gameType != nil:
		strategy := model.WinStrategy(*gameType)
		if !strategy.IsValid() {
			return 0, model.ErrInvalidStrategy
		}
		return strategy, nil
	default:
		return model.DefaultStrategy, nil
	}
}
