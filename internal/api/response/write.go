package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. Session snapshots go stale on the next
// draw, so responses are never cached.
func JSON(w http.ResponseWriter, status int, data any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}
