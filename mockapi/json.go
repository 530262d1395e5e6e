package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, errorResponse{Error: message}, statusCode)
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// queryInt reads key from the query string, falling back to def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Errorf("Invalid %s", key)
	}
	return v, nil
}

// queryBool returns nil when key is absent. Any value other than "true" reads as false.
func queryBool(r *http.Request, key string) *bool {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key) == "true"
	return &v
}
