// Package service implements the HTTP JSON services: auth, clients, time
// entries, dashboard, and invoices. Each service is a thin struct over the
// store; request scoping comes from the user ID the auth middleware put in
// the context.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lexhour/lexhour/internal/storage/sqlite"
)

// maxBodyBytes bounds request bodies; nothing this API accepts is large.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeStoreError maps storage errors onto HTTP statuses: missing rows are
// 404, everything else is a 500 with a generic message (details stay in the
// log).
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
