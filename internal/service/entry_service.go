package service

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lexhour/lexhour/internal/calculator"
	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/models"
	"github.com/lexhour/lexhour/internal/storage"
	"github.com/lexhour/lexhour/internal/storage/sqlite"
)

// EntryService handles raw time entries and their merged display view.
type EntryService struct {
	store storage.Store
}

// NewEntryService creates a new EntryService with the given storage backend.
func NewEntryService(store storage.Store) *EntryService {
	return &EntryService{store: store}
}

// Routes registers the time-entry endpoints.
func (s *EntryService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/entries", s.handleList)
	mux.HandleFunc("GET /api/entries/merged", s.handleMerged)
	mux.HandleFunc("POST /api/entries", s.handleCreate)
	mux.HandleFunc("PUT /api/entries/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/entries/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/entries/{id}/assign", s.handleAssign)
}

type entryRequest struct {
	Timestamp   *time.Time `json:"timestamp"`
	Application string     `json:"application"`
	WindowTitle string     `json:"window_title"`
	DurationSec int64      `json:"duration_sec"`
	ClientID    string     `json:"client_id"`
	Notes       string     `json:"notes"`
	Billable    *bool      `json:"billable"`
}

func (req *entryRequest) validate() (string, bool) {
	if req.Application == "" {
		return "application is required", false
	}
	if req.DurationSec < 0 {
		return "duration_sec must not be negative", false
	}
	return "", true
}

// parseDay parses a query bound that may be RFC3339 or YYYY-MM-DD. The
// date-only form maps to midnight UTC; endOfDay shifts it to the next
// midnight so a date-only "to" is inclusive.
func parseDay(val string, endOfDay bool) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	d, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, errors.New("expected RFC3339 or YYYY-MM-DD")
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1)
	}
	return d, nil
}

// listWindow extracts the optional from/to query bounds.
func listWindow(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	from, err = parseDay(q.Get("from"), false)
	if err != nil {
		return from, to, errors.New("invalid from: " + err.Error())
	}
	to, err = parseDay(q.Get("to"), true)
	if err != nil {
		return from, to, errors.New("invalid to: " + err.Error())
	}
	return from, to, nil
}

func (s *EntryService) listForRequest(w http.ResponseWriter, r *http.Request) ([]models.TimeEntry, bool) {
	userID := middleware.GetUserID(r.Context())

	from, to, err := listWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	entries, err := s.store.ListEntries(r.Context(), userID, from, to)
	if err != nil {
		slog.Error("failed to list entries", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return nil, false
	}
	return entries, true
}

func (s *EntryService) handleList(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.listForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleMerged serves the merge-engine view: same window as handleList, with
// consecutive same-day same-window activity collapsed.
func (s *EntryService) handleMerged(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.listForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calculator.MergeEntries(entries))
}

func (s *EntryService) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	entry := &models.TimeEntry{
		UserID:      userID,
		Application: req.Application,
		WindowTitle: req.WindowTitle,
		DurationSec: req.DurationSec,
		ClientID:    req.ClientID,
		Notes:       req.Notes,
		Billable:    true,
	}
	if req.Timestamp != nil {
		entry.Timestamp = req.Timestamp.UTC()
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}

	if entry.ClientID != "" {
		if _, err := s.store.GetClient(r.Context(), userID, entry.ClientID); err != nil {
			writeError(w, http.StatusBadRequest, "unknown client")
			return
		}
	}

	if err := s.store.CreateEntry(r.Context(), entry); err != nil {
		slog.Error("failed to create entry", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *EntryService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	existing, err := s.store.GetEntry(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing.Application = req.Application
	existing.WindowTitle = req.WindowTitle
	existing.DurationSec = req.DurationSec
	existing.ClientID = req.ClientID
	existing.Notes = req.Notes
	if req.Timestamp != nil {
		existing.Timestamp = req.Timestamp.UTC()
	}
	if req.Billable != nil {
		existing.Billable = *req.Billable
	}

	if err := s.store.UpdateEntry(r.Context(), existing); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (s *EntryService) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := s.store.DeleteEntry(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	ClientID string `json:"client_id"`
}

// handleAssign sets or clears (empty client_id) an entry's client.
func (s *EntryService) handleAssign(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	entryID := r.PathValue("id")

	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ClientID != "" {
		if _, err := s.store.GetClient(r.Context(), userID, req.ClientID); err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				writeError(w, http.StatusBadRequest, "unknown client")
				return
			}
			writeStoreError(w, err)
			return
		}
	}

	if err := s.store.AssignClient(r.Context(), userID, entryID, req.ClientID); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("entry assignment changed", "user_id", userID, "entry_id", entryID, "client_id", req.ClientID)
	entry, err := s.store.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
