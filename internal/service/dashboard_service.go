package service

import (
	"log/slog"
	"net/http"

	"github.com/lexhour/lexhour/internal/calculator"
	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/storage"
)

// DashboardService serves the derived dashboard statistics.
type DashboardService struct {
	store storage.Store
}

// NewDashboardService creates a new DashboardService with the given storage
// backend.
func NewDashboardService(store storage.Store) *DashboardService {
	return &DashboardService{store: store}
}

// Routes registers the dashboard endpoint.
func (s *DashboardService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", s.handleStats)
}

// handleStats loads the user's entries (optionally windowed by from/to) and
// clients, and computes the summary figures. ComputeStats is total, so a
// loaded dataset always produces a response.
func (s *DashboardService) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	from, to, err := listWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.store.ListEntries(r.Context(), userID, from, to)
	if err != nil {
		slog.Error("failed to list entries for dashboard", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}

	clients, err := s.store.ListClients(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list clients for dashboard", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}

	stats := calculator.ComputeStats(entries, clients)
	slog.Debug("dashboard computed",
		"user_id", userID,
		"entries", len(entries),
		"clients", len(clients),
		"total_hours", stats.TotalHours,
	)
	writeJSON(w, http.StatusOK, stats)
}
