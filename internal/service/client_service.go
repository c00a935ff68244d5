package service

import (
	"log/slog"
	"net/http"

	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/models"
	"github.com/lexhour/lexhour/internal/storage"
)

// ClientService handles the client roster.
type ClientService struct {
	store storage.Store
}

// NewClientService creates a new ClientService with the given storage
// backend.
func NewClientService(store storage.Store) *ClientService {
	return &ClientService{store: store}
}

// Routes registers the client endpoints.
func (s *ClientService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clients", s.handleList)
	mux.HandleFunc("POST /api/clients", s.handleCreate)
	mux.HandleFunc("GET /api/clients/{id}", s.handleGet)
	mux.HandleFunc("PUT /api/clients/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/clients/{id}", s.handleDelete)
}

type clientRequest struct {
	Name          string  `json:"name"`
	HourlyRate    float64 `json:"hourly_rate"`
	Color         string  `json:"color"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	ContactPerson string  `json:"contact_person"`
}

func (req *clientRequest) validate() (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.HourlyRate < 0 {
		return "hourly_rate must not be negative", false
	}
	return "", true
}

func (s *ClientService) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	clients, err := s.store.ListClients(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list clients", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *ClientService) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	client := &models.Client{
		UserID:        userID,
		Name:          req.Name,
		HourlyRate:    req.HourlyRate,
		Color:         req.Color,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
	}
	if err := s.store.CreateClient(r.Context(), client); err != nil {
		slog.Error("failed to create client", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}

	slog.Info("client created", "user_id", userID, "client_id", client.ID)
	writeJSON(w, http.StatusCreated, client)
}

func (s *ClientService) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	client, err := s.store.GetClient(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (s *ClientService) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	client := &models.Client{
		ID:            r.PathValue("id"),
		UserID:        userID,
		Name:          req.Name,
		HourlyRate:    req.HourlyRate,
		Color:         req.Color,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
	}
	if err := s.store.UpdateClient(r.Context(), client); err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := s.store.GetClient(r.Context(), userID, client.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *ClientService) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	clientID := r.PathValue("id")

	if err := s.store.DeleteClient(r.Context(), userID, clientID); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("client deleted", "user_id", userID, "client_id", clientID)
	w.WriteHeader(http.StatusNoContent)
}
