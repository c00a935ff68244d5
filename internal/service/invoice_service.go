package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/lexhour/lexhour/internal/calculator"
	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/models"
	"github.com/lexhour/lexhour/internal/render"
	"github.com/lexhour/lexhour/internal/storage"
)

// InvoiceService handles invoice generation and lifecycle.
type InvoiceService struct {
	store          storage.Store
	currencySymbol string
}

// NewInvoiceService creates a new InvoiceService with the given storage
// backend and display currency symbol.
func NewInvoiceService(store storage.Store, currencySymbol string) *InvoiceService {
	return &InvoiceService{store: store, currencySymbol: currencySymbol}
}

// Routes registers the invoice endpoints.
func (s *InvoiceService) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/invoices", s.handleList)
	mux.HandleFunc("POST /api/invoices", s.handleGenerate)
	mux.HandleFunc("GET /api/invoices/{id}", s.handleGet)
	mux.HandleFunc("POST /api/invoices/{id}/status", s.handleStatus)
	mux.HandleFunc("DELETE /api/invoices/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/invoices/{id}/pdf", s.handlePDF)
}

type generateInvoiceRequest struct {
	ClientID string `json:"client_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	DueDate  string `json:"due_date"`
	Notes    string `json:"notes"`
}

// handleGenerate builds a draft invoice from the client's unbilled entries
// in the requested window. Lines come from the merged view so the invoice
// reads like the activity screen; every covered raw entry is recorded so it
// cannot be billed twice.
func (s *InvoiceService) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req generateInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	from, err := parseDay(req.From, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from: "+err.Error())
		return
	}
	to, err := parseDay(req.To, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to: "+err.Error())
		return
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		due, err := parseDay(req.DueDate, false)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due_date: "+err.Error())
			return
		}
		dueDate = &due
	}

	client, err := s.store.GetClient(r.Context(), userID, req.ClientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	entries, err := s.store.ListUnbilledEntries(r.Context(), userID, client.ID, from, to)
	if err != nil {
		slog.Error("failed to list unbilled entries", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusBadRequest, "no unbilled entries for this client in the given window")
		return
	}

	invoice := buildInvoice(userID, client, entries, dueDate, req.Notes)
	if err := s.store.CreateInvoice(r.Context(), invoice); err != nil {
		slog.Error("failed to create invoice", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}

	slog.Info("invoice generated",
		"user_id", userID,
		"invoice_id", invoice.ID,
		"number", invoice.Number,
		"client_id", client.ID,
		"items", len(invoice.Items),
		"total_amount", invoice.TotalAmount,
	)
	writeJSON(w, http.StatusCreated, invoice)
}

// buildInvoice turns unbilled entries into a draft invoice for the client.
func buildInvoice(userID string, client *models.Client, entries []models.TimeEntry, dueDate *time.Time, notes string) *models.Invoice {
	merged := calculator.MergeEntries(entries)
	// Merge output is newest first; invoice lines read chronologically.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})

	invoice := &models.Invoice{
		UserID:    userID,
		ClientID:  client.ID,
		IssueDate: time.Now().UTC().Truncate(24 * time.Hour),
		DueDate:   dueDate,
		Status:    models.InvoiceDraft,
		Notes:     notes,
	}

	for _, e := range merged {
		hours := float64(e.DurationSec) / 3600
		amount := hours * client.HourlyRate

		covered := e.MergedIDs
		if len(covered) == 0 {
			covered = []string{e.ID}
		}

		invoice.Items = append(invoice.Items, models.InvoiceItem{
			Date:        e.Timestamp.Truncate(24 * time.Hour),
			Description: itemDescription(e),
			Hours:       hours,
			Rate:        client.HourlyRate,
			Amount:      amount,
			TimeEntryID: e.ID,
			EntryIDs:    covered,
		})
		invoice.TotalHours += hours
		invoice.TotalAmount += amount
	}
	return invoice
}

func itemDescription(e models.TimeEntry) string {
	if e.WindowTitle == "" {
		return e.Application
	}
	return fmt.Sprintf("%s - %s", e.Application, e.WindowTitle)
}

func (s *InvoiceService) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	invoices, err := s.store.ListInvoices(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list invoices", "user_id", userID, "error", err)
		writeStoreError(w, err)
		return
	}
	for i := range invoices {
		deriveOverdue(&invoices[i])
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (s *InvoiceService) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	invoice, err := s.store.GetInvoice(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	deriveOverdue(invoice)
	writeJSON(w, http.StatusOK, invoice)
}

// deriveOverdue displays sent or viewed invoices past their due date as
// overdue without persisting the change; the stored status still moves only
// through the status endpoint.
func deriveOverdue(invoice *models.Invoice) {
	if invoice.DueDate == nil {
		return
	}
	if invoice.Status != models.InvoiceSent && invoice.Status != models.InvoiceViewed {
		return
	}
	if time.Now().UTC().After(*invoice.DueDate) {
		invoice.Status = models.InvoiceOverdue
	}
}

type statusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

func (s *InvoiceService) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	invoice, err := s.store.GetInvoice(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !invoice.Status.CanTransitionTo(req.Status) {
		writeError(w, http.StatusConflict,
			fmt.Sprintf("cannot move invoice from %s to %s", invoice.Status, req.Status))
		return
	}

	if err := s.store.UpdateInvoiceStatus(r.Context(), userID, invoice.ID, req.Status); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("invoice status changed",
		"user_id", userID,
		"invoice_id", invoice.ID,
		"from", invoice.Status,
		"to", req.Status,
	)
	invoice.Status = req.Status
	writeJSON(w, http.StatusOK, invoice)
}

func (s *InvoiceService) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	invoiceID := r.PathValue("id")

	if err := s.store.DeleteInvoice(r.Context(), userID, invoiceID); err != nil {
		writeStoreError(w, err)
		return
	}

	slog.Info("invoice deleted", "user_id", userID, "invoice_id", invoiceID)
	w.WriteHeader(http.StatusNoContent)
}

// handlePDF renders the invoice as a PDF document. The renderer is handed a
// fully-formed invoice and client; it does no data access of its own.
func (s *InvoiceService) handlePDF(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	invoice, err := s.store.GetInvoice(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	deriveOverdue(invoice)

	client, err := s.store.GetClient(r.Context(), userID, invoice.ClientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pdfBytes, err := render.InvoicePDF(invoice, client, user, s.currencySymbol)
	if err != nil {
		slog.Error("failed to render invoice PDF", "invoice_id", invoice.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s.pdf", invoice.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
