package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexhour/lexhour/internal/auth"
	"github.com/lexhour/lexhour/internal/middleware"
	"github.com/lexhour/lexhour/internal/models"
	"github.com/lexhour/lexhour/internal/storage/sqlite"
)

// setupTestServer wires the full HTTP stack, auth middleware included,
// against a temp SQLite database.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), tokens, store)

	protected := http.NewServeMux()
	authSvc.Routes(protected)
	NewClientService(store).Routes(protected)
	NewEntryService(store).Routes(protected)
	NewDashboardService(store).Routes(protected)
	NewInvoiceService(store, "$").Routes(protected)

	mux := http.NewServeMux()
	authSvc.PublicRoutes(mux)
	mux.Handle("/api/", middleware.RequireAuth(tokens, protected))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// doJSON issues a request with an optional bearer token and decodes the
// response body into out when out is non-nil.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

type session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// register creates an account and returns its token.
func register(t *testing.T, server *httptest.Server, email string) session {
	t.Helper()

	var sess session
	status := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":        email,
		"display_name": "Test Lawyer",
		"password":     "correct-horse",
	}, &sess)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d", status)
	}
	if sess.Token == "" {
		t.Fatal("register returned no token")
	}
	return sess
}

func TestAuthEndpoints(t *testing.T) {
	server := setupTestServer(t)

	sess := register(t, server, "alice@example.com")

	// Duplicate email is rejected.
	status := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":        "alice@example.com",
		"display_name": "Again",
		"password":     "correct-horse",
	}, nil)
	if status != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want %d", status, http.StatusConflict)
	}

	// Weak password is rejected.
	status = doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":        "bob@example.com",
		"display_name": "Bob",
		"password":     "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("weak password returned %d, want %d", status, http.StatusBadRequest)
	}

	var login session
	status = doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	}, &login)
	if status != http.StatusOK || login.Token == "" {
		t.Fatalf("login returned %d, token %q", status, login.Token)
	}

	status = doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad login returned %d, want %d", status, http.StatusUnauthorized)
	}

	var me models.User
	status = doJSON(t, http.MethodGet, server.URL+"/api/auth/me", sess.Token, nil, &me)
	if status != http.StatusOK {
		t.Fatalf("me returned %d", status)
	}
	if me.Email != "alice@example.com" {
		t.Errorf("me returned email %q", me.Email)
	}

	status = doJSON(t, http.MethodGet, server.URL+"/api/auth/me", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("me without token returned %d, want %d", status, http.StatusUnauthorized)
	}
}

func createClient(t *testing.T, server *httptest.Server, token, name string, rate float64) models.Client {
	t.Helper()

	var client models.Client
	status := doJSON(t, http.MethodPost, server.URL+"/api/clients", token, map[string]any{
		"name":        name,
		"hourly_rate": rate,
		"color":       "#4f46e5",
	}, &client)
	if status != http.StatusCreated {
		t.Fatalf("create client returned %d", status)
	}
	return client
}

func createEntry(t *testing.T, server *httptest.Server, token string, body map[string]any) models.TimeEntry {
	t.Helper()

	var entry models.TimeEntry
	status := doJSON(t, http.MethodPost, server.URL+"/api/entries", token, body, &entry)
	if status != http.StatusCreated {
		t.Fatalf("create entry returned %d", status)
	}
	return entry
}

func TestClientEndpoints(t *testing.T) {
	server := setupTestServer(t)
	sess := register(t, server, "clients@example.com")

	client := createClient(t, server, sess.Token, "Acme Corp", 250)

	status := doJSON(t, http.MethodPost, server.URL+"/api/clients", sess.Token, map[string]any{
		"hourly_rate": 100,
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("nameless client returned %d, want %d", status, http.StatusBadRequest)
	}

	var list []models.Client
	if status := doJSON(t, http.MethodGet, server.URL+"/api/clients", sess.Token, nil, &list); status != http.StatusOK {
		t.Fatalf("list clients returned %d", status)
	}
	if len(list) != 1 || list[0].Name != "Acme Corp" {
		t.Fatalf("unexpected client list: %+v", list)
	}

	var updated models.Client
	status = doJSON(t, http.MethodPut, server.URL+"/api/clients/"+client.ID, sess.Token, map[string]any{
		"name":        "Acme Corp",
		"hourly_rate": 300,
	}, &updated)
	if status != http.StatusOK || updated.HourlyRate != 300 {
		t.Fatalf("update client returned %d, rate %v", status, updated.HourlyRate)
	}

	// Other accounts cannot see this client.
	other := register(t, server, "other@example.com")
	status = doJSON(t, http.MethodGet, server.URL+"/api/clients/"+client.ID, other.Token, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("cross-account get returned %d, want %d", status, http.StatusNotFound)
	}

	status = doJSON(t, http.MethodDelete, server.URL+"/api/clients/"+client.ID, sess.Token, nil, nil)
	if status != http.StatusNoContent {
		t.Errorf("delete client returned %d, want %d", status, http.StatusNoContent)
	}
}

func TestEntryEndpointsAndMergedView(t *testing.T) {
	server := setupTestServer(t)
	sess := register(t, server, "entries@example.com")
	client := createClient(t, server, sess.Token, "Acme Corp", 250)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, dur := range []int64{600, 900, 300} {
		createEntry(t, server, sess.Token, map[string]any{
			"timestamp":    base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			"application":  "Word",
			"window_title": "Contract.docx",
			"duration_sec": dur,
			"client_id":    client.ID,
		})
	}
	lone := createEntry(t, server, sess.Token, map[string]any{
		"timestamp":    base.Add(5 * time.Hour).Format(time.RFC3339),
		"application":  "Outlook",
		"window_title": "Inbox",
		"duration_sec": 120,
	})

	var entries []models.TimeEntry
	if status := doJSON(t, http.MethodGet, server.URL+"/api/entries", sess.Token, nil, &entries); status != http.StatusOK {
		t.Fatalf("list entries returned %d", status)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[0].ID != lone.ID {
		t.Errorf("expected newest entry first, got %s", entries[0].Application)
	}

	var merged []models.TimeEntry
	if status := doJSON(t, http.MethodGet, server.URL+"/api/entries/merged", sess.Token, nil, &merged); status != http.StatusOK {
		t.Fatalf("merged view returned %d", status)
	}
	if len(merged) != 2 {
		t.Fatalf("got %d merged entries, want 2", len(merged))
	}
	var wordRow *models.TimeEntry
	for i := range merged {
		if merged[i].Application == "Word" {
			wordRow = &merged[i]
		}
	}
	if wordRow == nil {
		t.Fatal("merged view lost the Word row")
	}
	if wordRow.DurationSec != 1800 || wordRow.MergedCount != 3 {
		t.Errorf("merged row duration %d count %d, want 1800 and 3", wordRow.DurationSec, wordRow.MergedCount)
	}

	// Assign and clear a client on the lone entry.
	var assigned models.TimeEntry
	status := doJSON(t, http.MethodPost, server.URL+"/api/entries/"+lone.ID+"/assign", sess.Token,
		map[string]string{"client_id": client.ID}, &assigned)
	if status != http.StatusOK || assigned.ClientID != client.ID {
		t.Fatalf("assign returned %d, client %q", status, assigned.ClientID)
	}
	status = doJSON(t, http.MethodPost, server.URL+"/api/entries/"+lone.ID+"/assign", sess.Token,
		map[string]string{"client_id": ""}, &assigned)
	if status != http.StatusOK || assigned.ClientID != "" {
		t.Fatalf("clear assign returned %d, client %q", status, assigned.ClientID)
	}

	status = doJSON(t, http.MethodPost, server.URL+"/api/entries/"+lone.ID+"/assign", sess.Token,
		map[string]string{"client_id": "nope"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("assign unknown client returned %d, want %d", status, http.StatusBadRequest)
	}

	// Window filter: a day with no activity is empty.
	url := fmt.Sprintf("%s/api/entries?from=%s&to=%s", server.URL, "2026-03-11", "2026-03-12")
	var windowed []models.TimeEntry
	if status := doJSON(t, http.MethodGet, url, sess.Token, nil, &windowed); status != http.StatusOK {
		t.Fatalf("windowed list returned %d", status)
	}
	if len(windowed) != 0 {
		t.Errorf("empty window returned %d entries", len(windowed))
	}

	status = doJSON(t, http.MethodDelete, server.URL+"/api/entries/"+lone.ID, sess.Token, nil, nil)
	if status != http.StatusNoContent {
		t.Errorf("delete entry returned %d, want %d", status, http.StatusNoContent)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	server := setupTestServer(t)
	sess := register(t, server, "dash@example.com")
	client := createClient(t, server, sess.Token, "Acme Corp", 200)

	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	createEntry(t, server, sess.Token, map[string]any{
		"timestamp":    ts.Format(time.RFC3339),
		"application":  "Word",
		"window_title": "Brief.docx",
		"duration_sec": int64(3600),
		"client_id":    client.ID,
	})
	createEntry(t, server, sess.Token, map[string]any{
		"timestamp":    ts.Add(time.Hour).Format(time.RFC3339),
		"application":  "Chrome",
		"window_title": "Research",
		"duration_sec": int64(1800),
	})

	var stats models.DashboardStats
	if status := doJSON(t, http.MethodGet, server.URL+"/api/dashboard", sess.Token, nil, &stats); status != http.StatusOK {
		t.Fatalf("dashboard returned %d", status)
	}
	if stats.TotalHours != 1.5 {
		t.Errorf("total hours = %v, want 1.5", stats.TotalHours)
	}
	if stats.BillableHours != 1 {
		t.Errorf("billable hours = %v, want 1", stats.BillableHours)
	}
	if len(stats.Distribution) != 1 {
		t.Fatalf("got %d distribution rows, want 1", len(stats.Distribution))
	}
	if stats.Distribution[0].Amount != 200 {
		t.Errorf("distribution amount = %v, want 200", stats.Distribution[0].Amount)
	}
	// Half an unassigned hour at the only roster rate of 200.
	if stats.UnbilledAmount != 100 {
		t.Errorf("unbilled amount = %v, want 100", stats.UnbilledAmount)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	server := setupTestServer(t)
	sess := register(t, server, "billing@example.com")
	client := createClient(t, server, sess.Token, "Acme Corp", 250)

	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, dur := range []int64{1800, 1800} {
		createEntry(t, server, sess.Token, map[string]any{
			"timestamp":    ts.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			"application":  "Word",
			"window_title": "Contract.docx",
			"duration_sec": dur,
			"client_id":    client.ID,
		})
	}

	// Due date in the past so the sent invoice reads as overdue.
	generate := map[string]string{
		"client_id": client.ID,
		"from":      "2026-03-01",
		"to":        "2026-03-31",
		"due_date":  time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02"),
	}

	var invoice models.Invoice
	status := doJSON(t, http.MethodPost, server.URL+"/api/invoices", sess.Token, generate, &invoice)
	if status != http.StatusCreated {
		t.Fatalf("generate invoice returned %d", status)
	}
	if invoice.Number != "INV-0001" {
		t.Errorf("invoice number = %q, want INV-0001", invoice.Number)
	}
	if invoice.Status != models.InvoiceDraft {
		t.Errorf("new invoice status = %q, want draft", invoice.Status)
	}
	// The two same-day Word sessions collapse into one line.
	if len(invoice.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(invoice.Items))
	}
	if invoice.TotalHours != 1 || invoice.TotalAmount != 250 {
		t.Errorf("totals = %v hours, %v amount; want 1 and 250", invoice.TotalHours, invoice.TotalAmount)
	}
	if len(invoice.Items[0].EntryIDs) != 2 {
		t.Errorf("item covers %d entries, want 2", len(invoice.Items[0].EntryIDs))
	}

	// The covered entries cannot be billed again.
	status = doJSON(t, http.MethodPost, server.URL+"/api/invoices", sess.Token, generate, nil)
	if status != http.StatusBadRequest {
		t.Errorf("second generate returned %d, want %d", status, http.StatusBadRequest)
	}

	// draft cannot jump straight to paid.
	status = doJSON(t, http.MethodPost, server.URL+"/api/invoices/"+invoice.ID+"/status", sess.Token,
		map[string]string{"status": "paid"}, nil)
	if status != http.StatusConflict {
		t.Errorf("draft to paid returned %d, want %d", status, http.StatusConflict)
	}

	var sent models.Invoice
	status = doJSON(t, http.MethodPost, server.URL+"/api/invoices/"+invoice.ID+"/status", sess.Token,
		map[string]string{"status": "sent"}, &sent)
	if status != http.StatusOK || sent.Status != models.InvoiceSent {
		t.Fatalf("draft to sent returned %d, status %q", status, sent.Status)
	}

	var listed []models.Invoice
	if status := doJSON(t, http.MethodGet, server.URL+"/api/invoices", sess.Token, nil, &listed); status != http.StatusOK {
		t.Fatalf("list invoices returned %d", status)
	}
	if len(listed) != 1 || listed[0].Status != models.InvoiceOverdue {
		t.Fatalf("listed invoices: %+v", listed)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/invoices/"+invoice.ID+"/pdf", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("pdf request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pdf returned %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type = %q", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		t.Fatalf("pdf body empty, err %v", err)
	}

	// Deleting the invoice frees its entries for billing again.
	status = doJSON(t, http.MethodDelete, server.URL+"/api/invoices/"+invoice.ID, sess.Token, nil, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete invoice returned %d", status)
	}
	var regenerated models.Invoice
	status = doJSON(t, http.MethodPost, server.URL+"/api/invoices", sess.Token, generate, &regenerated)
	if status != http.StatusCreated {
		t.Fatalf("regenerate returned %d", status)
	}
	if regenerated.Number != "INV-0002" {
		t.Errorf("regenerated number = %q, want INV-0002", regenerated.Number)
	}
}
