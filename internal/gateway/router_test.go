package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"invoice-console/internal/database"
	"invoice-console/internal/editor"
	"invoice-console/internal/gateway/clients"
	"invoice-console/internal/gateway/middleware"
	"invoice-console/internal/invoice"
	"invoice-console/internal/store"
	"invoice-console/internal/utils"
)

var testSecret = []byte("router-secret")

type fakeUpstream struct {
	invoices  []invoice.Invoice
	listErr   error
	saveErr   error
	deleteErr error
	deleted   []string
	tokens    []string
}

func (f *fakeUpstream) List(ctx context.Context) ([]invoice.Invoice, error) {
	return f.invoices, f.listErr
}

func (f *fakeUpstream) Create(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error) {
	f.tokens = append(f.tokens, token)
	if f.saveErr != nil {
		return invoice.Invoice{}, f.saveErr
	}
	inv.ID = "created-1"
	return inv, nil
}

func (f *fakeUpstream) Update(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error) {
	f.tokens = append(f.tokens, token)
	if f.saveErr != nil {
		return invoice.Invoice{}, f.saveErr
	}
	return inv, nil
}

func (f *fakeUpstream) Delete(ctx context.Context, token, id string) error {
	f.tokens = append(f.tokens, token)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type testEnv struct {
	router     *gin.Engine
	upstream   *fakeUpstream
	collection *store.Collection
	journal    *database.MemoryJournal
	token      string
}

func newTestEnv(t *testing.T, upstream *fakeUpstream) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	collection := store.NewCollection(upstream, nil)
	collection.Load(context.Background())

	journal := database.NewMemoryJournal(0)
	router := NewRouter(Dependencies{
		Collection: collection,
		Deleter:    upstream,
		Editor:     editor.NewManager(editor.NewMemoryStore(), upstream, time.Hour),
		Journal:    journal,
		Revoker:    middleware.NewMemoryRevoker(),
		JWTSecret:  testSecret,
		PageSize:   2,
		Checks: map[string]HealthCheck{
			"sessions": func(ctx context.Context) error { return nil },
		},
	})

	token, _, err := utils.GenerateToken(testSecret, "ops@aquakart.co.in", "Ops", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return &testEnv{router: router, upstream: upstream, collection: collection, journal: journal, token: token}
}

type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Fields  map[string]string `json:"fields"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, resp
}

func liveInvoices() []invoice.Invoice {
	price := decimal.NewFromInt(1000)
	return []invoice.Invoice{
		{ID: "a", InvoiceNo: "AQ-1", Date: "01/01/2024", CustomerDetails: invoice.CustomerDetails{Name: "Ravi"}, Products: []invoice.LineItem{{ProductName: "Filter", ProductQuantity: 1, ProductPrice: price}}},
		{ID: "b", InvoiceNo: "AQ-2", Date: "02/01/2024", Gst: true, CustomerDetails: invoice.CustomerDetails{Name: "Sita"}},
		{ID: "c", InvoiceNo: "AQ-3", Date: "03/01/2024", Po: true, CustomerDetails: invoice.CustomerDetails{Name: "Ravi Kumar"}},
		{ID: "d", InvoiceNo: "AQ-4", Date: "04/01/2024", Quotation: true, CustomerDetails: invoice.CustomerDetails{Name: "Anu"}},
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}

func TestListInvoices(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantIDs   []string
		wantTotal int
	}{
		{"first page", "", http.StatusOK, []string{"a", "b"}, 4},
		{"second page", "?page=2", http.StatusOK, []string{"c", "d"}, 4},
		{"past the end", "?page=9", http.StatusOK, []string{}, 4},
		{"gst tab", "?category=gst", http.StatusOK, []string{"b"}, 1},
		{"regular tab", "?category=regular", http.StatusOK, []string{"a"}, 1},
		{"search", "?search=RAVI&page_size=10", http.StatusOK, []string{"a", "c"}, 2},
		{"search on invoice number", "?search=aq-4", http.StatusOK, []string{"d"}, 1},
		{"search term is not trimmed", "?search=Ravi%20&page_size=10", http.StatusOK, []string{"c"}, 1},
		{"unknown tab", "?category=void", http.StatusBadRequest, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodGet, "/api/v1/invoices"+tt.query, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var rows []struct {
				ID string `json:"id"`
			}
			json.Unmarshal(resp.Data, &rows)
			got := make([]string, 0, len(rows))
			for _, r := range rows {
				got = append(got, r.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("ids = %v, want %v", got, tt.wantIDs)
			}
			var meta struct {
				Pagination struct {
					TotalItems int `json:"total_items"`
				} `json:"pagination"`
			}
			json.Unmarshal(resp.Meta, &meta)
			if meta.Pagination.TotalItems != tt.wantTotal {
				t.Errorf("total_items = %d, want %d", meta.Pagination.TotalItems, tt.wantTotal)
			}
		})
	}
}

func TestListShowsAdvisoryOnFallback(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{listErr: errors.New("down")})

	w, resp := env.do(t, http.MethodGet, "/api/v1/invoices?page_size=50", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp.Message != store.Advisory {
		t.Errorf("message = %q", resp.Message)
	}
	if w.Header().Get("X-Invoice-Data") != "sample" {
		t.Errorf("X-Invoice-Data = %q", w.Header().Get("X-Invoice-Data"))
	}
	var rows []json.RawMessage
	json.Unmarshal(resp.Data, &rows)
	if len(rows) != len(invoice.SampleInvoices()) {
		t.Errorf("rows = %d", len(rows))
	}
}

func TestReloadRecovers(t *testing.T) {
	upstream := &fakeUpstream{listErr: errors.New("down")}
	env := newTestEnv(t, upstream)

	upstream.listErr = nil
	upstream.invoices = liveInvoices()
	w, resp := env.do(t, http.MethodPost, "/api/v1/invoices/reload", nil)
	if w.Code != http.StatusOK || resp.Message != "Invoices reloaded successfully" {
		t.Fatalf("reload = %d %q", w.Code, resp.Message)
	}
	if env.collection.State() != store.StateReady {
		t.Errorf("state = %s", env.collection.State())
	}
}

func TestTabCounts(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})
	_, resp := env.do(t, http.MethodGet, "/api/v1/invoices/tabs", nil)

	var tabs []struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	json.Unmarshal(resp.Data, &tabs)
	want := map[string]int{"all": 4, "regular": 1, "gst": 1, "po": 1, "quotation": 1}
	if len(tabs) != len(want) {
		t.Fatalf("tabs = %+v", tabs)
	}
	for _, tab := range tabs {
		if want[tab.Category] != tab.Count {
			t.Errorf("%s = %d, want %d", tab.Category, tab.Count, want[tab.Category])
		}
	}
}

func TestGetAndDeleteInvoice(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})

	if w, _ := env.do(t, http.MethodGet, "/api/v1/invoices/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing = %d", w.Code)
	}

	w, _ := env.do(t, http.MethodDelete, "/api/v1/invoices/b", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d (%s)", w.Code, w.Body.String())
	}
	if _, ok := env.collection.Get("b"); ok {
		t.Errorf("deleted invoice still held")
	}
	if len(env.upstream.deleted) != 1 || env.upstream.tokens[0] != env.token {
		t.Errorf("upstream delete = %v tokens = %v", env.upstream.deleted, env.upstream.tokens)
	}
	recs, _ := env.journal.Recent(context.Background(), 10)
	if len(recs) != 1 || recs[0].Action != "delete" || !recs[0].Success {
		t.Errorf("journal = %+v", recs)
	}
}

func TestDeleteFailureKeepsInvoice(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{
		invoices:  liveInvoices(),
		deleteErr: &clients.GatewayError{Op: "delete invoice", StatusCode: http.StatusForbidden, Message: "Not allowed"},
	})

	w, resp := env.do(t, http.MethodDelete, "/api/v1/invoices/a", nil)
	if w.Code != http.StatusForbidden || resp.Message != "Not allowed" {
		t.Errorf("delete = %d %q", w.Code, resp.Message)
	}
	if _, ok := env.collection.Get("a"); !ok {
		t.Errorf("invoice removed despite failure")
	}
}

func TestSendAndExport(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})

	w, _ := env.do(t, http.MethodGet, "/api/v1/invoices/a/pdf", nil)
	if w.Code != http.StatusOK || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("pdf = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "invoice_AQ-1.pdf") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}

	w, _ = env.do(t, http.MethodGet, "/api/v1/invoices/export?category=gst", nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Errorf("export = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/vnd.openxmlformats") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

type editorView struct {
	SessionID string           `json:"session_id"`
	Mode      string           `json:"mode"`
	Form      invoice.Invoice  `json:"form"`
	LastError *json.RawMessage `json:"last_error"`
}

func TestEditorCreateFlow(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})

	w, resp := env.do(t, http.MethodPost, "/api/v1/editor", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("open = %d (%s)", w.Code, w.Body.String())
	}
	var view editorView
	json.Unmarshal(resp.Data, &view)
	if view.Mode != "new" || view.SessionID == "" {
		t.Fatalf("view = %+v", view)
	}
	base := "/api/v1/editor/" + view.SessionID

	w, resp = env.do(t, http.MethodPost, base+"/items", invoice.LineItem{ProductQuantity: 1, ProductPrice: decimal.NewFromInt(10)})
	if w.Code != http.StatusUnprocessableEntity || resp.Fields["productName"] == "" {
		t.Errorf("invalid item = %d %+v", w.Code, resp.Fields)
	}

	w, _ = env.do(t, http.MethodPost, base+"/items", invoice.LineItem{ProductName: "RO Unit", ProductQuantity: 1, ProductPrice: decimal.NewFromInt(15000)})
	if w.Code != http.StatusOK {
		t.Fatalf("add item = %d (%s)", w.Code, w.Body.String())
	}

	w, resp = env.do(t, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusUnprocessableEntity || resp.Fields["invoiceNo"] == "" {
		t.Fatalf("submit incomplete form = %d %+v", w.Code, resp.Fields)
	}

	form := invoice.Invoice{InvoiceNo: "AQ-10", Date: "05/01/2024", CustomerDetails: invoice.CustomerDetails{Name: "Latha"}}
	if w, _ = env.do(t, http.MethodPut, base+"/form", form); w.Code != http.StatusOK {
		t.Fatalf("update form = %d", w.Code)
	}

	w, resp = env.do(t, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit = %d (%s)", w.Code, w.Body.String())
	}
	saved, ok := env.collection.Get("created-1")
	if !ok || saved.InvoiceNo != "AQ-10" || len(saved.Products) != 1 {
		t.Errorf("saved invoice not applied locally: %+v", saved)
	}
	if w, _ = env.do(t, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("session after submit = %d", w.Code)
	}
}

func TestEditorEditFailureKeepsForm(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{
		invoices: liveInvoices(),
		saveErr:  &clients.GatewayError{Op: "update invoice", StatusCode: http.StatusServiceUnavailable, Message: "Service Unavailable"},
	})

	_, resp := env.do(t, http.MethodPost, "/api/v1/editor", map[string]string{"invoice_id": "a"})
	var view editorView
	json.Unmarshal(resp.Data, &view)
	if view.Mode != "edit" || view.Form.InvoiceNo != "AQ-1" {
		t.Fatalf("view = %+v", view)
	}
	base := "/api/v1/editor/" + view.SessionID

	w, resp := env.do(t, http.MethodPost, base+"/submit", nil)
	if w.Code != http.StatusBadGateway || resp.Message != "Service Unavailable" {
		t.Fatalf("submit = %d %q", w.Code, resp.Message)
	}
	json.Unmarshal(resp.Data, &view)
	if view.Mode != "edit" || view.Form.InvoiceNo != "AQ-1" || view.LastError == nil {
		t.Errorf("view after failure = %+v", view)
	}

	w, _ = env.do(t, http.MethodDelete, base+"/items/5", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("remove out of range = %d", w.Code)
	}
	if w, _ = env.do(t, http.MethodDelete, base, nil); w.Code != http.StatusOK {
		t.Errorf("cancel = %d", w.Code)
	}

	recs, _ := env.journal.Recent(context.Background(), 10)
	if len(recs) != 1 || recs[0].Action != "update" || recs[0].Success {
		t.Errorf("journal = %+v", recs)
	}
}

func TestEditorOpenUnknownInvoice(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})
	w, _ := env.do(t, http.MethodPost, "/api/v1/editor", map[string]string{"invoice_id": "zzz"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSessionAndLogout(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})

	w, resp := env.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), "ops@aquakart.co.in") {
		t.Fatalf("session = %d %s", w.Code, resp.Data)
	}
	if w, _ = env.do(t, http.MethodPost, "/api/v1/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	if w, _ = env.do(t, http.MethodGet, "/api/v1/auth/session", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("session after logout = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		upstream *fakeUpstream
		code     int
		status   string
	}{
		{"live", &fakeUpstream{invoices: liveInvoices()}, http.StatusOK, "healthy"},
		{"fallback", &fakeUpstream{listErr: errors.New("down")}, http.StatusPartialContent, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.upstream)

			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			var body struct {
				Status string `json:"status"`
			}
			json.Unmarshal(w.Body.Bytes(), &body)
			if w.Code != tt.code || body.Status != tt.status {
				t.Errorf("health = %d %q", w.Code, body.Status)
			}

			w = httptest.NewRecorder()
			env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
			var detailed struct {
				OverallStatus string                     `json:"overall_status"`
				Services      map[string]json.RawMessage `json:"services"`
			}
			json.Unmarshal(w.Body.Bytes(), &detailed)
			if detailed.OverallStatus != tt.status || len(detailed.Services) != 2 {
				t.Errorf("detailed = %+v", detailed)
			}
		})
	}
}

func TestJournalEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{invoices: liveInvoices()})
	env.do(t, http.MethodDelete, "/api/v1/invoices/a", nil)

	w, resp := env.do(t, http.MethodGet, "/api/v1/journal?limit=5", nil)
	if w.Code != http.StatusOK || !strings.Contains(string(resp.Data), "AQ-1") {
		t.Errorf("journal = %d %s", w.Code, resp.Data)
	}
	if w, _ = env.do(t, http.MethodGet, "/api/v1/journal?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0 = %d", w.Code)
	}
}
