package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"invoice-console/internal/invoice"
)

const (
	listInvoicesPath  = "/crm/admin/all-invoices"
	createInvoicePath = "/crm/admin/create-invoice"
	updateInvoicePath = "/crm/admin/update-invoice"
	deleteInvoicePath = "/crm/admin/delete-invoice/"
)

// GatewayError is returned for every failed upstream call.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether trying again may succeed: transport failures,
// throttling and server errors.
func (e *GatewayError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRetryable unwraps err looking for a retryable GatewayError.
func IsRetryable(err error) bool {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		return gerr.Retryable()
	}
	return false
}

type InvoiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInvoiceClient(baseURL string, timeout time.Duration) *InvoiceClient {
	return &InvoiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *InvoiceClient) BaseURL() string {
	return c.baseURL
}

type listEnvelope struct {
	Data []invoice.Invoice `json:"data"`
}

type itemEnvelope struct {
	Data *invoice.Invoice `json:"data"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// List fetches the whole collection; the upstream has no paging.
func (c *InvoiceClient) List(ctx context.Context) ([]invoice.Invoice, error) {
	var env listEnvelope
	if err := c.do(ctx, "list invoices", http.MethodGet, listInvoicesPath, "", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []invoice.Invoice{}
	}
	return env.Data, nil
}

// Create persists a draft. The returned invoice carries the assigned id when
// the upstream echoes the record; otherwise the submitted value is returned.
func (c *InvoiceClient) Create(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error) {
	return c.save(ctx, "create invoice", http.MethodPost, createInvoicePath, token, inv)
}

// Update replaces the stored invoice wholesale.
func (c *InvoiceClient) Update(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error) {
	if inv.ID == "" {
		return invoice.Invoice{}, &GatewayError{Op: "update invoice", Message: "invoice has no id", StatusCode: http.StatusBadRequest}
	}
	return c.save(ctx, "update invoice", http.MethodPut, updateInvoicePath, token, inv)
}

func (c *InvoiceClient) Delete(ctx context.Context, token, id string) error {
	if id == "" {
		return &GatewayError{Op: "delete invoice", Message: "invoice id required", StatusCode: http.StatusBadRequest}
	}
	return c.do(ctx, "delete invoice", http.MethodDelete, deleteInvoicePath+url.PathEscape(id), token, nil, nil)
}

func (c *InvoiceClient) save(ctx context.Context, op, method, path, token string, inv invoice.Invoice) (invoice.Invoice, error) {
	var env itemEnvelope
	if err := c.do(ctx, op, method, path, token, inv, &env); err != nil {
		return invoice.Invoice{}, err
	}
	if env.Data == nil {
		return inv, nil
	}
	return *env.Data, nil
}

func (c *InvoiceClient) do(ctx context.Context, op, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &GatewayError{Op: op, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &GatewayError{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Op: op, Message: "upstream unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("gateway %s %s -> %d", method, path, resp.StatusCode)
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &GatewayError{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

// errorMessage pulls "message" out of a JSON error body, falling back to a
// generic text.
func errorMessage(raw []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fmt.Sprintf("request failed with status %d", status)
}
