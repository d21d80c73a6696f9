package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/database"
	"invoice-console/internal/database/models"
	"invoice-console/internal/document"
	"invoice-console/internal/listing"
	"invoice-console/internal/store"
)

// InvoiceDeleter is the delete side of the invoice gateway.
type InvoiceDeleter interface {
	Delete(ctx context.Context, token, id string) error
}

type InvoiceHTTPHandler struct {
	collection *store.Collection
	deleter    InvoiceDeleter
	journal    database.Journal
	pageSize   int
}

func NewInvoiceHTTPHandler(collection *store.Collection, deleter InvoiceDeleter, journal database.Journal, pageSize int) *InvoiceHTTPHandler {
	if pageSize <= 0 {
		pageSize = listing.DefaultItemsPerPage
	}
	return &InvoiceHTTPHandler{
		collection: collection,
		deleter:    deleter,
		journal:    journal,
		pageSize:   pageSize,
	}
}

// --- Request & Query Structs for Binding ---

type ListInvoicesQuery struct {
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size"`
	Category string `form:"category,default=all"`
	Search   string `form:"search"`
}

type ListMeta struct {
	Category   listing.Category   `json:"category"`
	Search     string             `json:"search,omitempty"`
	Pagination listing.Pagination `json:"pagination"`
	Collection store.Status       `json:"collection"`
}

type TabCount struct {
	Category listing.Category `json:"category"`
	Label    string           `json:"label"`
	Count    int              `json:"count"`
}

func (h *InvoiceHTTPHandler) bindQuery(c *gin.Context) (listing.Query, bool) {
	var query ListInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return listing.Query{}, false
	}
	category, err := listing.ParseCategory(query.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return listing.Query{}, false
	}
	if query.PageSize <= 0 {
		query.PageSize = h.pageSize
	}
	return listing.Query{
		Category: category,
		Search:   query.Search,
		Page:     query.Page,
		PerPage:  query.PageSize,
	}, true
}

// --- Listing Handlers ---

func (h *InvoiceHTTPHandler) ListInvoices(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	page := listing.Apply(h.collection.Snapshot(), q)
	status := h.collection.Status()

	message := "Invoices retrieved successfully"
	if status.Advisory != "" {
		message = status.Advisory
	}
	c.JSON(http.StatusOK, successWithMetaResponse(message, page.Rows(), ListMeta{
		Category:   page.Category,
		Search:     page.Search,
		Pagination: page.Pagination,
		Collection: status,
	}))
}

func (h *InvoiceHTTPHandler) GetTabCounts(c *gin.Context) {
	counts := listing.TabCounts(h.collection.Snapshot())
	tabs := make([]TabCount, 0, len(listing.Categories))
	for _, cat := range listing.Categories {
		tabs = append(tabs, TabCount{Category: cat, Label: cat.Label(), Count: counts[cat]})
	}
	c.JSON(http.StatusOK, successResponse("Tab counts retrieved successfully", tabs))
}

// ReloadInvoices refetches the collection. A failed fetch is not an error
// for the caller: sample data is shown with the advisory.
func (h *InvoiceHTTPHandler) ReloadInvoices(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	err := h.collection.Load(ctx)
	status := h.collection.Status()
	if errors.Is(err, store.ErrSuperseded) {
		c.JSON(http.StatusConflict, withData(errorResponse("A newer reload replaced this one"), status))
		return
	}
	if err != nil && status.State != store.StateDegraded {
		handleError(c, err, status)
		return
	}
	message := "Invoices reloaded successfully"
	if status.Advisory != "" {
		message = status.Advisory
	}
	c.JSON(http.StatusOK, successResponse(message, status))
}

func (h *InvoiceHTTPHandler) GetInvoice(c *gin.Context) {
	inv, ok := h.collection.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Invoice not found"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Invoice retrieved successfully", inv))
}

// --- Row Action Handlers ---

// SendInvoice renders the invoice as a PDF attachment.
func (h *InvoiceHTTPHandler) SendInvoice(c *gin.Context) {
	inv, ok := h.collection.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Invoice not found"))
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+document.PDFFilename(inv)+`"`)
	c.Status(http.StatusOK)
	if err := document.WritePDF(c.Writer, inv); err != nil {
		log.Printf("Failed to render PDF for invoice %s: %v", inv.ID, err)
		c.Abort()
	}
}

func (h *InvoiceHTTPHandler) DeleteInvoice(c *gin.Context) {
	id := c.Param("id")
	inv, ok := h.collection.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("Invoice not found"))
		return
	}
	email, token := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	err := h.deleter.Delete(ctx, token, id)
	h.record(c, database.NewRecord(email, models.ActionDelete, inv, err))
	if err != nil {
		handleError(c, err, nil)
		return
	}

	h.collection.Remove(id)
	c.JSON(http.StatusOK, successResponse("Invoice deleted successfully", gin.H{"id": id}))
}

// ExportInvoices downloads every invoice matching the current tab and search
// as an XLSX workbook. Pagination is ignored.
func (h *InvoiceHTTPHandler) ExportInvoices(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	filtered := listing.Filter(h.collection.Snapshot(), q.Category, q.Search)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+document.XLSXFilename(time.Now())+`"`)
	c.Status(http.StatusOK)
	if err := document.WriteXLSX(c.Writer, filtered); err != nil {
		log.Printf("Failed to write XLSX export: %v", err)
		c.Abort()
	}
}

func (h *InvoiceHTTPHandler) record(c *gin.Context, rec *models.SubmissionRecord) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Record(c.Request.Context(), rec); err != nil {
		log.Printf("Failed to journal %s of invoice %q: %v", rec.Action, rec.InvoiceNo, err)
	}
}
