package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/database"
	"invoice-console/internal/database/models"
	"invoice-console/internal/editor"
	"invoice-console/internal/invoice"
	"invoice-console/internal/store"
)

type EditorHTTPHandler struct {
	manager    *editor.Manager
	collection *store.Collection
	journal    database.Journal
}

func NewEditorHTTPHandler(manager *editor.Manager, collection *store.Collection, journal database.Journal) *EditorHTTPHandler {
	return &EditorHTTPHandler{
		manager:    manager,
		collection: collection,
		journal:    journal,
	}
}

// --- Request Structs for Binding ---

type OpenEditorRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type EditorView struct {
	SessionID    string              `json:"session_id"`
	Mode         editor.Mode         `json:"mode"`
	Form         invoice.Invoice     `json:"form"`
	Draft        invoice.LineItem    `json:"draft"`
	GSTVisible   bool                `json:"gst_visible"`
	Total        string              `json:"total"`
	TotalDisplay string              `json:"total_display"`
	LastError    *editor.SubmitError `json:"last_error,omitempty"`
}

func newEditorView(s *editor.Session) EditorView {
	total := s.State.Form.Total()
	return EditorView{
		SessionID:    s.ID,
		Mode:         s.State.Mode,
		Form:         s.State.Form,
		Draft:        s.State.Draft,
		GSTVisible:   s.State.Form.Gst,
		Total:        total.StringFixed(2),
		TotalDisplay: invoice.FormatINR(total),
		LastError:    s.State.LastError,
	}
}

// OpenEditor starts a create session, or an edit session when invoice_id
// names a held invoice.
func (h *EditorHTTPHandler) OpenEditor(c *gin.Context) {
	var req OpenEditorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
			return
		}
	}
	email, _ := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	var sess *editor.Session
	var err error
	if req.InvoiceID == "" {
		sess, err = h.manager.OpenNew(ctx, email)
	} else {
		inv, ok := h.collection.Get(req.InvoiceID)
		if !ok {
			c.JSON(http.StatusNotFound, errorResponse("Invoice not found"))
			return
		}
		sess, err = h.manager.OpenEdit(ctx, email, inv)
	}
	if err != nil {
		handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Editor opened", newEditorView(sess)))
}

func (h *EditorHTTPHandler) GetEditor(c *gin.Context) {
	email, _ := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	sess, err := h.manager.Get(ctx, email, c.Param("sid"))
	if err != nil {
		handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, successResponse("Editor retrieved successfully", newEditorView(sess)))
}

// UpdateForm replaces the form fields. Products are managed through the
// items endpoints and are ignored here.
func (h *EditorHTTPHandler) UpdateForm(c *gin.Context) {
	var req invoice.Invoice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	h.mutate(c, "Form updated", func(ed *editor.Editor) error {
		return ed.UpdateForm(req)
	})
}

func (h *EditorHTTPHandler) AddLineItem(c *gin.Context) {
	var req invoice.LineItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	h.mutate(c, "Product added", func(ed *editor.Editor) error {
		return ed.AddLineItem(req)
	})
}

func (h *EditorHTTPHandler) RemoveLineItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid product index"))
		return
	}
	h.mutate(c, "Product removed", func(ed *editor.Editor) error {
		return ed.RemoveLineItem(index)
	})
}

func (h *EditorHTTPHandler) mutate(c *gin.Context, message string, fn func(ed *editor.Editor) error) {
	email, _ := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	sess, err := h.manager.Mutate(ctx, email, c.Param("sid"), fn)
	if err != nil {
		var view interface{}
		if sess != nil {
			view = newEditorView(sess)
		}
		handleError(c, err, view)
		return
	}
	c.JSON(http.StatusOK, successResponse(message, newEditorView(sess)))
}

// SubmitEditor creates or updates the invoice upstream. On success the held
// collection is updated in place and the session ends; on failure the
// session is returned with the form intact and the error attached.
func (h *EditorHTTPHandler) SubmitEditor(c *gin.Context) {
	email, token := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	res, err := h.manager.Submit(ctx, email, c.Param("sid"), token)
	if res == nil {
		handleError(c, err, nil)
		return
	}

	action := models.ActionCreate
	if res.Mode == editor.ModeEdit {
		action = models.ActionUpdate
	}
	if err != nil {
		h.record(c, database.NewRecord(email, action, res.Session.State.Form, err))
		handleError(c, err, newEditorView(res.Session))
		return
	}
	h.record(c, database.NewRecord(email, action, res.Saved, nil))

	h.collection.Upsert(res.Saved)
	if action == models.ActionCreate {
		c.JSON(http.StatusCreated, successResponse("Invoice created successfully", res.Saved))
		return
	}
	c.JSON(http.StatusOK, successResponse("Invoice updated successfully", res.Saved))
}

func (h *EditorHTTPHandler) CancelEditor(c *gin.Context) {
	email, _ := operator(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	if err := h.manager.Cancel(ctx, email, c.Param("sid")); err != nil {
		handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, successResponse("Editor closed", nil))
}

func (h *EditorHTTPHandler) record(c *gin.Context, rec *models.SubmissionRecord) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Record(c.Request.Context(), rec); err != nil {
		log.Printf("Failed to journal %s of invoice %q: %v", rec.Action, rec.InvoiceNo, err)
	}
}
