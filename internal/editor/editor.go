// Package editor implements the create/update dialog for a single invoice.
// The editor owns a working copy of the form; the held collection is only
// touched after a submit succeeds.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"invoice-console/internal/invoice"
)

var (
	ErrClosed           = errors.New("editor is not open")
	ErrSubmitInProgress = errors.New("a submit is already in progress")
	ErrIndexOutOfRange  = errors.New("line item index out of range")
)

type Mode string

const (
	ModeClosed Mode = "closed"
	ModeNew    Mode = "new"
	ModeEdit   Mode = "edit"
)

// Saver is the write side of the invoice gateway.
type Saver interface {
	Create(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error)
	Update(ctx context.Context, token string, inv invoice.Invoice) (invoice.Invoice, error)
}

// SubmitError is kept on the editor after a failed submit so the dialog can
// show it next to the preserved form.
type SubmitError struct {
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type retryable interface {
	Retryable() bool
}

func newSubmitError(err error) *SubmitError {
	se := &SubmitError{Message: err.Error()}
	var verr *invoice.ValidationError
	if errors.As(err, &verr) {
		se.Fields = verr.Map()
		return se
	}
	var r retryable
	if errors.As(err, &r) {
		se.Retryable = r.Retryable()
	}
	return se
}

// State is the serialisable form of an editor, used by session stores.
type State struct {
	Mode       Mode             `json:"mode"`
	Form       invoice.Invoice  `json:"form"`
	Draft      invoice.LineItem `json:"draft"`
	Submitting bool             `json:"submitting"`
	LastError  *SubmitError     `json:"last_error,omitempty"`
}

type Editor struct {
	mu         sync.Mutex
	mode       Mode
	form       invoice.Invoice
	draft      invoice.LineItem
	submitting bool
	lastErr    *SubmitError
}

func New() *Editor {
	return &Editor{mode: ModeClosed, draft: invoice.NewLineItemDraft()}
}

// Restore rebuilds an editor from a stored state. The submitting flag is not
// restored; cross-process submit locking belongs to the session store.
func Restore(st State) *Editor {
	return &Editor{
		mode:    st.Mode,
		form:    st.Form.Clone(),
		draft:   st.Draft,
		lastErr: st.LastError,
	}
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Mode:       e.mode,
		Form:       e.form.Clone(),
		Draft:      e.draft,
		Submitting: e.submitting,
		LastError:  e.lastErr,
	}
}

// OpenNew seeds the form with the empty template dated today. Anything left
// from a previous session is discarded.
func (e *Editor) OpenNew(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeNew
	e.form = invoice.Empty(now)
	e.resetLocked()
}

// OpenEdit seeds the form with a deep copy of inv.
func (e *Editor) OpenEdit(inv invoice.Invoice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = ModeEdit
	e.form = inv.Clone()
	if e.form.Products == nil {
		e.form.Products = []invoice.LineItem{}
	}
	e.resetLocked()
}

// Cancel closes the dialog without saving.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}

func (e *Editor) resetLocked() {
	e.draft = invoice.NewLineItemDraft()
	e.submitting = false
	e.lastErr = nil
}

func (e *Editor) closeLocked() {
	e.mode = ModeClosed
	e.form = invoice.Invoice{}
	e.resetLocked()
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) IsOpen() bool {
	return e.Mode() != ModeClosed
}

func (e *Editor) Form() invoice.Invoice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Clone()
}

func (e *Editor) Draft() invoice.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor) LastError() *SubmitError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// GSTVisible reports whether the GST details block is shown.
func (e *Editor) GSTVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form.Gst
}

// UpdateForm replaces the scalar and nested fields of the working form. The
// id and the product rows are kept; rows change only through AddLineItem and
// RemoveLineItem. Clearing gst hides but keeps the GST details.
func (e *Editor) UpdateForm(next invoice.Invoice) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeClosed {
		return ErrClosed
	}
	products := e.form.Products
	id := e.form.ID
	e.form = next.Clone()
	e.form.ID = id
	e.form.Products = products
	return nil
}

// Edit applies fn to the working form under the same rules as UpdateForm.
func (e *Editor) Edit(fn func(form *invoice.Invoice)) error {
	form := e.Form()
	fn(&form)
	return e.UpdateForm(form)
}

// SetDraft replaces the "new product" working value.
func (e *Editor) SetDraft(li invoice.LineItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeClosed {
		return ErrClosed
	}
	e.draft = li
	return nil
}

// AddLineItem appends draft when it has a name and a non-zero price, then
// resets the held draft. An invalid draft leaves the products unchanged and
// returns a field-level *invoice.ValidationError.
func (e *Editor) AddLineItem(draft invoice.LineItem) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeClosed {
		return ErrClosed
	}
	if err := invoice.ValidateDraft(draft); err != nil {
		e.draft = draft
		return err
	}
	products := make([]invoice.LineItem, len(e.form.Products), len(e.form.Products)+1)
	copy(products, e.form.Products)
	e.form.Products = append(products, draft)
	e.draft = invoice.NewLineItemDraft()
	return nil
}

// AddDraft appends the currently held draft.
func (e *Editor) AddDraft() error {
	return e.AddLineItem(e.Draft())
}

// RemoveLineItem removes the row at index, keeping the order of the rest.
func (e *Editor) RemoveLineItem(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode == ModeClosed {
		return ErrClosed
	}
	if index < 0 || index >= len(e.form.Products) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(e.form.Products))
	}
	products := make([]invoice.LineItem, 0, len(e.form.Products)-1)
	products = append(products, e.form.Products[:index]...)
	products = append(products, e.form.Products[index+1:]...)
	e.form.Products = products
	return nil
}

// Submit validates the form, then creates or updates it through saver. On
// success the dialog closes and the saved invoice is returned. On failure the
// dialog stays open with the form intact and the error recorded.
func (e *Editor) Submit(ctx context.Context, saver Saver, token string) (invoice.Invoice, error) {
	e.mu.Lock()
	if e.mode == ModeClosed {
		e.mu.Unlock()
		return invoice.Invoice{}, ErrClosed
	}
	if e.submitting {
		e.mu.Unlock()
		return invoice.Invoice{}, ErrSubmitInProgress
	}
	if err := e.form.Validate(); err != nil {
		e.lastErr = newSubmitError(err)
		e.mu.Unlock()
		return invoice.Invoice{}, err
	}
	e.submitting = true
	e.lastErr = nil
	mode := e.mode
	form := e.form.Clone()
	e.mu.Unlock()

	var saved invoice.Invoice
	var err error
	if mode == ModeEdit {
		saved, err = saver.Update(ctx, token, form)
	} else {
		saved, err = saver.Create(ctx, token, form)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitting = false
	if err != nil {
		e.lastErr = newSubmitError(err)
		return invoice.Invoice{}, err
	}
	e.closeLocked()
	return saved, nil
}
