// Package store owns the fetched invoice collection and its load lifecycle.
package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"invoice-console/internal/invoice"
)

// ErrSuperseded reports a load whose result was dropped because a newer load
// started after it.
var ErrSuperseded = errors.New("invoice load superseded by a newer load")

// Advisory is the non-blocking message shown while sample data is displayed.
const Advisory = "Failed to load invoices. Showing sample data."

type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDegraded State = "degraded"
)

// Lister is the read side of the invoice gateway.
type Lister interface {
	List(ctx context.Context) ([]invoice.Invoice, error)
}

type Status struct {
	State    State     `json:"state"`
	Loading  bool      `json:"loading"`
	Advisory string    `json:"advisory,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	LastErr  string    `json:"last_error,omitempty"`
}

type Collection struct {
	mu       sync.RWMutex
	lister   Lister
	fallback func() []invoice.Invoice

	invoices []invoice.Invoice
	state    State
	loading  bool
	advisory string
	lastErr  error
	loadedAt time.Time
	gen      uint64
}

// NewCollection starts idle and empty. fallback supplies the dataset shown
// when a load fails; nil means invoice.SampleInvoices.
func NewCollection(lister Lister, fallback func() []invoice.Invoice) *Collection {
	if fallback == nil {
		fallback = invoice.SampleInvoices
	}
	return &Collection{
		lister:   lister,
		fallback: fallback,
		invoices: []invoice.Invoice{},
		state:    StateIdle,
	}
}

// Load fetches the collection. Success replaces the held set and clears the
// advisory; failure keeps the fallback dataset visible with an advisory. If
// ctx is cancelled before the result arrives the result is discarded and
// ctx's error returned; if a newer load has started, ErrSuperseded.
func (c *Collection) Load(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.loading = true
	c.state = StateLoading
	c.mu.Unlock()

	invoices, err := c.lister.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return ErrSuperseded
	}
	c.loading = false

	if ctxErr := ctx.Err(); ctxErr != nil {
		c.restoreStateLocked()
		return ctxErr
	}

	if err != nil {
		log.Printf("Error fetching invoices: %v", err)
		c.invoices = c.fallback()
		c.advisory = Advisory
		c.lastErr = err
		c.state = StateDegraded
		return err
	}

	c.invoices = invoices
	c.advisory = ""
	c.lastErr = nil
	c.state = StateReady
	c.loadedAt = time.Now()
	return nil
}

// restoreStateLocked puts the state back after an abandoned load.
func (c *Collection) restoreStateLocked() {
	switch {
	case c.advisory != "":
		c.state = StateDegraded
	case !c.loadedAt.IsZero():
		c.state = StateReady
	default:
		c.state = StateIdle
	}
}

// Snapshot returns a deep copy of the held invoices.
func (c *Collection) Snapshot() []invoice.Invoice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]invoice.Invoice, len(c.invoices))
	for i := range c.invoices {
		out[i] = c.invoices[i].Clone()
	}
	return out
}

// Get returns a deep copy of the invoice with the given id.
func (c *Collection) Get(id string) (invoice.Invoice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.invoices {
		if c.invoices[i].ID == id {
			return c.invoices[i].Clone(), true
		}
	}
	return invoice.Invoice{}, false
}

// Upsert applies a saved invoice locally so the list reflects it without a
// refetch. Invoices without an id are ignored.
func (c *Collection) Upsert(inv invoice.Invoice) {
	if inv.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.invoices {
		if c.invoices[i].ID == inv.ID {
			c.invoices[i] = inv.Clone()
			return
		}
	}
	c.invoices = append(c.invoices, inv.Clone())
}

// Remove drops the invoice with the given id, reporting whether it existed.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.invoices {
		if c.invoices[i].ID == id {
			c.invoices = append(c.invoices[:i], c.invoices[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Collection) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Collection) Advisory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.advisory
}

func (c *Collection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Collection) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{
		State:    c.state,
		Loading:  c.loading,
		Advisory: c.advisory,
		Count:    len(c.invoices),
		LoadedAt: c.loadedAt,
	}
	if c.lastErr != nil {
		st.LastErr = c.lastErr.Error()
	}
	return st
}
