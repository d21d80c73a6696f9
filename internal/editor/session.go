package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"invoice-console/internal/invoice"
)

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrStaleSession    = errors.New("editor session was changed by another request")
)

const (
	DefaultSessionTTL = 2 * time.Hour
	sessionLockTTL    = 30 * time.Second
)

// Session is one operator's open dialog. Version counts stored writes.
type Session struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Version   int64     `json:"version"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore persists sessions between requests.
type SessionStore interface {
	// Save writes s only if the stored version still equals s.Version, then
	// bumps s.Version. Version 0 creates. A session deleted since it was
	// loaded is never written back.
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// Lock takes the submit lock for id; false means another submit holds it.
	Lock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id string) error
}

// Manager runs editor operations against stored sessions.
type Manager struct {
	store SessionStore
	saver Saver
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store SessionStore, saver Saver, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{store: store, saver: saver, ttl: ttl, now: time.Now}
}

// OpenNew starts a session seeded with the empty template.
func (m *Manager) OpenNew(ctx context.Context, owner string) (*Session, error) {
	ed := New()
	ed.OpenNew(m.now())
	return m.create(ctx, owner, ed)
}

// OpenEdit starts a session seeded with a copy of inv.
func (m *Manager) OpenEdit(ctx context.Context, owner string, inv invoice.Invoice) (*Session, error) {
	ed := New()
	ed.OpenEdit(inv)
	return m.create(ctx, owner, ed)
}

func (m *Manager) create(ctx context.Context, owner string, ed *Editor) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		State:     ed.State(),
		UpdatedAt: m.now(),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Get loads a session owned by owner.
func (m *Manager) Get(ctx context.Context, owner, id string) (*Session, error) {
	s, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Owner != owner {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// lock takes the session lock shared by Mutate, Submit and Cancel.
func (m *Manager) lock(ctx context.Context, id string) (func(), error) {
	ok, err := m.store.Lock(ctx, id, sessionLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return nil, ErrSubmitInProgress
	}
	return func() {
		if err := m.store.Unlock(context.Background(), id); err != nil {
			log.Printf("Failed to unlock editor session %s: %v", id, err)
		}
	}, nil
}

// Mutate applies fn to the session's editor and stores the result. The
// session is stored even when fn fails, so a rejected draft stays visible.
// While a submit holds the session, Mutate returns ErrSubmitInProgress.
func (m *Manager) Mutate(ctx context.Context, owner, id string, fn func(ed *Editor) error) (*Session, error) {
	if _, err := m.Get(ctx, owner, id); err != nil {
		return nil, err
	}
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := m.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	ed := Restore(s.State)
	fnErr := fn(ed)

	s.State = ed.State()
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, fnErr
}

// SubmitResult describes one submit attempt. Mode is the dialog mode the
// attempt was made in; Session holds the state after the attempt.
type SubmitResult struct {
	Session *Session
	Mode    Mode
	Saved   invoice.Invoice
}

// Submit saves the session's invoice upstream. A successful submit closes
// and deletes the session; a failed one keeps it with the error recorded.
// The result is nil only when the session could not be loaded or locked.
func (m *Manager) Submit(ctx context.Context, owner, id, token string) (*SubmitResult, error) {
	if _, err := m.Get(ctx, owner, id); err != nil {
		return nil, err
	}

	unlock, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := m.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	res := &SubmitResult{Session: s, Mode: s.State.Mode}
	ed := Restore(s.State)
	saved, submitErr := ed.Submit(ctx, m.saver, token)

	s.State = ed.State()
	s.UpdatedAt = m.now()
	if submitErr == nil {
		if err := m.store.Delete(ctx, id); err != nil {
			log.Printf("Failed to delete editor session %s: %v", id, err)
		}
		res.Saved = saved
		return res, nil
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		log.Printf("Failed to save editor session %s: %v", id, err)
	}
	return res, submitErr
}

// Cancel closes the dialog and forgets the session.
func (m *Manager) Cancel(ctx context.Context, owner, id string) error {
	if _, err := m.Get(ctx, owner, id); err != nil {
		return err
	}
	unlock, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return m.store.Delete(ctx, id)
}
