package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/media"
	"github.com/MrJamesThe3rd/pairup/internal/roster"
)

// Registry keeps the live sessions of one process in memory.
type Registry struct {
	opts []matcher.Option

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry returns an empty registry whose sessions are built with opts.
func NewRegistry(opts ...matcher.Option) *Registry {
	return &Registry{
		opts:     opts,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (r *Registry) Create(recipients []roster.Recipient, files []media.File) (*Session, error) {
	s, err := New(recipients, files, r.opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	slog.Info("session created", "session", s.ID, "recipients", len(recipients), "files", len(files))

	return s, nil
}

func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	return s, nil
}

func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}

	delete(r.sessions, id)

	return nil
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
