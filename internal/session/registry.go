package session

import (
	"context"
	"errors"
	stdlog "log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/peterkuimelis/bridgegen/internal/log"
	"github.com/peterkuimelis/bridgegen/internal/metrics"
)

var ErrUnknownSession = errors.New("unknown session")

// Registry holds the open sessions of one process, keyed by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	lastUsed map[string]time.Time
	newOpts  func() Options
	now      func() time.Time
}

// NewRegistry creates a registry whose sessions start from newOpts(). Each session gets
// a fresh id and its own event log.
func NewRegistry(newOpts func() Options) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		lastUsed: make(map[string]time.Time),
		newOpts:  newOpts,
		now:      time.Now,
	}
}

// Create opens a session.
func (r *Registry) Create() *Session {
	opts := r.newOpts()
	opts.ID = uuid.NewString()
	if opts.Logger == nil {
		opts.Logger = log.NewMemoryLogger()
	}
	s := New(opts)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.lastUsed[s.ID()] = r.now()
	r.mu.Unlock()
	metrics.Sessions.Inc()
	return s
}

// Get looks a session up and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	r.lastUsed[id] = r.now()
	return s, nil
}

// Remove drops a session. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		delete(r.lastUsed, id)
		metrics.Sessions.Dec()
	}
}

// EvictIdle removes the sessions nobody has looked up for longer than maxIdle and
// returns how many went. A session still generating is kept.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for id, s := range r.sessions {
		if !r.lastUsed[id].Before(cutoff) || s.Generating() {
			continue
		}
		delete(r.sessions, id)
		delete(r.lastUsed, id)
		metrics.Sessions.Dec()
		n++
	}
	return n
}

// RunEviction calls EvictIdle every interval until ctx ends.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				stdlog.Printf("evicted %d idle sessions", n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
