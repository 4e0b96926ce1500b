package designer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/p-n-ai/curriculum-designer/internal/agent"
	"github.com/p-n-ai/curriculum-designer/internal/chat"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Registry is an in-memory set of designer sessions keyed by id. Idle
// sessions are evicted after the TTL.
type Registry struct {
	ttl    time.Duration
	events agent.EventLogger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. A zero ttl uses DefaultTTL.
func NewRegistry(ttl time.Duration, events agent.EventLogger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		ttl:      ttl,
		events:   events,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session on the dashboard.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.events, r.now())

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	slog.Debug("designer session created", "session_id", s.id)
	return s
}

// Get returns the session and marks it as active.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// ChatSession resolves the chat transcript of a session.
func (r *Registry) ChatSession(id string) (*chat.Session, bool) {
	s, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	return s.Chat(), true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(); n > 0 {
				slog.Info("idle designer sessions evicted", "count", n, "remaining", r.Len())
			}
		}
	}
}
