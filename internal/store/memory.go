// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds one *app.Visitor per browser session.
//
// Characteristics:
//   - Visitors keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Idle visitors are evicted by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seeron6/eras-portfolio/internal/app"
)

// ErrNotFound is returned by Get for unknown visitor IDs.
var ErrNotFound = errors.New("store: visitor not found")

// Store defines the persistence interface for visitor sessions.
type Store interface {
	// Save persists or replaces a visitor.
	Save(ctx context.Context, v *app.Visitor) error

	// Get retrieves a visitor by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*app.Visitor, error)

	// Sweep drops visitors idle since before cutoff and returns how many.
	Sweep(ctx context.Context, cutoff time.Time) int

	// Len is the number of live visitors.
	Len() int
}

type memory struct {
	mu       sync.RWMutex
	visitors map[string]*app.Visitor
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{visitors: make(map[string]*app.Visitor)}
}

func (m *memory) Save(ctx context.Context, v *app.Visitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visitors[v.ID] = v
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*app.Visitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.visitors[id]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Sweep(ctx context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, v := range m.visitors {
		if v.LastSeen().Before(cutoff) {
			delete(m.visitors, id)
			n++
		}
	}
	if n > 0 {
		log.Debug().Int("evicted", n).Int("live", len(m.visitors)).Msg("swept idle visitors")
	}
	return n
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visitors)
}

// RunSweeper evicts visitors idle for longer than ttl every interval until
// ctx is done.
func RunSweeper(ctx context.Context, s Store, ttl, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(ctx, now.Add(-ttl))
		}
	}
}
