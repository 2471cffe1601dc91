package websock

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// SweepInterval is how often idle connections are checked.
	SweepInterval = 30 * time.Second
	// IdleTimeout is how long a connection may stay silent before the sweep
	// closes it.
	IdleTimeout = 5 * time.Minute
)

// Conn is the slice of *websocket.Conn the registry needs. Kept narrow so
// tests can hand in fakes.
type Conn interface {
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Registry tracks every open realtime connection and its last-activity time.
// An entry exists exactly while the underlying transport is open: Track on
// connect, Touch on every frame in either direction, Remove on disconnect.
type Registry struct {
	mu         sync.RWMutex
	conns      map[string]Conn
	lastActive map[string]time.Time
	now        func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		conns:      make(map[string]Conn),
		lastActive: make(map[string]time.Time),
		now:        time.Now,
	}
}

func (reg *Registry) Track(connID string, c Conn) {
	reg.mu.Lock()
	reg.conns[connID] = c
	reg.lastActive[connID] = reg.now()
	reg.mu.Unlock()
}

// Touch refreshes the last-activity stamp. Untracked ids are ignored, so a
// frame racing a disconnect is harmless.
func (reg *Registry) Touch(connID string) {
	reg.mu.Lock()
	if _, ok := reg.conns[connID]; ok {
		reg.lastActive[connID] = reg.now()
	}
	reg.mu.Unlock()
}

// Remove drops both entries. Idempotent; safe against a concurrent sweep.
func (reg *Registry) Remove(connID string) {
	reg.mu.Lock()
	delete(reg.conns, connID)
	delete(reg.lastActive, connID)
	reg.mu.Unlock()
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.conns)
}

// Sweep closes and evicts every connection idle longer than idleAfter,
// returning how many were evicted. A close failure on one connection is
// logged and does not stop the rest of the sweep.
func (reg *Registry) Sweep(idleAfter time.Duration) int {
	cutoff := reg.now().Add(-idleAfter)

	reg.mu.RLock()
	stale := make(map[string]Conn)
	for id, last := range reg.lastActive {
		if last.Before(cutoff) {
			stale[id] = reg.conns[id]
		}
	}
	reg.mu.RUnlock()

	evicted := 0
	for id, c := range stale {
		if c != nil {
			deadline := time.Now().Add(5 * time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "idle timeout")
			if err := c.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
				log.Printf("sweep: close frame to %s failed: %v", id, err)
			}
			if err := c.Close(); err != nil {
				log.Printf("sweep: closing %s failed: %v", id, err)
			}
		}
		reg.Remove(id)
		evicted++
	}
	return evicted
}

// Start runs the periodic sweep until ctx is cancelled.
func (reg *Registry) Start(ctx context.Context, interval, idleAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := reg.Sweep(idleAfter); n > 0 {
				log.Printf("sweep: evicted %d idle connection(s)", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Clear force-closes everything; used on shutdown.
func (reg *Registry) Clear() {
	reg.mu.Lock()
	conns := reg.conns
	reg.conns = make(map[string]Conn)
	reg.lastActive = make(map[string]time.Time)
	reg.mu.Unlock()

	for id, c := range conns {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			log.Printf("shutdown: closing %s failed: %v", id, err)
		}
	}
}

// DefaultRegistry is the process-wide connection registry.
var DefaultRegistry = NewRegistry()
