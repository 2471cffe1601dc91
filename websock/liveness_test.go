package websock

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu          sync.Mutex
	closed      int
	closeFrames int
	failClose   bool
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeFrames++
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	if f.failClose {
		return errors.New("already closed")
	}
	return nil
}

func newTestRegistry(start time.Time) (*Registry, *time.Time) {
	reg := NewRegistry()
	now := start
	reg.now = func() time.Time { return now }
	return reg, &now
}

func TestSweepEvictsIdleConnection(t *testing.T) {
	reg, now := newTestRegistry(time.Unix(1000, 0))

	c := &fakeConn{}
	reg.Track("c1", c)

	*now = now.Add(IdleTimeout + time.Second)
	if evicted := reg.Sweep(IdleTimeout); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if c.closed == 0 || c.closeFrames == 0 {
		t.Fatal("expected close frame and close on evicted connection")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Len())
	}
}

func TestSweepSparesActiveConnection(t *testing.T) {
	reg, now := newTestRegistry(time.Unix(1000, 0))

	c := &fakeConn{}
	reg.Track("c1", c)

	// keep touching just inside the timeout across many ticks
	for i := 0; i < 20; i++ {
		*now = now.Add(IdleTimeout - time.Minute)
		reg.Touch("c1")
		if evicted := reg.Sweep(IdleTimeout); evicted != 0 {
			t.Fatalf("tick %d: active connection evicted", i)
		}
	}
	if reg.Len() != 1 {
		t.Fatal("active connection should survive sweeps")
	}
}

func TestSweepContinuesPastCloseFailure(t *testing.T) {
	reg, now := newTestRegistry(time.Unix(1000, 0))

	bad := &fakeConn{failClose: true}
	good := &fakeConn{}
	reg.Track("bad", bad)
	reg.Track("good", good)

	*now = now.Add(IdleTimeout + time.Second)
	if evicted := reg.Sweep(IdleTimeout); evicted != 2 {
		t.Fatalf("expected both evicted, got %d", evicted)
	}
	if good.closed == 0 {
		t.Fatal("close failure on one connection stopped the sweep")
	}
}

// A connection closed by a normal disconnect while the sweep is deciding must
// not make either path fail.
func TestRemoveRacingSweepIsSafe(t *testing.T) {
	reg, now := newTestRegistry(time.Unix(1000, 0))

	c := &fakeConn{}
	reg.Track("c1", c)
	*now = now.Add(IdleTimeout + time.Second)

	reg.Remove("c1") // disconnect wins
	if evicted := reg.Sweep(IdleTimeout); evicted != 0 {
		t.Fatalf("expected nothing to evict, got %d", evicted)
	}
	reg.Remove("c1") // idempotent
}

func TestTouchAfterRemoveIsIgnored(t *testing.T) {
	reg, _ := newTestRegistry(time.Unix(1000, 0))

	reg.Track("c1", &fakeConn{})
	reg.Remove("c1")
	reg.Touch("c1")

	if reg.Len() != 0 {
		t.Fatal("touch resurrected a removed connection")
	}
	reg.mu.RLock()
	_, ok := reg.lastActive["c1"]
	reg.mu.RUnlock()
	if ok {
		t.Fatal("stale last-activity entry left behind")
	}
}

func TestClearEmptiesRegistry(t *testing.T) {
	reg, _ := newTestRegistry(time.Unix(1000, 0))

	a, b := &fakeConn{}, &fakeConn{}
	reg.Track("a", a)
	reg.Track("b", b)

	reg.Clear()
	if reg.Len() != 0 {
		t.Fatal("expected cleared registry")
	}
	if a.closed == 0 || b.closed == 0 {
		t.Fatal("expected all connections closed on clear")
	}
}
