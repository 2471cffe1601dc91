package reservations

import (
	"sync"
	"testing"
	"time"
)

type fakeLockStore struct {
	mu   sync.Mutex
	vals map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{vals: make(map[string]string)}
}

func (s *fakeLockStore) setNX(key, value string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.vals[key]; held {
		return false, nil
	}
	s.vals[key] = value
	return true, nil
}

func (s *fakeLockStore) unlock(key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vals[key] != value {
		return false, nil
	}
	delete(s.vals, key)
	return true, nil
}

func (s *fakeLockStore) expire(key string) {
	s.mu.Lock()
	delete(s.vals, key)
	s.mu.Unlock()
}

func (s *fakeLockStore) held(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.vals[key]
	return ok
}

// A holder that outlives the TTL must not delete the lock its successor now
// holds.
func TestListingLockReleaseIsTokenGuarded(t *testing.T) {
	store := newFakeLockStore()
	l := listingLock{setNX: store.setNX, unlock: store.unlock}

	unlockA, ok := l.acquire("listing-1")
	if !ok {
		t.Fatal("first acquire failed")
	}

	// the TTL fires while A is still working; B takes the lock over
	store.expire("listing_lock:listing-1")
	unlockB, ok := l.acquire("listing-1")
	if !ok {
		t.Fatal("acquire after expiry failed")
	}

	unlockA()
	if !store.held("listing_lock:listing-1") {
		t.Fatal("stale holder released the successor's lock")
	}

	unlockB()
	if store.held("listing_lock:listing-1") {
		t.Fatal("owner release left the lock behind")
	}
}

func TestListingLockSecondAcquireFailsWhileHeld(t *testing.T) {
	store := newFakeLockStore()
	l := listingLock{setNX: store.setNX, unlock: store.unlock}

	unlock, ok := l.acquire("listing-1")
	if !ok {
		t.Fatal("first acquire failed")
	}
	defer unlock()

	if _, ok := l.acquire("listing-1"); ok {
		t.Fatal("second acquire succeeded while held")
	}
}
