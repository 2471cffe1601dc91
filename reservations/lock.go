package reservations

import (
	"log"
	"time"

	"perch/rdx"

	"github.com/google/uuid"
)

const (
	listingLockTTL     = 5 * time.Second
	listingLockRetries = 3
	listingLockBackoff = 50 * time.Millisecond
)

// listingLock serializes reservation writes per listing through a Redis
// SetNX lock. The lock value is a per-acquisition token and release is
// token-guarded, so a holder that outlives the TTL cannot delete a
// successor's lock.
type listingLock struct {
	setNX  func(key, value string, ttl time.Duration) (bool, error)
	unlock func(key, value string) (bool, error)
}

var defaultListingLock = listingLock{setNX: rdx.RdxSetNX, unlock: rdx.RdxUnlock}

func (l listingLock) acquire(listingID string) (func(), bool) {
	key := "listing_lock:" + listingID
	token := uuid.NewString()
	for i := 0; i < listingLockRetries; i++ {
		ok, err := l.setNX(key, token, listingLockTTL)
		if err != nil {
			log.Printf("listing lock %s: %v", listingID, err)
			return nil, false
		}
		if ok {
			return func() {
				released, err := l.unlock(key, token)
				if err != nil {
					log.Printf("listing unlock %s: %v", listingID, err)
				} else if !released {
					log.Printf("listing unlock %s: lock expired and was taken over", listingID)
				}
			}, true
		}
		time.Sleep(listingLockBackoff)
	}
	return nil, false
}

func acquireListingLock(listingID string) (func(), bool) {
	return defaultListingLock.acquire(listingID)
}
