package notifications

import (
	"context"
	"errors"
	"testing"
)

// The read transition is keyed on matched count, not modified count, so a
// second mark of the same notification is a no-op success.
func TestMarkReadSecondMarkIsNoOpSuccess(t *testing.T) {
	read := map[string]bool{"n1": false}
	update := func(_ context.Context, id string) (int64, error) {
		if _, ok := read[id]; !ok {
			return 0, nil
		}
		read[id] = true
		return 1, nil
	}

	if err := markRead(context.Background(), "n1", update); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	if !read["n1"] {
		t.Fatal("first mark did not set the flag")
	}
	if err := markRead(context.Background(), "n1", update); err != nil {
		t.Fatalf("second mark failed: %v", err)
	}
}

func TestMarkReadMissingNotification(t *testing.T) {
	update := func(_ context.Context, _ string) (int64, error) {
		return 0, nil
	}
	if err := markRead(context.Background(), "ghost", update); err != errNotificationMissing {
		t.Fatalf("got %v, want errNotificationMissing", err)
	}
}

func TestMarkReadPropagatesStoreError(t *testing.T) {
	boom := errors.New("update failed")
	update := func(_ context.Context, _ string) (int64, error) {
		return 0, boom
	}
	if err := markRead(context.Background(), "n1", update); err != boom {
		t.Fatalf("got %v, want the store error", err)
	}
}
