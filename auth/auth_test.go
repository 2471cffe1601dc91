package auth

import (
	"testing"
	"time"

	"perch/models"
)

func TestCheckRefreshToken(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	stored := hashToken("good-token")

	user := models.User{RefreshToken: stored, RefreshExpiry: now.Add(time.Hour)}

	if err := checkRefreshToken(user, "good-token", now); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if err := checkRefreshToken(user, "wrong-token", now); err != errRefreshInvalid {
		t.Fatalf("wrong token got %v, want errRefreshInvalid", err)
	}
	if err := checkRefreshToken(user, "", now); err != errRefreshInvalid {
		t.Fatalf("empty token got %v, want errRefreshInvalid", err)
	}

	expired := models.User{RefreshToken: stored, RefreshExpiry: now.Add(-time.Minute)}
	if err := checkRefreshToken(expired, "good-token", now); err != errRefreshExpired {
		t.Fatalf("expired token got %v, want errRefreshExpired", err)
	}

	// a user who never logged in has no stored hash; nothing matches it
	if err := checkRefreshToken(models.User{}, "good-token", now); err != errRefreshInvalid {
		t.Fatalf("no stored token got %v, want errRefreshInvalid", err)
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	if hashToken("abc") != hashToken("abc") {
		t.Fatal("same input hashed differently")
	}
	if hashToken("abc") == hashToken("abd") {
		t.Fatal("different inputs collided")
	}
}
