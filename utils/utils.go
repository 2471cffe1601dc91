package utils

import (
	"crypto/rand"
	"math/big"
	rndm "math/rand"
	"net/http"

	"perch/globals"
	"perch/middleware"
)

// --- Random String and ID Generators ---

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyz0123456789_ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// BookingCodeAlphabet is the character set booking codes are drawn from.
const BookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString creates a random alphanumeric string of length n.
func GenerateRandomString(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rndm.Intn(len(letterRunes))]
	}
	return string(b)
}

// GenerateBookingCode draws n characters uniformly from [A-Z0-9] using
// crypto/rand. Booking codes are shared with guests, so they must not be
// guessable from earlier codes.
func GenerateBookingCode(n int) string {
	max := big.NewInt(int64(len(BookingCodeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken;
			// fall back to the non-crypto generator rather than panic.
			b[i] = BookingCodeAlphabet[rndm.Intn(len(BookingCodeAlphabet))]
			continue
		}
		b[i] = BookingCodeAlphabet[idx.Int64()]
	}
	return string(b)
}

// --- Request helpers ---

func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}

func GetUsernameFromRequest(r *http.Request) string {
	tokenString := r.Header.Get("Authorization")
	claims, err := middleware.ValidateJWT(tokenString)
	if err != nil {
		return ""
	}
	return claims.Username
}
