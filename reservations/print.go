package reservations

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"perch/db"
	"perch/middleware"
	"perch/models"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

var confirmationSecret = func() []byte {
	if s := os.Getenv("CONFIRMATION_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("perch-confirmation-secret")
}()

// confirmationPayload signs listingID|bookingCode|timestamp so the QR code on
// a printed confirmation can be verified at check-in.
func confirmationPayload(listingID, bookingCode string) string {
	data := fmt.Sprintf("%s|%s|%d", listingID, bookingCode, time.Now().Unix())

	h := hmac.New(sha256.New, confirmationSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// GET /api/reservations/:id/print — renders a PDF confirmation with a signed
// QR code. Only the guest who holds the reservation may print it.
func PrintConfirmation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, err := middleware.ValidateJWT(r.Header.Get("Authorization"))
	if err != nil {
		log.Printf("JWT validation error: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resv models.Reservation
	if err := db.ReservationsCollection.FindOne(ctx, bson.M{"reservationid": ps.ByName("id")}).Decode(&resv); err != nil {
		http.Error(w, "Reservation not found", http.StatusNotFound)
		return
	}
	if resv.GuestID != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if resv.Cancelled {
		http.Error(w, "Reservation is cancelled", http.StatusConflict)
		return
	}

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": resv.ListingID}).Decode(&listing); err != nil {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}

	qrPNG, err := qrcode.Encode(confirmationPayload(resv.ListingID, resv.BookingCode), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Reservation Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Stay: %s", listing.Title))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Guest: %s", claims.Username))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Check-in: %s", resv.CheckIn))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Check-out: %s", resv.CheckOut))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Nights: %d  Total: %.2f", resv.Nights, resv.TotalPrice))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Booking Code: %s", resv.BookingCode))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=confirmation-"+resv.BookingCode+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
