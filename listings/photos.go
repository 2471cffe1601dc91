package listings

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"perch/db"
	"perch/models"
	"perch/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const listingPhotoDir = "./static/listingpic"

func ensureDirExists(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func processPhotoUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image file: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	uniqueID := utils.GenerateRandomString(16)
	fileName := uniqueID + ".jpg"

	originalPath := filepath.Join(listingPhotoDir, fileName)
	thumbDir := filepath.Join(listingPhotoDir, "thumb")
	thumbnailPath := filepath.Join(thumbDir, fileName)

	if err := ensureDirExists(listingPhotoDir); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := ensureDirExists(thumbDir); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	if err := imaging.Save(img, originalPath); err != nil {
		return "", fmt.Errorf("failed to save original image: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, thumbnailPath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/listingpic/" + fileName, nil
}

// POST /api/listings/:id/photos — multipart upload, field "photos". Each
// image is re-encoded and given a 300px-wide thumbnail.
func UploadListingPhotos(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "no photos provided")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var listing models.Listing
	if err := db.ListingsCollection.FindOne(ctx, bson.M{"listingid": listingID}).Decode(&listing); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.HostID != utils.GetUserIDFromRequest(r) {
		utils.RespondWithError(w, http.StatusForbidden, "not your listing")
		return
	}

	var saved []string
	for _, file := range files {
		path, err := processPhotoUpload(file)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved = append(saved, path)
	}

	if _, err := db.ListingsCollection.UpdateOne(ctx,
		bson.M{"listingid": listingID},
		bson.M{"$push": bson.M{"photos": bson.M{"$each": saved}}},
	); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"photos": saved})
}
