package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const (
	imageField = "image"
	// room for the multipart envelope around the file
	formOverhead = 64 << 10
)

// readUpload pulls the image part out of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (models.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)

	file, header, err := r.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.Upload{}, models.ErrUploadTooLarge
		}
		return models.Upload{}, models.ErrEmptyUpload
	}
	defer file.Close()

	if header.Size > maxBytes {
		return models.Upload{}, models.ErrUploadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return models.Upload{}, models.ErrEmptyUpload
	}
	if int64(len(data)) > maxBytes {
		return models.Upload{}, models.ErrUploadTooLarge
	}

	upload := models.NewUpload(header.Filename, header.Header.Get("Content-Type"), data)
	if err := upload.Validate(); err != nil {
		return models.Upload{}, err
	}
	return upload, nil
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
