package models

import (
	"errors"
	"mime"
	"net/http"
)

var (
	ErrEmptyUpload      = errors.New("no image uploaded")
	ErrUnsupportedMedia = errors.New("only image files are accepted")
	ErrUploadTooLarge   = errors.New("image exceeds the upload limit")
)

// rasterImages are the formats a scan may arrive in. Vector and scriptable
// formats such as image/svg+xml are refused.
var rasterImages = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

// IsRasterImage reports whether mediaType is an accepted raster image type.
func IsRasterImage(mediaType string) bool {
	_, ok := rasterImages[mediaType]
	return ok
}

// Upload is a user-selected image. It is held only while it is previewed and sent.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewUpload builds an Upload, sniffing the content type when the client did not declare a useful one.
func NewUpload(filename, contentType string, data []byte) Upload {
	mediaType := ""
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = parsed
		}
	}
	if (mediaType == "" || mediaType == "application/octet-stream") && len(data) > 0 {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	if filename == "" {
		filename = "upload"
	}
	return Upload{Filename: filename, ContentType: mediaType, Data: data}
}

func (u Upload) Validate() error {
	if len(u.Data) == 0 {
		return ErrEmptyUpload
	}
	if !IsRasterImage(u.ContentType) {
		return ErrUnsupportedMedia
	}
	return nil
}
