package preview

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"mime"
	"net/http"

	"github.com/nfnt/resize"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const (
	// MaxEdge bounds the longer side of a stored preview.
	MaxEdge = 512

	maxDecodePixels = 40_000_000

	opaqueType = "application/octet-stream"
)

// thumbnail downscales large decodable images for display. Anything it cannot
// decode or re-encode keeps its bytes. The returned type always comes from the
// bytes, never from what the client declared.
func thumbnail(upload models.Upload) (string, []byte) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(upload.Data))
	if err != nil {
		return sniffRaster(upload.Data), upload.Data
	}
	original := "image/" + format
	if cfg.Width*cfg.Height > maxDecodePixels || (cfg.Width <= MaxEdge && cfg.Height <= MaxEdge) {
		return original, upload.Data
	}

	img, format, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return original, upload.Data
	}

	small := resize.Thumbnail(MaxEdge, MaxEdge, img, resize.Lanczos3)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: 85}); err != nil {
			return original, upload.Data
		}
		return "image/jpeg", buf.Bytes()
	}
	if err := png.Encode(&buf, small); err != nil {
		return original, upload.Data
	}
	return "image/png", buf.Bytes()
}

// sniffRaster names data by its leading bytes. Anything that is not a raster
// image is served as an opaque download type so a browser never renders it as a document.
func sniffRaster(data []byte) string {
	sniffed, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil || !models.IsRasterImage(sniffed) {
		return opaqueType
	}
	return sniffed
}
