package controller

import (
	"errors"

	"github.com/phani41/brain-tumor-detection-cnn/internal/inference"
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const (
	MsgMissingImage      = "Please upload an MRI image"
	MsgNotAnImage        = "Please upload an image file"
	MsgTooLarge          = "The image is too large. Please choose a smaller file."
	MsgMalformedResponse = "Unexpected response from the prediction service."
	MsgNetwork           = "Network error. Please check your connection."
	MsgServer            = "Server error. Please try again later."
	MsgTimeout           = "Request timeout. Please try again."
)

// Message turns err into the text shown in the banner. Raw error text never reaches the page.
func Message(err error) string {
	switch inference.ClassifyError(err) {
	case inference.KindValidation:
		switch {
		case errors.Is(err, models.ErrEmptyUpload):
			return MsgMissingImage
		case errors.Is(err, models.ErrUnsupportedMedia):
			return MsgNotAnImage
		case errors.Is(err, models.ErrUploadTooLarge):
			return MsgTooLarge
		default:
			return MsgMalformedResponse
		}
	case inference.KindServer:
		return MsgServer
	case inference.KindTimeout:
		return MsgTimeout
	default:
		return MsgNetwork
	}
}
