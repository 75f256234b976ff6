package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

// Kind is the user-facing class of a failed request.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNetwork
	KindServer
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ValidationError covers a missing or unusable upload and a response that fails shape validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation failed: %v", e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }

// NetworkError means the service could not be reached or the exchange broke off.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("inference service unreachable: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx answer from the service.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("inference service returned status %d", e.StatusCode)
}

// TimeoutError means the client-side budget ran out before a response arrived.
type TimeoutError struct {
	Budget time.Duration
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("inference request timed out after %s", e.Budget)
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// ClassifyError maps any error returned by this package (or the upload checks) to a Kind.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		validationErr *ValidationError
		timeoutErr    *TimeoutError
		serverErr     *ServerError
		networkErr    *NetworkError
		shapeErr      *models.ShapeError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &serverErr):
		return KindServer
	case errors.As(err, &validationErr), errors.As(err, &shapeErr),
		errors.Is(err, models.ErrEmptyUpload), errors.Is(err, models.ErrUnsupportedMedia),
		errors.Is(err, models.ErrUploadTooLarge):
		return KindValidation
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindNetwork
	}
}

func transportError(ctx context.Context, budget time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Budget: budget, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Budget: budget, Err: err}
	}
	return &NetworkError{Err: err}
}
