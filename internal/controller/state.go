package controller

import (
	"time"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

type Mode string

const (
	ModePredict Mode = "predict"
	ModeCompare Mode = "compare"
)

func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModePredict, ModeCompare:
		return Mode(s), true
	default:
		return "", false
	}
}

// Ticket identifies one upload flow. Only the newest ticket of a session may change its state.
type Ticket struct {
	SessionID  string
	Generation uint64
	Mode       Mode
}

// Banner is a transient, non-blocking message.
type Banner struct {
	Kind         string
	Message      string
	DismissAfter time.Duration
	ExpiresAt    time.Time
}

// Outcome is a successful response for a ticket's mode.
type Outcome struct {
	Prediction *models.PredictionResult
	Comparison *models.ComparisonResult
}

// State is a copy of a session's UI state, safe to read without the controller lock.
type State struct {
	SessionID  string
	Phase      Phase
	Mode       Mode
	Generation uint64
	Prediction *models.PredictionResult
	Comparison *models.ComparisonResult
	Banner     *Banner
	PreviewURI string
}

// Loading reports whether the loading indicator is shown.
func (s State) Loading() bool {
	return s.Phase == PhaseUploading
}

func (s State) HasResult() bool {
	return s.Phase == PhaseSuccess && (s.Prediction != nil || s.Comparison != nil)
}
