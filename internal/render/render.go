package render

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const (
	DefaultLowConfidenceThreshold = 70
	DefaultMaxEntries             = 10

	LowConfidenceAdvisory = "Low confidence – manual review advised."
)

// Options are the display policies applied to every result.
type Options struct {
	LowConfidenceThreshold float64
	MaxEntries             int
}

func DefaultOptions() Options {
	return Options{
		LowConfidenceThreshold: DefaultLowConfidenceThreshold,
		MaxEntries:             DefaultMaxEntries,
	}
}

// Row is one displayed class probability.
type Row struct {
	Label   string
	Percent float64
	Display string
}

// View is everything the result pane shows for one model. All strings are plain text.
type View struct {
	Prediction        string
	Text              string
	Lines             []string
	Confidence        float64
	ConfidenceDisplay string
	ConfidenceWidth   float64
	LowConfidence     bool
	Probabilities     []Row
}

// Render builds the display view of a prediction. A nil result renders as an empty view.
func Render(res *models.PredictionResult, opts Options) View {
	if res == nil {
		return View{}
	}

	confidence := Clamp(res.Confidence)
	view := View{
		Prediction:        res.Prediction,
		Confidence:        confidence,
		ConfidenceDisplay: FormatPercent(confidence),
		ConfidenceWidth:   confidence,
		LowConfidence:     confidence < opts.LowConfidenceThreshold,
	}

	view.Lines = []string{
		"Prediction: " + res.Prediction,
		"Confidence: " + view.ConfidenceDisplay,
	}
	if view.LowConfidence {
		view.Lines = append(view.Lines, LowConfidenceAdvisory)
	}
	view.Text = strings.Join(view.Lines, "\n")
	view.Probabilities = rows(res.Probabilities, opts.MaxEntries)

	return view
}

func rows(probabilities []models.Probability, maxEntries int) []Row {
	if len(probabilities) == 0 {
		return nil
	}

	out := make([]Row, 0, len(probabilities))
	for _, p := range probabilities {
		percent := Clamp(p.Value)
		out = append(out, Row{
			Label:   p.Label,
			Percent: percent,
			Display: FormatPercent(percent),
		})
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		return cmp.Compare(b.Percent, a.Percent)
	})

	if maxEntries > 0 && len(out) > maxEntries {
		out = out[:maxEntries]
	}
	return out
}

// Clamp bounds v to [0,100]. NaN and negative zero become 0.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// FormatPercent renders v with at most one decimal: 92 -> "92%", 92.46 -> "92.5%".
func FormatPercent(v float64) string {
	rounded := math.Round(v*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
}

func ModelTitle(model string) string {
	switch model {
	case models.ModelMobileNet:
		return "MobileNet"
	case models.ModelEfficientNet:
		return "EfficientNet"
	default:
		return model
	}
}

// Summary is a one-line description used in logs and the JSON API.
func (v View) Summary() string {
	return fmt.Sprintf("%s (%s)", v.Prediction, v.ConfidenceDisplay)
}
