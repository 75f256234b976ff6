package render

import (
	"math"
	"strings"
	"testing"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

func TestRenderHighConfidenceGlioma(t *testing.T) {
	res, err := models.ParsePrediction([]byte(`{"prediction":"glioma","confidence":92,"probabilities":{"glioma":92,"meningioma":5,"notumor":2,"pituitary":1}}`))
	if err != nil {
		t.Fatalf("ParsePrediction error: %v", err)
	}

	view := Render(res, DefaultOptions())

	if !strings.Contains(view.Text, "glioma") || !strings.Contains(view.Text, "92%") {
		t.Fatalf("text = %q", view.Text)
	}
	if view.ConfidenceWidth != 92 {
		t.Fatalf("width = %v, want 92", view.ConfidenceWidth)
	}
	if view.LowConfidence || strings.Contains(view.Text, LowConfidenceAdvisory) {
		t.Fatalf("unexpected advisory in %q", view.Text)
	}
	if len(view.Probabilities) != 4 || view.Probabilities[0].Label != "glioma" || view.Probabilities[3].Display != "1%" {
		t.Fatalf("unexpected rows %+v", view.Probabilities)
	}
}

func TestRenderLowConfidenceAddsAdvisory(t *testing.T) {
	view := Render(&models.PredictionResult{
		Prediction:    "notumor",
		Confidence:    55,
		Probabilities: []models.Probability{{Label: "notumor", Value: 55}, {Label: "glioma", Value: 45}},
	}, DefaultOptions())

	if !view.LowConfidence {
		t.Fatal("expected low confidence")
	}
	if !strings.HasSuffix(view.Text, LowConfidenceAdvisory) {
		t.Fatalf("text = %q", view.Text)
	}
	if view.ConfidenceWidth != 55 {
		t.Fatalf("width = %v", view.ConfidenceWidth)
	}
}

func TestRenderThresholdIsConfigurable(t *testing.T) {
	res := &models.PredictionResult{Prediction: "pituitary", Confidence: 80}
	if Render(res, DefaultOptions()).LowConfidence {
		t.Fatal("80 must not be low with the default threshold")
	}
	if !Render(res, Options{LowConfidenceThreshold: 90, MaxEntries: 10}).LowConfidence {
		t.Fatal("80 must be low with threshold 90")
	}
}

func TestRenderClampsOutOfRangeValues(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -12, 0},
		{"over", 250, 100},
		{"nan", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 100},
		{"negative infinity", math.Inf(-1), 0},
		{"in range", 37.5, 37.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := Render(&models.PredictionResult{
				Prediction:    "x",
				Confidence:    tc.in,
				Probabilities: []models.Probability{{Label: "x", Value: tc.in}},
			}, DefaultOptions())
			if view.ConfidenceWidth != tc.want {
				t.Fatalf("confidence width = %v, want %v", view.ConfidenceWidth, tc.want)
			}
			if view.Probabilities[0].Percent != tc.want {
				t.Fatalf("probability = %v, want %v", view.Probabilities[0].Percent, tc.want)
			}
		})
	}
}

func TestRenderNegativeZeroShowsZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	view := Render(&models.PredictionResult{
		Prediction:    "notumor",
		Confidence:    negZero,
		Probabilities: []models.Probability{{Label: "notumor", Value: negZero}},
	}, DefaultOptions())

	if view.ConfidenceDisplay != "0%" {
		t.Fatalf("confidence display = %q, want 0%%", view.ConfidenceDisplay)
	}
	if view.Probabilities[0].Display != "0%" {
		t.Fatalf("probability display = %q, want 0%%", view.Probabilities[0].Display)
	}
	if strings.Contains(view.Text, "-0") {
		t.Fatalf("text shows a signed zero: %q", view.Text)
	}
	if math.Signbit(Clamp(negZero)) {
		t.Fatal("Clamp kept the sign of negative zero")
	}
}

func TestRenderCoercesNonNumericProbabilities(t *testing.T) {
	res, err := models.ParsePrediction([]byte(`{"prediction":"glioma","confidence":92,"probabilities":{"glioma":"88.5","meningioma":"abc","notumor":null,"pituitary":true}}`))
	if err != nil {
		t.Fatalf("ParsePrediction error: %v", err)
	}
	view := Render(res, DefaultOptions())
	if view.Probabilities[0].Label != "glioma" || view.Probabilities[0].Percent != 88.5 {
		t.Fatalf("unexpected first row %+v", view.Probabilities[0])
	}
	for _, row := range view.Probabilities[1:] {
		if row.Percent != 0 {
			t.Fatalf("row %+v should coerce to 0", row)
		}
	}
}

func TestRenderCapsProbabilityEntries(t *testing.T) {
	res := &models.PredictionResult{Prediction: "x", Confidence: 90}
	for i := 0; i < 25; i++ {
		res.Probabilities = append(res.Probabilities, models.Probability{Label: string(rune('a' + i)), Value: float64(i)})
	}

	view := Render(res, DefaultOptions())
	if len(view.Probabilities) != DefaultMaxEntries {
		t.Fatalf("rows = %d, want %d", len(view.Probabilities), DefaultMaxEntries)
	}
	if view.Probabilities[0].Label != "y" {
		t.Fatalf("expected highest value first, got %q", view.Probabilities[0].Label)
	}

	view = Render(res, Options{LowConfidenceThreshold: 70, MaxEntries: 3})
	if len(view.Probabilities) != 3 {
		t.Fatalf("rows = %d, want 3", len(view.Probabilities))
	}
}

func TestRenderKeepsDocumentOrderForTies(t *testing.T) {
	view := Render(&models.PredictionResult{
		Prediction:    "a",
		Confidence:    50,
		Probabilities: []models.Probability{{Label: "b", Value: 25}, {Label: "a", Value: 50}, {Label: "c", Value: 25}},
	}, DefaultOptions())

	got := []string{view.Probabilities[0].Label, view.Probabilities[1].Label, view.Probabilities[2].Label}
	if strings.Join(got, ",") != "a,b,c" {
		t.Fatalf("order = %v", got)
	}
}

func TestRenderNil(t *testing.T) {
	view := Render(nil, DefaultOptions())
	if view.Text != "" || view.Probabilities != nil {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{
		92:     "92%",
		92.5:   "92.5%",
		97.456: "97.5%",
		0:      "0%",
		100:    "100%",
	}
	for in, want := range cases {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderComparisonWithoutBestModel(t *testing.T) {
	res, err := models.ParseComparison([]byte(`{
		"best_model": null,
		"mobilenet": {"prediction":"glioma","confidence":91,"probabilities":{"glioma":91,"notumor":9}},
		"efficientnet": {"prediction":"glioma","confidence":64,"probabilities":{"glioma":64,"notumor":36}}
	}`))
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}

	view := RenderComparison(res, DefaultOptions())
	if view.Best != nil {
		t.Fatalf("expected no badge, got %+v", view.Best)
	}
	if len(view.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(view.Cards))
	}
	if view.Cards[0].Title != "MobileNet" || view.Cards[1].Title != "EfficientNet" {
		t.Fatalf("unexpected titles %q %q", view.Cards[0].Title, view.Cards[1].Title)
	}
	if view.Cards[0].View.LowConfidence || !view.Cards[1].View.LowConfidence {
		t.Fatal("low confidence must be judged per card")
	}
}

func TestRenderComparisonBestModel(t *testing.T) {
	view := RenderComparison(&models.ComparisonResult{
		BestModel:    &models.BestModel{Model: models.ModelEfficientNet, Prediction: "meningioma", Confidence: 140},
		MobileNet:    &models.PredictionResult{Prediction: "meningioma", Confidence: 80},
		EfficientNet: &models.PredictionResult{Prediction: "meningioma", Confidence: 99},
	}, DefaultOptions())

	if view.Best == nil || view.Best.Title != "EfficientNet" || view.Best.ConfidenceDisplay != "100%" {
		t.Fatalf("unexpected badge %+v", view.Best)
	}
}

func TestRenderComparisonInvalid(t *testing.T) {
	view := RenderComparison(&models.ComparisonResult{Invalid: true}, DefaultOptions())
	if !view.Invalid || view.Notice != DefaultInvalidNotice || len(view.Cards) != 0 {
		t.Fatalf("unexpected view %+v", view)
	}

	view = RenderComparison(&models.ComparisonResult{Invalid: true, Message: "Not an MRI"}, DefaultOptions())
	if view.Notice != "Not an MRI" {
		t.Fatalf("notice = %q", view.Notice)
	}
}
