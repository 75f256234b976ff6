package charts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func result(conf float64, probs ...models.Probability) *models.PredictionResult {
	return &models.PredictionResult{Prediction: "glioma", Confidence: conf, Probabilities: probs}
}

func requirePNG(t *testing.T, data []byte, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		t.Fatalf("output is not a PNG (%d bytes)", len(data))
	}
}

func TestProbabilityChart(t *testing.T) {
	data, err := ProbabilityChart("MobileNet", result(92,
		models.Probability{Label: "glioma", Value: 92},
		models.Probability{Label: "<b>meningioma</b>", Value: 5},
		models.Probability{Label: "notumor", Value: -3},
		models.Probability{Label: "pituitary", Value: 400},
	), 10)
	requirePNG(t, data, err)
}

func TestProbabilityChartWithoutProbabilities(t *testing.T) {
	if _, err := ProbabilityChart("MobileNet", result(92), 10); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := ProbabilityChart("MobileNet", nil, 10); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for nil result, got %v", err)
	}
}

func TestProbabilityComparison(t *testing.T) {
	a := result(90, models.Probability{Label: "glioma", Value: 90}, models.Probability{Label: "notumor", Value: 10})
	b := result(70, models.Probability{Label: "notumor", Value: 30}, models.Probability{Label: "pituitary", Value: 70})

	data, err := ProbabilityComparison(a, b, 10)
	requirePNG(t, data, err)

	if got := strings.Join(unionLabels(a, b), ","); got != "glioma,notumor,pituitary" {
		t.Fatalf("union labels = %s", got)
	}
}

func TestProbabilityComparisonSkippedWhenEitherMissing(t *testing.T) {
	full := result(90, models.Probability{Label: "glioma", Value: 90})
	for _, tc := range []struct {
		name string
		a, b *models.PredictionResult
	}{
		{"first empty", result(90), full},
		{"second empty", full, result(90)},
		{"second nil", full, nil},
	} {
		if _, err := ProbabilityComparison(tc.a, tc.b, 10); !errors.Is(err, ErrNoData) {
			t.Errorf("%s: expected ErrNoData, got %v", tc.name, err)
		}
	}
}

func manyClasses(n int) *models.PredictionResult {
	probs := make([]models.Probability, 0, n)
	for i := range n {
		probs = append(probs, models.Probability{Label: fmt.Sprintf("class-%04d", i), Value: float64(i % 100)})
	}
	return result(50, probs...)
}

func TestProbabilityBarsCapped(t *testing.T) {
	bars := probabilityBars(manyClasses(2000), 10)
	if len(bars) != 10 {
		t.Fatalf("bars = %d, want 10", len(bars))
	}
	if bars[0].Value != 99 || bars[9].Value != 99 {
		t.Fatalf("expected the highest scores first, got %v..%v", bars[0].Value, bars[9].Value)
	}

	if got := len(probabilityBars(manyClasses(3), 10)); got != 3 {
		t.Fatalf("small payload bars = %d, want 3", got)
	}
}

func TestComparisonBarsCapped(t *testing.T) {
	a := manyClasses(2000)
	b := result(50, models.Probability{Label: "extra", Value: 100})

	bars := comparisonBars(a, b, 10)
	if len(bars) != 2*10 {
		t.Fatalf("bars = %d, want %d (10 groups)", len(bars), 2*10)
	}
	if bars[0].Label != "extra" || bars[0].Value != 0 || bars[1].Value != 100 {
		t.Fatalf("label only the second model reported should rank first: %+v %+v", bars[0], bars[1])
	}

	data, err := ProbabilityComparison(a, b, 10)
	requirePNG(t, data, err)
}

func TestRankKeepsTieOrder(t *testing.T) {
	labels := []string{"a", "b", "c", "d"}
	values := []float64{5, 9, 5, 9}
	got := rank(len(labels), func(i int) (string, float64) { return labels[i], values[i] }, 3)

	var order []string
	for _, e := range got {
		order = append(order, e.label)
	}
	if strings.Join(order, ",") != "b,d,a" {
		t.Fatalf("rank order = %v", order)
	}
}

func TestConfidenceComparison(t *testing.T) {
	data, err := ConfidenceComparison(result(90), result(60))
	requirePNG(t, data, err)

	data, err = ConfidenceComparison(nil, result(60))
	requirePNG(t, data, err)

	if _, err := ConfidenceComparison(nil, nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestLabel(t *testing.T) {
	if got := label("glio\x00ma\n"); got != "glioma" {
		t.Fatalf("label = %q", got)
	}
	long := label(strings.Repeat("x", 50))
	if n := len([]rune(long)); n != maxLabelLen {
		t.Fatalf("label length = %d, want %d", n, maxLabelLen)
	}
}
