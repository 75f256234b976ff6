package charts

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
)

// ErrNoData means the inputs cannot produce the chart. Callers suppress it instead of failing.
var ErrNoData = errors.New("charts: not enough data")

const (
	height      = 360
	barWidth    = 36
	barSpacing  = 18
	basePadding = 120
	maxLabelLen = 18
)

var (
	colorFirst  = drawing.ColorFromHex("38bdf8")
	colorSecond = drawing.ColorFromHex("4ade80")
)

// ProbabilityChart draws one model's class probabilities, highest first,
// keeping at most maxEntries bars. maxEntries <= 0 disables the cap.
func ProbabilityChart(title string, res *models.PredictionResult, maxEntries int) ([]byte, error) {
	if !res.HasProbabilities() {
		return nil, ErrNoData
	}
	return draw(label(title), probabilityBars(res, maxEntries))
}

// ProbabilityComparison draws per-class bars for both models side by side.
// Classes are ranked by the higher of the two scores and capped at maxEntries groups.
func ProbabilityComparison(mobilenet, efficientnet *models.PredictionResult, maxEntries int) ([]byte, error) {
	if !mobilenet.HasProbabilities() || !efficientnet.HasProbabilities() {
		return nil, ErrNoData
	}

	title := fmt.Sprintf("Class probabilities: %s vs %s",
		render.ModelTitle(models.ModelMobileNet), render.ModelTitle(models.ModelEfficientNet))
	return draw(title, comparisonBars(mobilenet, efficientnet, maxEntries))
}

// ConfidenceComparison draws the overall confidence of each model. A missing model gets no bar.
func ConfidenceComparison(mobilenet, efficientnet *models.PredictionResult) ([]byte, error) {
	var bars []chart.Value
	if mobilenet != nil {
		bars = append(bars, bar(mobilenet.Confidence, render.ModelTitle(models.ModelMobileNet), colorFirst))
	}
	if efficientnet != nil {
		bars = append(bars, bar(efficientnet.Confidence, render.ModelTitle(models.ModelEfficientNet), colorSecond))
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return draw("Confidence", bars)
}

func probabilityBars(res *models.PredictionResult, maxEntries int) []chart.Value {
	ranked := rank(len(res.Probabilities), func(i int) (string, float64) {
		p := res.Probabilities[i]
		return p.Label, render.Clamp(p.Value)
	}, maxEntries)

	bars := make([]chart.Value, 0, len(ranked))
	for _, e := range ranked {
		bars = append(bars, bar(e.value, label(e.label), colorFirst))
	}
	return bars
}

func comparisonBars(mobilenet, efficientnet *models.PredictionResult, maxEntries int) []chart.Value {
	labels := unionLabels(mobilenet, efficientnet)
	va, vb := scores(mobilenet), scores(efficientnet)
	ranked := rank(len(labels), func(i int) (string, float64) {
		l := labels[i]
		return l, max(render.Clamp(va[l]), render.Clamp(vb[l]))
	}, maxEntries)

	bars := make([]chart.Value, 0, 2*len(ranked))
	for _, e := range ranked {
		bars = append(bars,
			bar(va[e.label], label(e.label), colorFirst),
			bar(vb[e.label], "", colorSecond),
		)
	}
	return bars
}

// scores indexes probabilities by label. The first occurrence of a label wins,
// matching PredictionResult.Probability.
func scores(res *models.PredictionResult) map[string]float64 {
	out := make(map[string]float64, len(res.Probabilities))
	for _, p := range res.Probabilities {
		if _, ok := out[p.Label]; !ok {
			out[p.Label] = p.Value
		}
	}
	return out
}

type entry struct {
	label string
	value float64
}

// rank orders n entries by value, highest first, keeping ties in input order,
// then keeps the first maxEntries.
func rank(n int, at func(i int) (string, float64), maxEntries int) []entry {
	out := make([]entry, 0, n)
	for i := range n {
		l, v := at(i)
		out = append(out, entry{label: l, value: v})
	}
	slices.SortStableFunc(out, func(a, b entry) int {
		return cmp.Compare(b.value, a.value)
	})
	if maxEntries > 0 && len(out) > maxEntries {
		out = out[:maxEntries]
	}
	return out
}

func draw(title string, bars []chart.Value) ([]byte, error) {
	graph := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Height:     height,
		Width:      basePadding + len(bars)*(barWidth+barSpacing),
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

func bar(value float64, text string, color drawing.Color) chart.Value {
	return chart.Value{
		Value: render.Clamp(value),
		Label: text,
		Style: chart.Style{
			FillColor:   color,
			StrokeColor: color,
			StrokeWidth: 1,
		},
	}
}

func unionLabels(a, b *models.PredictionResult) []string {
	seen := make(map[string]struct{}, len(a.Probabilities)+len(b.Probabilities))
	var out []string
	for _, res := range []*models.PredictionResult{a, b} {
		for _, p := range res.Probabilities {
			if _, ok := seen[p.Label]; ok {
				continue
			}
			seen[p.Label] = struct{}{}
			out = append(out, p.Label)
		}
	}
	return out
}

// label makes service-provided text safe to draw: no control characters, bounded length.
func label(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxLabelLen {
		return string(runes[:maxLabelLen-1]) + "…"
	}
	return s
}
