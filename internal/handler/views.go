package handler

import (
	"fmt"
	"net/url"

	"github.com/phani41/brain-tumor-detection-cnn/internal/controller"
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
)

const (
	chartProbabilities           = "probabilities"
	chartComparisonProbabilities = "comparison-probabilities"
	chartComparisonConfidence    = "comparison-confidence"
)

type chartRef struct {
	Name string
	Alt  string
	URL  string
}

type bannerView struct {
	Kind          string
	Message       string
	DismissMillis int64
}

// fragmentView is the data behind the swappable part of the page.
type fragmentView struct {
	Generation uint64
	Phase      string
	Mode       string
	Loading    bool
	PreviewURI string
	Banner     *bannerView
	Result     *render.View
	Comparison *render.ComparisonView
	Charts     []chartRef
}

type pageView struct {
	Title    string
	Mode     string
	Fragment fragmentView
}

func newFragmentView(st controller.State, opts render.Options) fragmentView {
	v := fragmentView{
		Generation: st.Generation,
		Phase:      st.Phase.String(),
		Mode:       string(st.Mode),
		Loading:    st.Loading(),
		PreviewURI: st.PreviewURI,
	}
	if st.Banner != nil {
		v.Banner = &bannerView{
			Kind:          st.Banner.Kind,
			Message:       st.Banner.Message,
			DismissMillis: st.Banner.DismissAfter.Milliseconds(),
		}
	}
	if !st.HasResult() {
		return v
	}

	switch st.Mode {
	case controller.ModeCompare:
		cv := render.RenderComparison(st.Comparison, opts)
		v.Comparison = &cv
		if cv.Invalid {
			break
		}
		cmp := st.Comparison
		if cmp.MobileNet.HasProbabilities() && cmp.EfficientNet.HasProbabilities() {
			v.Charts = append(v.Charts, newChartRef(chartComparisonProbabilities, "Per-class probability comparison", st.Generation))
		}
		if cmp.MobileNet != nil || cmp.EfficientNet != nil {
			v.Charts = append(v.Charts, newChartRef(chartComparisonConfidence, "Confidence comparison", st.Generation))
		}
	default:
		rv := render.Render(st.Prediction, opts)
		v.Result = &rv
		if st.Prediction.HasProbabilities() {
			v.Charts = append(v.Charts, newChartRef(chartProbabilities, "Class probabilities", st.Generation))
		}
	}
	return v
}

func newChartRef(name, alt string, generation uint64) chartRef {
	q := url.Values{}
	q.Set("g", fmt.Sprint(generation))
	return chartRef{
		Name: name,
		Alt:  alt,
		URL:  "/ui/charts/" + name + ".png?" + q.Encode(),
	}
}
