package render

import (
	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

const DefaultInvalidNotice = "The uploaded image does not look like a brain MRI."

type BestView struct {
	Model             string
	Title             string
	Prediction        string
	Confidence        float64
	ConfidenceDisplay string
}

type CardView struct {
	Model string
	Title string
	View  View
}

// ComparisonView is the compare pane. Best is nil when the service made no pick.
type ComparisonView struct {
	Invalid bool
	Notice  string
	Best    *BestView
	Cards   []CardView
}

func RenderComparison(res *models.ComparisonResult, opts Options) ComparisonView {
	if res == nil {
		return ComparisonView{}
	}

	if res.Invalid {
		notice := res.Message
		if notice == "" {
			notice = DefaultInvalidNotice
		}
		return ComparisonView{Invalid: true, Notice: notice}
	}

	view := ComparisonView{}
	if res.BestModel != nil {
		confidence := Clamp(res.BestModel.Confidence)
		view.Best = &BestView{
			Model:             res.BestModel.Model,
			Title:             ModelTitle(res.BestModel.Model),
			Prediction:        res.BestModel.Prediction,
			Confidence:        confidence,
			ConfidenceDisplay: FormatPercent(confidence),
		}
	}

	for _, model := range []string{models.ModelMobileNet, models.ModelEfficientNet} {
		result := res.Model(model)
		if result == nil {
			continue
		}
		view.Cards = append(view.Cards, CardView{
			Model: model,
			Title: ModelTitle(model),
			View:  Render(result, opts),
		})
	}
	return view
}
