package handler

import (
	"github.com/phani41/brain-tumor-detection-cnn/internal/render"
)

type ProbabilityRow struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Display string  `json:"display"`
}

// PredictionView is a rendered single-model result.
type PredictionView struct {
	Prediction        string           `json:"prediction"`
	Confidence        float64          `json:"confidence"`
	ConfidenceDisplay string           `json:"confidence_display"`
	Text              string           `json:"text"`
	LowConfidence     bool             `json:"low_confidence"`
	Probabilities     []ProbabilityRow `json:"probabilities"`
}

type PredictResponse struct {
	RequestID string         `json:"request_id"`
	Result    PredictionView `json:"result"`
}

type BestModelView struct {
	Model      string  `json:"model"`
	Title      string  `json:"title"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type ModelCard struct {
	Model  string         `json:"model"`
	Title  string         `json:"title"`
	Result PredictionView `json:"result"`
}

type CompareResponse struct {
	RequestID string         `json:"request_id"`
	Invalid   bool           `json:"invalid"`
	Notice    string         `json:"notice,omitempty"`
	BestModel *BestModelView `json:"best_model"`
	Models    []ModelCard    `json:"models"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Inference string `json:"inference"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func newPredictionView(v render.View) PredictionView {
	rows := make([]ProbabilityRow, 0, len(v.Probabilities))
	for _, r := range v.Probabilities {
		rows = append(rows, ProbabilityRow{Label: r.Label, Percent: r.Percent, Display: r.Display})
	}
	return PredictionView{
		Prediction:        v.Prediction,
		Confidence:        v.Confidence,
		ConfidenceDisplay: v.ConfidenceDisplay,
		Text:              v.Text,
		LowConfidence:     v.LowConfidence,
		Probabilities:     rows,
	}
}

func newCompareResponse(requestID string, v render.ComparisonView) CompareResponse {
	resp := CompareResponse{
		RequestID: requestID,
		Invalid:   v.Invalid,
		Notice:    v.Notice,
		Models:    make([]ModelCard, 0, len(v.Cards)),
	}
	if v.Best != nil {
		resp.BestModel = &BestModelView{
			Model:      v.Best.Model,
			Title:      v.Best.Title,
			Prediction: v.Best.Prediction,
			Confidence: v.Best.Confidence,
		}
	}
	for _, c := range v.Cards {
		resp.Models = append(resp.Models, ModelCard{Model: c.Model, Title: c.Title, Result: newPredictionView(c.View)})
	}
	return resp
}
