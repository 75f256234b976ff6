package models

const (
	ModelMobileNet    = "mobilenet"
	ModelEfficientNet = "efficientnet"
)

// BestModel is the service's pick between the compared models.
type BestModel struct {
	Model      string  `json:"model"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

// ComparisonResult is a dual-model output. BestModel is nil when the service made no pick.
// Invalid marks the service's "not a brain MRI" verdict; in that case no model results are set.
type ComparisonResult struct {
	Invalid      bool              `json:"invalid"`
	Message      string            `json:"message,omitempty"`
	BestModel    *BestModel        `json:"best_model"`
	MobileNet    *PredictionResult `json:"mobilenet,omitempty"`
	EfficientNet *PredictionResult `json:"efficientnet,omitempty"`
}

// Model looks up a compared model's result by its wire name.
func (c *ComparisonResult) Model(name string) *PredictionResult {
	if c == nil {
		return nil
	}
	switch name {
	case ModelMobileNet:
		return c.MobileNet
	case ModelEfficientNet:
		return c.EfficientNet
	default:
		return nil
	}
}
