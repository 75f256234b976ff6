package models

// Probability is one class score in the order the inference service reported it.
type Probability struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PredictionResult is a single-model output.
type PredictionResult struct {
	Prediction    string        `json:"prediction"`
	Confidence    float64       `json:"confidence"`
	Probabilities []Probability `json:"probabilities,omitempty"`
}

func (p *PredictionResult) HasProbabilities() bool {
	return p != nil && len(p.Probabilities) > 0
}

// Probability returns the score for label and whether it was reported.
func (p *PredictionResult) Probability(label string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	for _, prob := range p.Probabilities {
		if prob.Label == label {
			return prob.Value, true
		}
	}
	return 0, false
}
