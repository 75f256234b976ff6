package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ShapeError reports a response that does not match the expected contract.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParsePrediction validates a /predict response body.
func ParsePrediction(raw []byte) (*PredictionResult, error) {
	root, err := parseRoot(raw)
	if err != nil {
		return nil, err
	}
	return parsePrediction(root, "")
}

// ParseComparison validates a /compare response body.
func ParseComparison(raw []byte) (*ComparisonResult, error) {
	root, err := parseRoot(raw)
	if err != nil {
		return nil, err
	}

	res := &ComparisonResult{}
	if root.Get("invalid").Type == gjson.True {
		res.Invalid = true
		if msg := root.Get("message"); msg.Type == gjson.String {
			res.Message = msg.Str
		}
		return res, nil
	}

	if res.MobileNet, err = parsePrediction(root.Get(ModelMobileNet), ModelMobileNet); err != nil {
		return nil, err
	}
	if res.EfficientNet, err = parsePrediction(root.Get(ModelEfficientNet), ModelEfficientNet); err != nil {
		return nil, err
	}
	if res.BestModel, err = parseBestModel(root.Get("best_model"), res); err != nil {
		return nil, err
	}
	return res, nil
}

func parseRoot(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &ShapeError{Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}, &ShapeError{Reason: "body is not a JSON object"}
	}
	return root, nil
}

func parsePrediction(node gjson.Result, path string) (*PredictionResult, error) {
	if !node.IsObject() {
		if !node.Exists() {
			return nil, &ShapeError{Field: path, Reason: "missing"}
		}
		return nil, &ShapeError{Field: path, Reason: "expected object"}
	}

	prediction := node.Get("prediction")
	if prediction.Type != gjson.String || strings.TrimSpace(prediction.Str) == "" {
		return nil, &ShapeError{Field: join(path, "prediction"), Reason: "expected non-empty string"}
	}
	confidence := node.Get("confidence")
	if confidence.Type != gjson.Number {
		return nil, &ShapeError{Field: join(path, "confidence"), Reason: "expected number"}
	}

	res := &PredictionResult{
		Prediction: prediction.Str,
		Confidence: confidence.Num,
	}

	probabilities := node.Get("probabilities")
	switch {
	case !probabilities.Exists() || probabilities.Type == gjson.Null:
	case probabilities.IsObject():
		probabilities.ForEach(func(key, value gjson.Result) bool {
			res.Probabilities = append(res.Probabilities, Probability{
				Label: key.String(),
				Value: coerceNumber(value),
			})
			return true
		})
	default:
		return nil, &ShapeError{Field: join(path, "probabilities"), Reason: "expected object"}
	}
	return res, nil
}

func parseBestModel(node gjson.Result, res *ComparisonResult) (*BestModel, error) {
	switch {
	case !node.Exists() || node.Type == gjson.Null:
		return nil, nil
	case node.Type == gjson.String:
		// the service may name the winner instead of describing it
		picked := res.Model(node.Str)
		if picked == nil {
			return nil, nil
		}
		return &BestModel{Model: node.Str, Prediction: picked.Prediction, Confidence: picked.Confidence}, nil
	case node.IsObject():
		model := node.Get("model")
		if model.Type != gjson.String || model.Str == "" {
			return nil, &ShapeError{Field: "best_model.model", Reason: "expected non-empty string"}
		}
		prediction := node.Get("prediction")
		if prediction.Type != gjson.String {
			return nil, &ShapeError{Field: "best_model.prediction", Reason: "expected string"}
		}
		confidence := node.Get("confidence")
		if confidence.Type != gjson.Number {
			return nil, &ShapeError{Field: "best_model.confidence", Reason: "expected number"}
		}
		return &BestModel{Model: model.Str, Prediction: prediction.Str, Confidence: confidence.Num}, nil
	default:
		return nil, &ShapeError{Field: "best_model", Reason: "expected object, string or null"}
	}
}

// coerceNumber turns a probability value into a float. Anything non-numeric becomes 0.
func coerceNumber(value gjson.Result) float64 {
	switch value.Type {
	case gjson.Number:
		return value.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
