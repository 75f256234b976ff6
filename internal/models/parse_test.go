package models

import (
	"errors"
	"testing"
)

func TestParsePredictionKeepsDocumentOrder(t *testing.T) {
	raw := []byte(`{"prediction":"glioma","confidence":92,"probabilities":{"glioma":92,"meningioma":5,"notumor":2,"pituitary":1}}`)

	res, err := ParsePrediction(raw)
	if err != nil {
		t.Fatalf("ParsePrediction error: %v", err)
	}
	if res.Prediction != "glioma" || res.Confidence != 92 {
		t.Fatalf("unexpected result: %+v", res)
	}

	want := []string{"glioma", "meningioma", "notumor", "pituitary"}
	if len(res.Probabilities) != len(want) {
		t.Fatalf("expected %d probabilities, got %d", len(want), len(res.Probabilities))
	}
	for i, label := range want {
		if res.Probabilities[i].Label != label {
			t.Fatalf("probability %d label = %q, want %q", i, res.Probabilities[i].Label, label)
		}
	}
	if v, ok := res.Probability("notumor"); !ok || v != 2 {
		t.Fatalf("Probability(notumor) = %v, %v", v, ok)
	}
}

func TestParsePredictionCoercesProbabilityValues(t *testing.T) {
	raw := []byte(`{"prediction":"notumor","confidence":55,"probabilities":{"a":"12.5","b":"abc","c":null,"d":true,"e":-3}}`)

	res, err := ParsePrediction(raw)
	if err != nil {
		t.Fatalf("ParsePrediction error: %v", err)
	}
	want := map[string]float64{"a": 12.5, "b": 0, "c": 0, "d": 0, "e": -3}
	for label, value := range want {
		got, ok := res.Probability(label)
		if !ok {
			t.Fatalf("missing label %q", label)
		}
		if got != value {
			t.Fatalf("Probability(%q) = %v, want %v", label, got, value)
		}
	}
}

func TestParsePredictionRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"not json":            `<html>oops</html>`,
		"array":               `[1,2,3]`,
		"missing prediction":  `{"confidence":80}`,
		"empty prediction":    `{"prediction":"  ","confidence":80}`,
		"numeric prediction":  `{"prediction":3,"confidence":80}`,
		"missing confidence":  `{"prediction":"glioma"}`,
		"string confidence":   `{"prediction":"glioma","confidence":"80"}`,
		"array probabilities": `{"prediction":"glioma","confidence":80,"probabilities":[1,2]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := ParsePrediction([]byte(body))
			if err == nil {
				t.Fatalf("expected error, got %+v", res)
			}
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected ShapeError, got %T", err)
			}
		})
	}
}

func TestParsePredictionAllowsMissingProbabilities(t *testing.T) {
	res, err := ParsePrediction([]byte(`{"prediction":"pituitary","confidence":101,"probabilities":null}`))
	if err != nil {
		t.Fatalf("ParsePrediction error: %v", err)
	}
	if res.HasProbabilities() {
		t.Fatalf("expected no probabilities, got %+v", res.Probabilities)
	}
}

func TestParseComparisonWithNullBestModel(t *testing.T) {
	raw := []byte(`{
		"best_model": null,
		"mobilenet": {"prediction":"glioma","confidence":81,"probabilities":{"glioma":81,"notumor":19}},
		"efficientnet": {"prediction":"glioma","confidence":77,"probabilities":{"glioma":77,"notumor":23}}
	}`)

	res, err := ParseComparison(raw)
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}
	if res.BestModel != nil {
		t.Fatalf("expected no best model, got %+v", res.BestModel)
	}
	if res.MobileNet == nil || res.EfficientNet == nil {
		t.Fatal("expected both model results")
	}
}

func TestParseComparisonBestModelForms(t *testing.T) {
	models := `"mobilenet": {"prediction":"glioma","confidence":81},
		"efficientnet": {"prediction":"meningioma","confidence":88}`

	res, err := ParseComparison([]byte(`{"best_model":"efficientnet",` + models + `}`))
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}
	if res.BestModel == nil || res.BestModel.Model != ModelEfficientNet || res.BestModel.Prediction != "meningioma" || res.BestModel.Confidence != 88 {
		t.Fatalf("unexpected best model: %+v", res.BestModel)
	}

	res, err = ParseComparison([]byte(`{"best_model":{"model":"mobilenet","prediction":"glioma","confidence":81},` + models + `}`))
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}
	if res.BestModel == nil || res.BestModel.Model != ModelMobileNet {
		t.Fatalf("unexpected best model: %+v", res.BestModel)
	}

	res, err = ParseComparison([]byte(`{"best_model":"resnet",` + models + `}`))
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}
	if res.BestModel != nil {
		t.Fatalf("unknown model name must not produce a badge, got %+v", res.BestModel)
	}

	if _, err := ParseComparison([]byte(`{"best_model":{"model":"mobilenet"},` + models + `}`)); err == nil {
		t.Fatal("expected error for best_model without prediction")
	}
	if _, err := ParseComparison([]byte(`{"best_model":42,` + models + `}`)); err == nil {
		t.Fatal("expected error for numeric best_model")
	}
}

func TestParseComparisonInvalidVerdict(t *testing.T) {
	res, err := ParseComparison([]byte(`{"invalid":true,"message":"Uploaded image is not a valid brain MRI"}`))
	if err != nil {
		t.Fatalf("ParseComparison error: %v", err)
	}
	if !res.Invalid || res.Message != "Uploaded image is not a valid brain MRI" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.MobileNet != nil || res.EfficientNet != nil {
		t.Fatal("invalid verdict must not carry model results")
	}
}

func TestParseComparisonRequiresBothModels(t *testing.T) {
	_, err := ParseComparison([]byte(`{"invalid":false,"mobilenet":{"prediction":"glioma","confidence":80}}`))
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected ShapeError, got %v", err)
	}
	if shapeErr.Field != ModelEfficientNet {
		t.Fatalf("field = %q, want %q", shapeErr.Field, ModelEfficientNet)
	}
}
