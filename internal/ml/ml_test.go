package ml

import "testing"

func TestDetectAnomaliesCreatesModelOnFirstUse(t *testing.T) {
	m := NewMLModule()
	if _, exists := m.Models["requests"]; exists {
		t.Fatal("model should not exist before first use")
	}
	if _, err := m.DetectAnomalies(map[string]interface{}{"activity_count": 5.0}, "requests"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, exists := m.Models["requests"]
	if !exists {
		t.Fatal("expected DetectAnomalies to create a default model")
	}
	if model.Type != "anomaly" {
		t.Errorf("model.Type = %q, want anomaly", model.Type)
	}
}

func TestClassifyThreatPicksHighestConfidence(t *testing.T) {
	m := NewMLModule()
	result, err := m.ClassifyThreat(map[string]interface{}{
		"request_rate": 0.95,
		"error_pattern": "none",
	}, "web")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := 0.0
	for _, p := range result.Probabilities {
		total += p
	}
	if total < 0.99 || total > 1.01 {
		t.Errorf("probabilities should sum to ~1, got %f", total)
	}
	if result.Confidence != result.Probabilities[result.PredictedClass] {
		t.Errorf("confidence %f does not match %s's probability %f",
			result.Confidence, result.PredictedClass, result.Probabilities[result.PredictedClass])
	}
	for class, p := range result.Probabilities {
		if p > result.Confidence {
			t.Errorf("class %s has probability %f above the picked class's %f", class, p, result.Confidence)
		}
	}
}

func TestCalculateEntropyEmptyString(t *testing.T) {
	m := NewMLModule()
	if got := m.calculateEntropy(""); got != 0.0 {
		t.Errorf("calculateEntropy(\"\") = %f, want 0", got)
	}
}

func TestExtractFeaturesStringAddsLengthAndEntropy(t *testing.T) {
	m := NewMLModule()
	features := m.extractFeatures(map[string]interface{}{"payload": "abc"})
	if features["payload_length"] != 3.0 {
		t.Errorf("payload_length = %f, want 3", features["payload_length"])
	}
	if _, ok := features["payload_entropy"]; !ok {
		t.Error("expected payload_entropy to be present")
	}
}
