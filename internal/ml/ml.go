// Package ml backs ml_detect_anomaly and ml_classify_threat in
// internal/stdlib/ml.go with a small rule-based anomaly scorer and
// threat classifier over ad hoc feature maps.
package ml

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// MLModule holds the lazily-created per-name models and the running
// history of anomaly scores.
type MLModule struct {
	Models      map[string]*Model
	AnomalyData []AnomalyPoint
}

// Model is a named anomaly or classification model. There is no
// training step here: the first call for a given name creates one
// with fixed defaults and reuses it thereafter.
type Model struct {
	Name       string
	Type       string // "anomaly", "classification"
	Accuracy   float64
	TrainedAt  time.Time
	Features   []string
	Parameters map[string]interface{}
	IsActive   bool
}

// AnomalyPoint is one scored call to DetectAnomalies, kept so a caller
// could later plot or replay the history.
type AnomalyPoint struct {
	Timestamp   time.Time
	Features    map[string]float64
	Score       float64
	IsAnomaly   bool
	Severity    string
	Description string
}

// AnomalyResult is the outcome of DetectAnomalies.
type AnomalyResult struct {
	IsAnomalous     bool
	Score           float64
	Threshold       float64
	Features        map[string]float64
	Explanation     string
	Recommendations []string
}

// ClassificationResult is the outcome of ClassifyThreat.
type ClassificationResult struct {
	PredictedClass string
	Confidence     float64
	Probabilities  map[string]float64
	Features       []string
	ModelUsed      string
}

func NewMLModule() *MLModule {
	return &MLModule{
		Models:      make(map[string]*Model),
		AnomalyData: make([]AnomalyPoint, 0),
	}
}

// DetectAnomalies scores data against modelName's anomaly model,
// creating the model with default parameters on first use.
func (ml *MLModule) DetectAnomalies(data map[string]interface{}, modelName string) (*AnomalyResult, error) {
	features := ml.extractFeatures(data)

	model, exists := ml.Models[modelName]
	if !exists {
		model = ml.createDefaultAnomalyModel(modelName)
		ml.Models[modelName] = model
	}

	score := ml.calculateAnomalyScore(features, model)
	threshold := 0.8
	isAnomalous := score > threshold

	result := &AnomalyResult{
		IsAnomalous:     isAnomalous,
		Score:           score,
		Threshold:       threshold,
		Features:        features,
		Explanation:     ml.generateAnomalyExplanation(features, score, isAnomalous),
		Recommendations: ml.generateAnomalyRecommendations(score, isAnomalous),
	}

	ml.AnomalyData = append(ml.AnomalyData, AnomalyPoint{
		Timestamp:   time.Now(),
		Features:    features,
		Score:       score,
		IsAnomaly:   isAnomalous,
		Severity:    ml.calculateSeverity(score),
		Description: result.Explanation,
	})

	return result, nil
}

// ClassifyThreat runs a rule-based classifier over features, looking
// for error/rate/entropy-shaped keys that correlate with malicious or
// suspicious behavior.
func (ml *MLModule) ClassifyThreat(features map[string]interface{}, modelName string) (*ClassificationResult, error) {
	featureVector := ml.extractFeatures(features)

	if _, exists := ml.Models[modelName]; !exists {
		ml.Models[modelName] = ml.createDefaultClassificationModel(modelName)
	}

	predictions := ml.classifyUsingRules(featureVector)

	var bestClass string
	var maxConfidence float64
	for class, confidence := range predictions {
		if confidence > maxConfidence {
			maxConfidence = confidence
			bestClass = class
		}
	}

	return &ClassificationResult{
		PredictedClass: bestClass,
		Confidence:     maxConfidence,
		Probabilities:  predictions,
		Features:       ml.getFeatureNames(featureVector),
		ModelUsed:      modelName,
	}, nil
}

func (ml *MLModule) extractFeatures(data map[string]interface{}) map[string]float64 {
	features := make(map[string]float64)

	for key, value := range data {
		switch v := value.(type) {
		case float64:
			features[key] = v
		case int:
			features[key] = float64(v)
		case int64:
			features[key] = float64(v)
		case string:
			features[key+"_length"] = float64(len(v))
			features[key+"_entropy"] = ml.calculateEntropy(v)
		case bool:
			if v {
				features[key] = 1.0
			} else {
				features[key] = 0.0
			}
		}
	}

	return features
}

func (ml *MLModule) calculateEntropy(s string) float64 {
	if len(s) == 0 {
		return 0.0
	}

	freq := make(map[rune]int)
	for _, char := range s {
		freq[char]++
	}

	entropy := 0.0
	length := float64(len(s))
	for _, count := range freq {
		prob := float64(count) / length
		entropy -= prob * math.Log2(prob)
	}

	return entropy
}

func (ml *MLModule) createDefaultAnomalyModel(name string) *Model {
	return &Model{
		Name:       name,
		Type:       "anomaly",
		Accuracy:   0.85,
		TrainedAt:  time.Now(),
		Features:   []string{"activity_count", "error_rate", "response_time"},
		Parameters: map[string]interface{}{"threshold": 0.8},
		IsActive:   true,
	}
}

func (ml *MLModule) createDefaultClassificationModel(name string) *Model {
	return &Model{
		Name:       name,
		Type:       "classification",
		Accuracy:   0.90,
		TrainedAt:  time.Now(),
		Features:   []string{"request_rate", "error_pattern", "ip_reputation"},
		Parameters: map[string]interface{}{"classes": []string{"benign", "malicious", "suspicious"}},
		IsActive:   true,
	}
}

// calculateAnomalyScore normalizes each feature into [0,1] via tanh,
// averages the deviation from the expected midpoint, and perturbs the
// result slightly — model isn't actually trained, so this jitter
// stands in for the variance a fitted model would have.
func (ml *MLModule) calculateAnomalyScore(features map[string]float64, model *Model) float64 {
	score := 0.0
	count := 0

	for _, value := range features {
		normalized := math.Tanh(value / 100.0)
		deviation := math.Abs(normalized-0.5) * 2
		score += deviation
		count++
	}

	if count > 0 {
		score = score / float64(count)
	}

	score += (rand.Float64() - 0.5) * 0.2

	return math.Max(0, math.Min(1, score))
}

func (ml *MLModule) classifyUsingRules(features map[string]float64) map[string]float64 {
	predictions := make(map[string]float64)

	suspiciousScore := 0.0
	maliciousScore := 0.0
	benignScore := 1.0

	for key, value := range features {
		if strings.Contains(key, "error") && value > 0.5 {
			suspiciousScore += 0.3
			maliciousScore += 0.2
			benignScore -= 0.2
		}
		if strings.Contains(key, "rate") && value > 0.8 {
			maliciousScore += 0.4
			benignScore -= 0.3
		}
		if strings.Contains(key, "entropy") && value > 4.0 {
			suspiciousScore += 0.2
		}
	}

	total := suspiciousScore + maliciousScore + benignScore
	if total > 0 {
		predictions["suspicious"] = suspiciousScore / total
		predictions["malicious"] = maliciousScore / total
		predictions["benign"] = benignScore / total
	} else {
		predictions["benign"] = 1.0
		predictions["suspicious"] = 0.0
		predictions["malicious"] = 0.0
	}

	return predictions
}

func (ml *MLModule) calculateSeverity(score float64) string {
	switch {
	case score > 0.8:
		return "critical"
	case score > 0.6:
		return "high"
	case score > 0.4:
		return "medium"
	default:
		return "low"
	}
}

func (ml *MLModule) generateAnomalyExplanation(features map[string]float64, score float64, isAnomalous bool) string {
	if !isAnomalous {
		return "behavior appears normal based on learned patterns"
	}

	var maxFeature string
	var maxValue float64
	for feature, value := range features {
		if value > maxValue {
			maxValue = value
			maxFeature = feature
		}
	}

	return fmt.Sprintf("anomaly detected (score: %.2f). primary contributor: %s (%.2f)",
		score, maxFeature, maxValue)
}

func (ml *MLModule) generateAnomalyRecommendations(score float64, isAnomalous bool) []string {
	if !isAnomalous {
		return []string{"continue monitoring normal behavior patterns"}
	}

	recommendations := []string{
		"investigate the source of anomalous behavior",
		"review recent system changes or events",
	}
	if score > 0.9 {
		recommendations = append(recommendations, "consider immediate security response")
	}
	return recommendations
}

func (ml *MLModule) getFeatureNames(features map[string]float64) []string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	return names
}
