// Package model contains domain models passed between layers.
package model

// FeatureCount is the width of the vector the classifier was trained on.
const FeatureCount = 10

// RawInput is the caller-supplied mapping of field name to scalar value.
// Values may be nil, strings (form posts) or numbers (JSON bodies).
type RawInput map[string]any

// FeatureVector is the fixed-order numeric representation consumed by the
// classifier:
//
//	[age, height, weight, overall_rating, potential, sprint_speed,
//	 short_passing, long_passing, dribbling, strength]
type FeatureVector [FeatureCount]float64

// RawLabel is the encoded class index emitted by the classifier.
type RawLabel int64

// ClassProbability pairs a position name with its predicted probability.
type ClassProbability struct {
	Position    string  `json:"position"`
	Probability float64 `json:"probability"`
}

// PredictionResult is the outcome of one successful pipeline run.
type PredictionResult struct {
	Input        RawInput           `json:"input"`
	Features     FeatureVector      `json:"features"`
	Position     string             `json:"position"`
	Confidence   float64            `json:"confidence"` // percent, 0..100
	Distribution []float64          `json:"distribution"`
	Classes      []ClassProbability `json:"classes"`
}
