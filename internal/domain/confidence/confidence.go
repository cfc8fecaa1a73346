// Package confidence derives the user-facing confidence figures from a
// classifier's probability distribution.
package confidence

import "github.com/aneeb02/footyPredatorr/internal/domain/model"

const percent = 100

// Summary is the confidence of the top class plus the untouched distribution.
type Summary struct {
	Confidence   float64   // max(distribution) * 100
	Distribution []float64 // copy of the input, same order
}

// Summarize returns the top-class confidence as a percentage. An empty
// distribution yields zero confidence.
func Summarize(dist []float64) Summary {
	s := Summary{Distribution: append([]float64{}, dist...)}
	for i, p := range dist {
		if i == 0 || p > s.Confidence {
			s.Confidence = p
		}
	}
	s.Confidence *= percent
	return s
}

// Breakdown pairs each probability with its class name. Extra entries on
// either side are dropped.
func Breakdown(classes []string, dist []float64) []model.ClassProbability {
	n := min(len(classes), len(dist))
	out := make([]model.ClassProbability, n)
	for i := range n {
		out[i] = model.ClassProbability{Position: classes[i], Probability: dist[i]}
	}
	return out
}
