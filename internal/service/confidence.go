package service

import (
	"math"

	"toll_plaza/internal/domain"
)

// DefaultConfidence is reported when no token carries a usable confidence.
const DefaultConfidence = domain.DefaultConfidence

// ConfidenceAggregator reduces per-token recognition confidences to one value
// in [0, 1]. Recognition backends disagree on what the token list contains,
// so each backend is paired with the aggregator that fits it.
type ConfidenceAggregator interface {
	Aggregate(tokenConfidences []float64) float64
}

// VisionConfidence skips the first token, which Google Vision uses for the
// annotation of the whole text block.
type VisionConfidence struct{}

func (VisionConfidence) Aggregate(tokenConfidences []float64) float64 {
	if len(tokenConfidences) <= 1 {
		return DefaultConfidence
	}
	return meanConfidence(tokenConfidences[1:])
}

// TokenMeanConfidence averages every token. Use it for backends that report
// words only (Rekognition, Tesseract).
type TokenMeanConfidence struct{}

func (TokenMeanConfidence) Aggregate(tokenConfidences []float64) float64 {
	return meanConfidence(tokenConfidences)
}

// meanConfidence ignores values <= 0: some backends report an explicit zero
// instead of leaving out a token they could not score.
func meanConfidence(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v > 0 && !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return DefaultConfidence
	}
	mean := math.Round(sum/float64(n)*1000) / 1000
	return math.Min(1, math.Max(0, mean))
}
