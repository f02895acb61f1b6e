package services

import (
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// distanceFunc returns the distance between two equal-length vectors.
// Lower is more similar.
type distanceFunc func(a, b []float32) float64

func distanceFor(metric domain.DistanceMetric) distanceFunc {
	if metric == domain.DistanceL2 {
		return l2Distance
	}
	return cosineDistance
}

// cosineDistance is 1 - cosine similarity, in [0, 2]. A zero vector is at
// distance 1 from everything.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// l2Distance is the euclidean distance.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
