package vector

import (
	"fmt"
	"math"
)

// Metric selects the distance function used by a store instance.
type Metric string

const (
	// MetricCosine is cosine distance: 1 - dot(a,b)/(|a|*|b|).
	MetricCosine Metric = "cosine"
	// MetricEuclidean is the L2 norm of the element-wise difference.
	MetricEuclidean Metric = "euclidean"
)

// ParseMetric validates a metric name from config.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricCosine, MetricEuclidean:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown distance metric %q", s)
	}
}

// maxCosineDistance is the "maximally dissimilar" sentinel returned when a
// zero-norm operand would otherwise force a division by zero.
const maxCosineDistance = 1.0

// Distance computes the metric between two equal-length vectors.
// Length agreement is the caller's responsibility (the store guards it).
func Distance(metric Metric, a, b []float32) float64 {
	if metric == MetricEuclidean {
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return math.Sqrt(sum)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return maxCosineDistance
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
