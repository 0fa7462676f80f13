package analyzer

import (
	"errors"
	"math"
)

// ErrInsufficientData indicates that no finite data points were provided.
var ErrInsufficientData = errors.New("insufficient data points to calculate statistics")

// MeanStdDev returns the mean and population standard deviation (N, not N-1) of values.
// Non-finite points are skipped.
func MeanStdDev(values []float64) (float64, float64, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			finite = append(finite, v)
		}
	}

	n := len(finite)
	if n == 0 {
		return 0, 0, ErrInsufficientData
	}

	// --- Mean ---
	var sum float64
	for _, v := range finite {
		sum += v
	}
	mean := sum / float64(n)

	// --- Population variance ---
	var sumSqDiff float64
	for _, v := range finite {
		sumSqDiff += math.Pow(v-mean, 2)
	}
	variance := sumSqDiff / float64(n)

	return mean, math.Sqrt(variance), nil
}

// Quantile returns the q-th quantile (0..1) of an ascending slice using nearest rank.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q = clamp(q, 0, 1)
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
