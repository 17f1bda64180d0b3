package analyzer

import (
	"errors"
	"math"
)

// ErrInsufficientData indicates that not enough data points were provided
// to compute a sample standard deviation (need at least 2 points).
var ErrInsufficientData = errors.New("insufficient data points to compute statistics")

// MeanStdDev computes the mean and sample standard deviation (N-1) of a
// series. The sample form is used because the surviving opportunity set is a
// sample of the market, not the whole population.
func MeanStdDev(values []float64) (mean float64, stdDev float64, err error) {
	n := len(values)
	if n < 2 {
		return 0, 0, ErrInsufficientData
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	var sumSqDiff float64
	for _, v := range values {
		sumSqDiff += math.Pow(v-mean, 2)
	}
	variance := sumSqDiff / float64(n-1)
	stdDev = math.Sqrt(variance)

	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return 0, 0, errors.New("statistics computation resulted in non-finite value")
	}

	return mean, stdDev, nil
}
