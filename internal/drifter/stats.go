package drifter

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// trimmedMeanStd returns the mean and population standard deviation of x
// after dropping floor(len(x)/divisor) values from each end of the sorted
// sample. x is not modified.
func trimmedMeanStd(x []float64, divisor int) (float64, float64) {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	trim := len(sorted) / divisor
	return meanStd(sorted[trim : len(sorted)-trim])
}

// meanStd returns the mean and population standard deviation of x.
func meanStd(x []float64) (float64, float64) {
	n := len(x)
	switch n {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], 0
	}
	mean, variance := stat.MeanVariance(x, nil)
	// gonum returns the unbiased estimate; rescale to the population form.
	return mean, math.Sqrt(variance * float64(n-1) / float64(n))
}

func mean(x []float64) float64 {
	return stat.Mean(x, nil)
}
