package drifter

import "sort"

// runningMedian returns the median of every full window of the given odd size,
// so the result has len(data)-window+1 entries. Windows that would run off
// either end are not padded; the caller maps result i back to data index
// i+window/2.
func runningMedian(data []float64, window int) []float64 {
	n := len(data)
	if window < 1 || window%2 == 0 || n < window {
		return nil
	}

	result := make([]float64, n-window+1)
	sorted := make([]float64, window)
	for i := range result {
		copy(sorted, data[i:i+window])
		sort.Float64s(sorted)
		result[i] = sorted[window/2]
	}
	return result
}
