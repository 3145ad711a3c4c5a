package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"github.com/bytedance/sonic"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MaxSamples bounds the stats task input
const MaxSamples = 10000

// Summary is the result of the stats task
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// StdDev is the sample standard deviation, zero for a single sample
	StdDev float64 `json:"stddev"`
}

// Stats summarises a JSON array of numbers
func Stats(_ context.Context, payload json.RawMessage) (any, error) {
	var numbers []float64
	if err := sonic.Unmarshal(payload, &numbers); err != nil {
		return nil, fmt.Errorf("stats: expected an array of numbers: %w", err)
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("stats: at least one number required")
	}
	if len(numbers) > MaxSamples {
		return nil, fmt.Errorf("stats: at most %d numbers allowed, got %d", MaxSamples, len(numbers))
	}
	for i, n := range numbers {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("stats: numbers[%d] is not finite", i)
		}
	}

	sorted := slices.Clone(numbers)
	slices.Sort(sorted)

	s := Summary{
		Count:  len(numbers),
		Sum:    floats.Sum(numbers),
		Mean:   stat.Mean(numbers, nil),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(numbers) > 1 {
		s.StdDev = stat.StdDev(numbers, nil)
	}
	return s, nil
}

// median averages the two middle values of an even-length sample
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
