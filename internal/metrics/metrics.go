// Package metrics holds the scoring primitives shared by dataset adapters.
package metrics

// AverageAccuracyName is the metric identifier adapters advertise.
const AverageAccuracyName = "AverageAccuracy"

// ExactMatch scores 1.0 when gold and pred are byte-equal, 0.0 otherwise. No
// normalization: case and whitespace differences are misses.
func ExactMatch(gold, pred string) float64 {
	if gold == pred {
		return 1.0
	}
	return 0.0
}

// AverageAccuracy is the arithmetic mean of per-question scores; 0 on empty
// input.
func AverageAccuracy(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
