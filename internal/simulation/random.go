package simulation

import "math/rand"

// sampleIndex draws an index with probability proportional to weights.
// Weights need not sum to 1; non-positive entries are never selected.
// Returns -1 when no entry carries positive weight, which callers treat as
// "stay put" or fall through to their own default.
func sampleIndex(r *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	v := r.Float64() * total
	var cumulative float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if v <= cumulative {
			return i
		}
	}

	// Floating point slack: land on the last eligible entry.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// uniform draws from U(min, max).
func uniform(r *rand.Rand, min, max float64) float64 {
	return min + r.Float64()*(max-min)
}

// uniformInt draws an integer from [min, max] inclusive.
func uniformInt(r *rand.Rand, min, max int) int {
	return min + r.Intn(max-min+1)
}
