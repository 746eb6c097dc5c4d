// Package rolling keeps the bounded recent-outcome window and derives the
// fatigue bias from it.
package rolling

import (
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
)

const (
	// Size is the maximum number of outcomes kept.
	Size = 10

	// BiasStep converts a fatigue bias unit into rating points.
	BiasStep = 10

	lowAccuracy  = 0.45
	highAccuracy = 0.90
	maxBias      = 5
)

// Push returns a new window with o appended, keeping the most recent Size entries.
func Push(window []model.Outcome, o model.Outcome) []model.Outcome {
	next := make([]model.Outcome, 0, len(window)+1)
	next = append(next, window...)
	return Tail(append(next, o), Size)
}

// Tail returns a copy of the last n elements of s.
func Tail[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Accuracy returns the mean score of the window. It reports false for an
// empty window, which is undefined rather than zero.
func Accuracy(window []model.Outcome) (float64, bool) {
	if len(window) == 0 {
		return 0, false
	}
	var sum float64
	for _, o := range window {
		sum += numeric.Finite(o.Score, 0)
	}
	return sum / float64(len(window)), true
}

// FatigueBias classifies the window accuracy. Low accuracy biases toward
// easier content, high accuracy toward harder. An empty window keeps previous.
func FatigueBias(window []model.Outcome, previous int) int {
	acc, ok := Accuracy(window)
	if !ok {
		return previous
	}
	switch {
	case acc < lowAccuracy:
		return -maxBias
	case acc > highAccuracy:
		return maxBias
	default:
		return 0
	}
}
