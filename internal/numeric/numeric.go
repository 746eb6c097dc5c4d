// Package numeric provides total numeric guards shared by the engine packages.
package numeric

import "math"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Finite returns v, or fallback when v is NaN or infinite.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// ClampOr clamps v to [lo, hi], substituting fallback for non-finite input.
func ClampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return Clamp(v, lo, hi)
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundInt rounds a float to the nearest int (half away from zero) and clamps it
// to [lo, hi]. Non-finite input yields fallback.
func RoundInt(v float64, lo, hi, fallback int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	v = Clamp(math.Round(v), float64(lo), float64(hi))
	return int(v)
}
