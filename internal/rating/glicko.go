package rating

import (
	"math"

	"github.com/verte-zerg/tachy/internal/numeric"
)

// Glicko-lite bounds and defaults.
const (
	DefaultRating    = 1000.0
	DefaultDeviation = 250.0

	MinRating    = 600.0
	MaxRating    = 1800.0
	MinDeviation = 60.0
	MaxDeviation = 350.0

	// ItemDeviation is the fixed uncertainty attributed to every item.
	ItemDeviation = 80.0

	// TargetSuccess is the success probability the engine aims for.
	TargetSuccess = 0.75
	// DeviationMargin lowers the target by this share of the learner's deviation.
	DeviationMargin = 0.20

	baseK = 24.0
	minK  = 12.0
	maxK  = 40.0
)

// GlickoLite is a single-observation Glicko variant with a fixed item deviation.
type GlickoLite struct{}

// ExpectedScore implements Model.
func (GlickoLite) ExpectedScore(r, rd, item float64) float64 {
	r, rd = glickoInputs(r, rd)
	item = numeric.Finite(item, DefaultRating)
	return glickoExpected(r, rd, item)
}

// Update implements Model.
//
// K grows with the learner's deviation. The deviation shrinks by 3% on every
// observation, less when the outcome was surprising.
func (GlickoLite) Update(r, rd, item, s float64) Result {
	r, rd = glickoInputs(r, rd)
	item = numeric.Finite(item, DefaultRating)
	s = numeric.ClampOr(s, 0, 1, 0)

	e := glickoExpected(r, rd, item)
	k := numeric.Clamp(baseK*(rd/200), minK, maxK)
	surprise := math.Abs(s - e)
	shrink := 0.97 + 0.03*surprise
	return Result{
		Rating:    numeric.Clamp(r+k*(s-e), MinRating, MaxRating),
		Deviation: numeric.Clamp(rd*shrink, MinDeviation, MaxDeviation),
		Expected:  e,
		K:         k,
	}
}

// TargetItemRating returns the item rating a learner is expected to pass with
// probability TargetSuccess, lowered by a margin proportional to rd so poorly
// known estimates are served easier content.
func TargetItemRating(r, rd float64) float64 {
	r, rd = glickoInputs(r, rd)
	target := r - 400*math.Log10(1/TargetSuccess-1)
	return target - DeviationMargin*rd
}

func glickoInputs(r, rd float64) (float64, float64) {
	return numeric.ClampOr(r, MinRating, MaxRating, DefaultRating),
		numeric.ClampOr(rd, MinDeviation, MaxDeviation, DefaultDeviation)
}

func glickoExpected(r, rd, item float64) float64 {
	combined := rd*rd + ItemDeviation*ItemDeviation
	g := 1 / math.Sqrt(1+3*combined/(math.Pi*math.Pi*400*400))
	return 1 / (1 + math.Pow(10, g*(item-r)/400))
}
