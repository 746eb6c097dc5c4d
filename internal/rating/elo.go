package rating

import (
	"math"

	"github.com/verte-zerg/tachy/internal/numeric"
)

// Elo-lite bounds.
const (
	EloMinRating = 100.0
	EloMaxRating = 3000.0
	eloBaseK     = 28.0
)

// EloLite is an Elo variant whose comparison scale widens with the
// learner's deviation.
type EloLite struct{}

// NormalizeElo returns usable Elo-lite values. Zero or non-finite input
// falls back to the defaults.
func NormalizeElo(r, rd float64) (float64, float64) {
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		r = DefaultRating
	}
	if rd == 0 || math.IsNaN(rd) || math.IsInf(rd, 0) {
		rd = DefaultDeviation
	}
	return numeric.Clamp(r, EloMinRating, EloMaxRating),
		numeric.Clamp(rd, MinDeviation, MaxDeviation)
}

// ExpectedScore implements Model.
func (EloLite) ExpectedScore(r, rd, item float64) float64 {
	r, rd = NormalizeElo(r, rd)
	return eloExpected(r, rd, numeric.Finite(item, DefaultRating))
}

// Update implements Model. The variance, not the deviation, is shrunk.
func (EloLite) Update(r, rd, item, s float64) Result {
	r, rd = NormalizeElo(r, rd)
	item = numeric.Finite(item, DefaultRating)
	s = numeric.ClampOr(s, 0, 1, 0)

	e := eloExpected(r, rd, item)
	confidence := 1 - (rd-MinDeviation)/(MaxDeviation-MinDeviation)
	k := eloBaseK * (0.65 + (1 - confidence))
	miss := math.Abs(s - e)
	return Result{
		Rating:    numeric.Clamp(r+k*(s-e), EloMinRating, EloMaxRating),
		Deviation: numeric.Clamp(math.Sqrt(rd*rd*(0.88+0.08*miss)), MinDeviation, MaxDeviation),
		Expected:  e,
		K:         k,
	}
}

func eloExpected(r, rd, item float64) float64 {
	scale := 400 + rd
	return 1 / (1 + math.Pow(10, (item-r)/scale))
}
