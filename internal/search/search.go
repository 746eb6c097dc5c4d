// Package search picks the next parameter vector from a local neighbourhood
// of candidates.
package search

import (
	"math"
	"sort"

	"github.com/verte-zerg/tachy/internal/model"
)

// RatingFunc maps a parameter vector to an item rating.
type RatingFunc func(model.Params) float64

type scored struct {
	params model.Params
	dist   float64
	delta  float64
	easier bool
}

// Select returns the candidate whose rating is closest to target. Ties go to
// the candidate with the least parameter churn from current, then to the
// easier one. It reports false when candidates is empty.
func Select(current model.Params, candidates []model.Params, rate RatingFunc, target float64) (model.Params, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	items := make([]scored, len(candidates))
	for i, c := range candidates {
		r := rate(c)
		items[i] = scored{
			params: c,
			dist:   math.Abs(r - target),
			delta:  Distance(current, c),
			easier: r <= target,
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.delta != b.delta {
			return a.delta < b.delta
		}
		return a.easier && !b.easier
	})
	return items[0].params, true
}

// Distance sums absolute differences over the union of keys. A key missing
// on one side, or holding a non-finite value, costs a flat 1 unless both
// sides are unusable in the same way.
func Distance(a, b model.Params) float64 {
	var sum float64
	seen := make(map[string]struct{}, len(a)+len(b))
	visit := func(k string) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		x, xok := a[k]
		y, yok := b[k]
		if xok && yok && finite(x) && finite(y) {
			sum += math.Abs(x - y)
			return
		}
		if label(x, xok) != label(y, yok) {
			sum++
		}
	}
	for k := range a {
		visit(k)
	}
	for k := range b {
		visit(k)
	}
	return sum
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func label(v float64, ok bool) string {
	switch {
	case !ok:
		return "missing"
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	default:
		return "finite"
	}
}
