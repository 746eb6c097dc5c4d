package adaptive

import (
	"time"

	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
	"github.com/verte-zerg/tachy/internal/rating"
	"github.com/verte-zerg/tachy/internal/rolling"
	"github.com/verte-zerg/tachy/internal/search"
)

// Config configures an Engine.
type Config struct {
	// Rater estimates skill. Nil selects rating.GlickoLite.
	Rater rating.Model
}

// Engine turns outcomes into calibrated profiles. It holds no mutable state
// and is safe to share.
type Engine struct {
	rater rating.Model
}

// Decision explains how RecordOutcome reached the next params.
type Decision struct {
	Score       float64
	ItemRating  float64
	Expected    float64
	K           float64
	Accuracy    float64
	HasAccuracy bool
	Target      float64
	// Selected is false when the neighbourhood was empty and the current
	// params were kept.
	Selected bool
}

// NewEngine returns an Engine for cfg.
func NewEngine(cfg Config) *Engine {
	r := cfg.Rater
	if r == nil {
		r = rating.GlickoLite{}
	}
	return &Engine{rater: r}
}

// RecordOutcome folds an observed score in [0, 1] for the profile's current
// params into a new profile. p is not modified.
func (e *Engine) RecordOutcome(p model.AdaptiveProfile, score float64, m Modality, now time.Time) (model.AdaptiveProfile, Decision) {
	next := Normalize(p, m.Defaults)
	s := numeric.ClampOr(score, 0, 1, 0)
	current := next.CurrentParams

	itemRating := m.ItemRating(current)
	upd := e.rater.Update(next.Rating, next.Deviation, itemRating, s)
	next.Rating = numeric.ClampOr(upd.Rating, rating.MinRating, rating.MaxRating, next.Rating)
	next.Deviation = numeric.ClampOr(upd.Deviation, rating.MinDeviation, rating.MaxDeviation, next.Deviation)
	next.Attempts++
	at := now
	next.LastSessionAt = &at

	next.Rolling = rolling.Push(next.Rolling, model.Outcome{Score: s, At: now, Params: current.Clone()})
	acc, hasAcc := rolling.Accuracy(next.Rolling)
	next.FatigueBias = rolling.FatigueBias(next.Rolling, next.FatigueBias)

	target := rating.TargetItemRating(next.Rating, next.Deviation) + float64(next.FatigueBias*rolling.BiasStep)
	var candidates []model.Params
	if m.Neighborhood != nil {
		candidates = m.Neighborhood(current, next.Attempts)
	}
	chosen, ok := search.Select(current, candidates, m.ItemRating, target)
	if !ok {
		chosen = current
	}
	next.CurrentParams = mergeParams(m.Defaults, chosen)
	if m.ItemRating(next.CurrentParams) > m.ItemRating(next.BestParams) {
		next.BestParams = next.CurrentParams.Clone()
	}

	return next, Decision{
		Score:       s,
		ItemRating:  itemRating,
		Expected:    upd.Expected,
		K:           upd.K,
		Accuracy:    acc,
		HasAccuracy: hasAcc,
		Target:      target,
		Selected:    ok,
	}
}
