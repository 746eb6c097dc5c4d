// Package adaptive calibrates continuous-difficulty modalities: it keeps an
// AdaptiveProfile valid and turns each reported outcome into the next
// parameter vector.
package adaptive

import (
	"math"

	"github.com/verte-zerg/tachy/internal/loose"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
	"github.com/verte-zerg/tachy/internal/rating"
	"github.com/verte-zerg/tachy/internal/rolling"
)

const (
	maxFatigueBias = 5
	maxCooldown    = 2
	maxAttempts    = 1_000_000_000
)

// Default returns a fresh profile whose current and best params are defaults.
func Default(defaults model.Params) model.AdaptiveProfile {
	return model.AdaptiveProfile{
		Rating:        rating.DefaultRating,
		Deviation:     rating.DefaultDeviation,
		CurrentParams: defaults.Clone(),
		BestParams:    defaults.Clone(),
		Rolling:       []model.Outcome{},
	}
}

// Normalize returns a copy of p that satisfies every profile invariant.
// Zero (unset) or non-finite ratings fall back to the defaults, params missing a
// key take it from defaults, and the rolling window keeps its last entries.
// Normalize is idempotent.
func Normalize(p model.AdaptiveProfile, defaults model.Params) model.AdaptiveProfile {
	out := model.AdaptiveProfile{
		Rating:        normalizeRating(p.Rating),
		Deviation:     normalizeDeviation(p.Deviation),
		Attempts:      numeric.ClampInt(p.Attempts, 0, maxAttempts),
		CurrentParams: mergeParams(defaults, p.CurrentParams),
		BestParams:    mergeParams(defaults, p.BestParams),
		FatigueBias:   numeric.ClampInt(p.FatigueBias, -maxFatigueBias, maxFatigueBias),
		Cooldown:      numeric.ClampInt(p.Cooldown, 0, maxCooldown),
	}
	if p.LastSessionAt != nil {
		at := *p.LastSessionAt
		out.LastSessionAt = &at
	}
	out.Rolling = rolling.Tail(p.Rolling, rolling.Size)
	for i := range out.Rolling {
		out.Rolling[i].Score = numeric.ClampOr(out.Rolling[i].Score, 0, 1, 0)
		out.Rolling[i].Params = out.Rolling[i].Params.Clone()
	}
	return out
}

// Parse decodes a persisted profile that may be partial, mistyped or not JSON
// at all, and normalizes it. It never fails. A stored rating is clamped into
// range even when it is zero; only a missing or unusable one takes the default.
func Parse(raw []byte, defaults model.Params) model.AdaptiveProfile {
	obj, ok := loose.Object(raw)
	if !ok {
		return Default(defaults)
	}
	p := model.AdaptiveProfile{
		Rating:        numeric.ClampOr(loose.Number(obj["R_user"]), rating.MinRating, rating.MaxRating, rating.DefaultRating),
		Deviation:     numeric.ClampOr(loose.Number(obj["RD_user"]), rating.MinDeviation, rating.MaxDeviation, rating.DefaultDeviation),
		Attempts:      numeric.RoundInt(loose.Number(obj["attempts_count"]), 0, maxAttempts, 0),
		CurrentParams: params(obj["currentParams"]),
		BestParams:    params(obj["bestParams"]),
		LastSessionAt: loose.Time(obj["lastSessionAt"]),
		FatigueBias:   numeric.RoundInt(loose.Number(obj["fatigueBias"]), -maxFatigueBias, maxFatigueBias, 0),
		Cooldown:      numeric.RoundInt(loose.Number(obj["cooldown"]), 0, maxCooldown, 0),
	}
	for _, fields := range loose.Objects(obj["rollingResults"]) {
		o := model.Outcome{
			Score:  numeric.Finite(loose.Number(fields["S"]), 0),
			Params: params(fields["params"]),
		}
		if at := loose.Time(fields["at"]); at != nil {
			o.At = *at
		}
		p.Rolling = append(p.Rolling, o)
	}
	return Normalize(p, defaults)
}

func normalizeRating(v float64) float64 {
	if v == 0 {
		return rating.DefaultRating
	}
	return numeric.ClampOr(v, rating.MinRating, rating.MaxRating, rating.DefaultRating)
}

func normalizeDeviation(v float64) float64 {
	if v == 0 {
		return rating.DefaultDeviation
	}
	return numeric.ClampOr(v, rating.MinDeviation, rating.MaxDeviation, rating.DefaultDeviation)
}

// mergeParams overlays p on defaults. Non-finite values fall back to the
// default for that key, or are dropped when there is none.
func mergeParams(defaults, p model.Params) model.Params {
	out := defaults.Clone()
	if out == nil {
		out = model.Params{}
	}
	for k, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func params(v any) model.Params {
	fields, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(model.Params, len(fields))
	for k, raw := range fields {
		if f := loose.Number(raw); !math.IsNaN(f) && !math.IsInf(f, 0) {
			out[k] = f
		}
	}
	return out
}
