// Package ladder implements the span modality's discrete progression: a
// (stage, length) state that grows on success streaks, shrinks on errors,
// and promotes only after two qualifying streaks at length 10 or more.
// A one-result cooldown follows every change.
package ladder

import (
	"math"
	"time"

	"github.com/verte-zerg/tachy/internal/loose"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
	"github.com/verte-zerg/tachy/internal/rolling"
)

// Bounds of the ladder state.
const (
	MinStage  = 1
	MaxStage  = 4
	MinLength = 4
	MaxLength = 14

	// PromotionLength is the length at which streaks count toward promotion.
	PromotionLength = 10
	// PromotionStreaks is the number of qualifying streaks needed to promote.
	PromotionStreaks = 2
	// PromotionShrink is how much the length drops on promotion.
	PromotionShrink = 2

	DefaultSuccessStreak = 3
	minSuccessStreak     = 2
	maxSuccessStreak     = 10

	maxStreak          = 999
	maxPromotionStreak = 10
	maxCooldown        = 5
)

// Config tunes Advance.
type Config struct {
	// SuccessStreakToGrow is the number of consecutive correct answers
	// needed to grow. Zero means DefaultSuccessStreak; other values are
	// clamped to [2, 10].
	SuccessStreakToGrow int
}

func (c Config) streak() int {
	if c.SuccessStreakToGrow == 0 {
		return DefaultSuccessStreak
	}
	return numeric.ClampInt(c.SuccessStreakToGrow, minSuccessStreak, maxSuccessStreak)
}

// Default returns the starting profile.
func Default() model.SpanProfile {
	return model.SpanProfile{
		Stage:      MinStage,
		Length:     MinLength,
		BestStage:  MinStage,
		BestLength: MinLength,
		Rolling:    []model.SpanResult{},
	}
}

// Normalize returns a copy of p that satisfies every ladder invariant.
// Normalize is idempotent.
func Normalize(p model.SpanProfile) model.SpanProfile {
	out := p
	out.Stage = numeric.ClampInt(out.Stage, MinStage, MaxStage)
	out.Length = numeric.ClampInt(out.Length, MinLength, MaxLength)
	out.BestStage = numeric.ClampInt(max(out.BestStage, out.Stage), MinStage, MaxStage)
	out.BestLength = numeric.ClampInt(max(out.BestLength, out.Length), MinLength, MaxLength)
	out.SuccessStreak = numeric.ClampInt(out.SuccessStreak, 0, maxStreak)
	out.PromotionStreaks = numeric.ClampInt(out.PromotionStreaks, 0, maxPromotionStreak)
	out.Cooldown = numeric.ClampInt(out.Cooldown, 0, maxCooldown)
	out.Rolling = rolling.Tail(p.Rolling, rolling.Size)
	if p.LastSessionAt != nil {
		at := *p.LastSessionAt
		out.LastSessionAt = &at
	}
	return out
}

// Advance applies one outcome and returns the next profile. p is not modified.
//
// While a cooldown is pending the outcome still updates the streak counters
// but stage and length stay put, and the cooldown is consumed.
func Advance(p model.SpanProfile, wasCorrect bool, cfg Config) model.SpanProfile {
	next := Normalize(p)
	need := cfg.streak()

	if wasCorrect {
		next.SuccessStreak = min(next.SuccessStreak+1, maxStreak)
		switch {
		case next.Cooldown > 0:
			next.Cooldown--
		case next.SuccessStreak >= need:
			next.SuccessStreak = 0
			if next.Stage < MaxStage && next.Length >= PromotionLength {
				next.PromotionStreaks++
				if next.PromotionStreaks >= PromotionStreaks {
					next.Stage++
					next.Length = max(MinLength, next.Length-PromotionShrink)
					next.PromotionStreaks = 0
					next.Cooldown = 1
				}
			} else {
				next = resize(next, next.Length+1)
			}
		}
	} else {
		next.SuccessStreak = 0
		next.PromotionStreaks = 0
		if next.Cooldown > 0 {
			next.Cooldown--
		} else {
			next = resize(next, next.Length-1)
		}
	}

	next.BestStage = max(next.BestStage, next.Stage)
	next.BestLength = max(next.BestLength, next.Length)
	return next
}

// resize moves to length, clamped, and starts a cooldown if it changed.
func resize(p model.SpanProfile, length int) model.SpanProfile {
	length = numeric.ClampInt(length, MinLength, MaxLength)
	if length != p.Length {
		p.Length = length
		p.Cooldown = 1
	}
	return p
}

// PushResult records an outcome at the profile's current stage and length.
// Call it after Advance so the entry reflects the post-transition state.
func PushResult(p model.SpanProfile, ok bool, at time.Time) model.SpanProfile {
	next := Normalize(p)
	window := append(next.Rolling, model.SpanResult{
		OK:     ok,
		Stage:  next.Stage,
		Length: next.Length,
		At:     at,
	})
	next.Rolling = rolling.Tail(window, rolling.Size)
	stamp := at
	next.LastSessionAt = &stamp
	return next
}

// Parse decodes a persisted span profile that may be partial or garbled and
// normalizes it. legacyLength seeds the length when the stored profile has
// none; pass 0 to ignore it.
func Parse(raw []byte, legacyLength int) model.SpanProfile {
	obj, ok := loose.Object(raw)
	if !ok {
		p := Default()
		if legacyLength != 0 {
			p.Length = legacyLength
		}
		return Normalize(p)
	}
	p := model.SpanProfile{
		Stage:            intField(obj, "currentStage", MinStage),
		Length:           intField(obj, "currentLength", 0),
		BestStage:        intField(obj, "bestStageReached", 0),
		BestLength:       intField(obj, "bestLengthReached", 0),
		SuccessStreak:    intField(obj, "successStreak", 0),
		PromotionStreaks: intField(obj, "promotionStreaksAt10", 0),
		Cooldown:         intField(obj, "cooldown", 0),
		LastSessionAt:    loose.Time(obj["lastSessionAt"]),
	}
	if p.Length == 0 {
		p.Length = legacyLength
	}
	for _, fields := range loose.Objects(obj["rollingResults"]) {
		r := model.SpanResult{
			OK:     loose.Truthy(fields["ok"]),
			Stage:  intField(fields, "stage", MinStage),
			Length: intField(fields, "length", MinLength),
		}
		if at := loose.Time(fields["at"]); at != nil {
			r.At = *at
		}
		p.Rolling = append(p.Rolling, r)
	}
	return Normalize(p)
}

func intField(obj map[string]any, key string, fallback int) int {
	return numeric.RoundInt(loose.Number(obj[key]), math.MinInt32, math.MaxInt32, fallback)
}
