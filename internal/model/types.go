// Package model defines shared data structures.
package model

import "time"

// Random is the injectable randomness source used by stimulus generation
// and item selection. *rand.Rand satisfies it.
type Random interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// Params is a named parameter vector describing a stimulus difficulty.
// Boolean flags are stored as 0 or 1.
type Params map[string]float64

// Clone returns an independent copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Outcome is one entry of a rolling performance window.
type Outcome struct {
	Score  float64   `json:"S" yaml:"score"`
	At     time.Time `json:"at" yaml:"at"`
	Params Params    `json:"params,omitempty" yaml:"params,omitempty"`
}

// AdaptiveProfile holds the calibration state of one continuous-difficulty modality.
type AdaptiveProfile struct {
	Rating        float64    `json:"R_user" yaml:"rating"`
	Deviation     float64    `json:"RD_user" yaml:"deviation"`
	Attempts      int        `json:"attempts_count" yaml:"attempts"`
	CurrentParams Params     `json:"currentParams" yaml:"current_params"`
	BestParams    Params     `json:"bestParams" yaml:"best_params"`
	LastSessionAt *time.Time `json:"lastSessionAt" yaml:"last_session_at"`
	Rolling       []Outcome  `json:"rollingResults" yaml:"rolling"`
	FatigueBias   int        `json:"fatigueBias" yaml:"fatigue_bias"`
	Cooldown      int        `json:"cooldown" yaml:"cooldown"`
}

// SpanResult is one entry of the ladder rolling window.
type SpanResult struct {
	OK     bool      `json:"ok" yaml:"ok"`
	Stage  int       `json:"stage" yaml:"stage"`
	Length int       `json:"length" yaml:"length"`
	At     time.Time `json:"at" yaml:"at"`
}

// SpanProfile holds the ladder progression state of the span modality.
type SpanProfile struct {
	Stage            int          `json:"currentStage" yaml:"stage"`
	Length           int          `json:"currentLength" yaml:"length"`
	BestStage        int          `json:"bestStageReached" yaml:"best_stage"`
	BestLength       int          `json:"bestLengthReached" yaml:"best_length"`
	LastSessionAt    *time.Time   `json:"lastSessionAt" yaml:"last_session_at"`
	Rolling          []SpanResult `json:"rollingResults" yaml:"rolling"`
	SuccessStreak    int          `json:"successStreak" yaml:"success_streak"`
	PromotionStreaks int          `json:"promotionStreaksAt10" yaml:"promotion_streaks"`
	Cooldown         int          `json:"cooldown" yaml:"cooldown"`
}

// PoolRating is a learner's estimate on the item-pool scale.
type PoolRating struct {
	Rating    float64 `json:"R_user" yaml:"rating"`
	Deviation float64 `json:"RD_user" yaml:"deviation"`
}

// AttemptRecord is a persisted outcome report.
type AttemptRecord struct {
	ID         int64
	Learner    string
	Modality   string
	At         time.Time
	Score      float64
	Rating     float64
	Deviation  float64
	ItemRating float64
	Params     Params
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Learner     string
	Modality    string
	Since       *time.Time
	Last        int
	CurveWindow int
}
