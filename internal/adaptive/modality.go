package adaptive

import (
	"math"

	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
	"github.com/verte-zerg/tachy/internal/search"
)

// Modality names.
const (
	NameReader   = "reader"
	NameFixation = "fixation"
)

// Modality describes one continuous-difficulty training mode.
type Modality struct {
	Name     string
	Defaults model.Params
	// ItemRating scores a parameter vector on the rating scale. Weights are
	// tuned so one step of each dimension moves perceived difficulty by a
	// comparable amount.
	ItemRating search.RatingFunc
	// Neighborhood returns the candidates reachable from current in one step.
	// attempts is the profile's attempt count after the current outcome.
	Neighborhood func(current model.Params, attempts int) []model.Params
}

// Lookup returns the built-in modality registered under name.
func Lookup(name string) (Modality, bool) {
	switch name {
	case NameReader:
		return Reader(), true
	case NameFixation:
		return Fixation(), true
	default:
		return Modality{}, false
	}
}

// Names lists the built-in modalities.
func Names() []string {
	return []string{NameReader, NameFixation}
}

// Reader parameters.
const (
	ParamExposureMs   = "exposureMs"
	ParamStimulusSize = "stimulusSize"
	ParamComplexity   = "complexity"
)

// Reader is the rapid serial reading modality: words are flashed in chunks
// of stimulusSize for exposureMs each, over text of the given complexity.
func Reader() Modality {
	return Modality{
		Name: NameReader,
		Defaults: model.Params{
			ParamExposureMs:   250,
			ParamStimulusSize: 8,
			ParamComplexity:   1.0,
		},
		ItemRating:   readerItemRating,
		Neighborhood: readerNeighborhood,
	}
}

func readerItemRating(p model.Params) float64 {
	const (
		size0 = 8.0
		ms0   = 250.0
		a     = 40.0
		b     = 300.0
		c     = 1.2
	)
	return 1000 +
		a*(value(p, ParamStimulusSize, size0)-size0) +
		b*(value(p, ParamComplexity, 1.0)-1.0) +
		c*(ms0-value(p, ParamExposureMs, ms0))
}

func readerNeighborhood(cur model.Params, _ int) []model.Params {
	ms := value(cur, ParamExposureMs, 250)
	size := value(cur, ParamStimulusSize, 8)
	cx := value(cur, ParamComplexity, 1.0)

	out := make([]model.Params, 0, 27)
	for _, dMs := range []float64{-25, 0, 25} {
		for _, dSz := range []float64{-1, 0, 1} {
			for _, dCx := range []float64{-0.05, 0, 0.05} {
				out = append(out, model.Params{
					ParamExposureMs:   numeric.Clamp(ms+dMs, 80, 600),
					ParamStimulusSize: numeric.Clamp(size+dSz, 4, 20),
					ParamComplexity:   numeric.Clamp(cx+dCx, 1.0, 1.5),
				})
			}
		}
	}
	return out
}

// Fixation parameters.
const (
	ParamHoldMs          = "holdMs"
	ParamTargetSizePx    = "targetSizePx"
	ParamDistractorCount = "distractorCount"
	ParamAmplitude       = "amplitude"
	ParamMotionFlag      = "motionFlag"
)

// motionToggleEvery offers a motion-flag flip as an extra candidate on every
// n-th attempt.
const motionToggleEvery = 5

// Fixation is the eye-fixation modality: a target is held for holdMs among
// distractors, optionally moving.
func Fixation() Modality {
	return Modality{
		Name: NameFixation,
		Defaults: model.Params{
			ParamHoldMs:          600,
			ParamTargetSizePx:    24,
			ParamDistractorCount: 2,
			ParamAmplitude:       1.0,
			ParamMotionFlag:      0,
		},
		ItemRating:   fixationItemRating,
		Neighborhood: fixationNeighborhood,
	}
}

func fixationItemRating(p model.Params) float64 {
	const (
		hold0 = 600.0
		size0 = 24.0
		d0    = 2.0
		amp0  = 1.0
	)
	motion := 0.0
	if value(p, ParamMotionFlag, 0) != 0 {
		motion = 1
	}
	return 1000 +
		35*((value(p, ParamHoldMs, hold0)-hold0)/100) +
		25*((size0-value(p, ParamTargetSizePx, size0))/5) +
		40*(value(p, ParamDistractorCount, d0)-d0) +
		80*(value(p, ParamAmplitude, amp0)-amp0) +
		120*motion
}

func fixationNeighborhood(cur model.Params, attempts int) []model.Params {
	hold := value(cur, ParamHoldMs, 600)
	size := value(cur, ParamTargetSizePx, 24)
	distractors := value(cur, ParamDistractorCount, 2)
	amp := value(cur, ParamAmplitude, 1.0)
	motion := value(cur, ParamMotionFlag, 0)

	out := make([]model.Params, 0, 82)
	for _, dH := range []float64{-100, 0, 100} {
		for _, dS := range []float64{-2, 0, 2} {
			for _, dD := range []float64{-1, 0, 1} {
				for _, dA := range []float64{-0.1, 0, 0.1} {
					out = append(out, model.Params{
						ParamHoldMs:          numeric.Clamp(hold+dH, 300, 2000),
						ParamTargetSizePx:    numeric.Clamp(size+dS, 10, 40),
						ParamDistractorCount: numeric.Clamp(distractors+dD, 0, 8),
						ParamAmplitude:       numeric.Clamp(amp+dA, 0.5, 2.0),
						ParamMotionFlag:      motion,
					})
				}
			}
		}
	}
	if attempts%motionToggleEvery == 0 {
		toggled := cur.Clone()
		if toggled == nil {
			toggled = model.Params{}
		}
		if motion != 0 {
			toggled[ParamMotionFlag] = 0
		} else {
			toggled[ParamMotionFlag] = 1
		}
		out = append(out, toggled)
	}
	return out
}

// ReaderSettings are the presentation settings derived from reader params.
type ReaderSettings struct {
	WPM   int
	Chunk int
}

// ReaderSettingsFor converts reader params into presentation settings.
func ReaderSettingsFor(p model.Params) ReaderSettings {
	exposure := numeric.Clamp(value(p, ParamExposureMs, 250), 80, 600)
	return ReaderSettings{
		WPM:   numeric.RoundInt(60000/exposure, 100, 1200, 240),
		Chunk: numeric.RoundInt(value(p, ParamStimulusSize, 8), 1, 20, 8),
	}
}

// FixationSettings are the presentation settings derived from fixation params.
type FixationSettings struct {
	HoldMs int
	Cols   int
	Rows   int
}

// FixationSettingsFor converts fixation params into presentation settings.
func FixationSettingsFor(p model.Params) FixationSettings {
	return FixationSettings{
		HoldMs: numeric.RoundInt(value(p, ParamHoldMs, 600), 50, 3000, 600),
		Cols:   numeric.RoundInt(value(p, ParamDistractorCount, 2)+1, 1, 8, 3),
		Rows:   numeric.RoundInt(8+value(p, ParamAmplitude, 1.0)*4, 6, 16, 12),
	}
}

func value(p model.Params, key string, fallback float64) float64 {
	v, ok := p[key]
	if !ok || math.IsNaN(v) {
		return fallback
	}
	return v
}
