// Package rating implements the skill estimators used to calibrate practice
// difficulty.
//
// Two strategies are provided. GlickoLite folds the learner and item
// uncertainty into a geometric scaling factor, and EloLite widens the
// comparison scale directly with the learner's deviation and shrinks the
// variance rather than the deviation. Both satisfy Model so callers can pick
// one per modality.
//
// The estimators are total: non-finite input falls back to a documented
// default and is then clamped to its domain.
package rating

import (
	"errors"
	"fmt"
	"strings"
)

// Model is the capability shared by the rating strategies.
type Model interface {
	// ExpectedScore returns the probability in (0, 1) that a learner rated
	// r with deviation rd succeeds on an item rated item.
	ExpectedScore(r, rd, item float64) float64
	// Update folds an observed outcome s in [0, 1] into the estimate.
	Update(r, rd, item, s float64) Result
}

// Result is the outcome of a rating update.
type Result struct {
	Rating    float64
	Deviation float64
	Expected  float64
	K         float64
}

// Compile-time interface checks.
var (
	_ Model = GlickoLite{}
	_ Model = EloLite{}
)

// ErrUnknownModel is returned by ByName for an unrecognised strategy name.
var ErrUnknownModel = errors.New("rating: unknown model")

// Strategy names accepted by ByName.
const (
	NameGlicko = "glicko"
	NameElo    = "elo"
)

// ByName returns the strategy registered under name. An empty name selects GlickoLite.
func ByName(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameGlicko:
		return GlickoLite{}, nil
	case NameElo:
		return EloLite{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}
