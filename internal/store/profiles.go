package store

import (
	"context"
	"errors"

	"github.com/verte-zerg/tachy/internal/adaptive"
	"github.com/verte-zerg/tachy/internal/itempool"
	"github.com/verte-zerg/tachy/internal/ladder"
	"github.com/verte-zerg/tachy/internal/model"
)

// Profile keys for the modalities that are not adaptive.Modality values.
const (
	ModalitySpan = "span"
	ModalityPool = "pool"
)

// AdaptiveProfile loads and normalizes the profile of m. A missing profile
// yields the modality defaults.
func (s *Store) AdaptiveProfile(ctx context.Context, learnerID string, m adaptive.Modality) (model.AdaptiveProfile, error) {
	data, err := s.ProfileData(ctx, learnerID, m.Name)
	if errors.Is(err, ErrNotFound) {
		return adaptive.Default(m.Defaults), nil
	}
	if err != nil {
		return model.AdaptiveProfile{}, err
	}
	return adaptive.Parse(data, m.Defaults), nil
}

// SpanProfile loads and normalizes the span ladder profile.
func (s *Store) SpanProfile(ctx context.Context, learnerID string) (model.SpanProfile, error) {
	data, err := s.ProfileData(ctx, learnerID, ModalitySpan)
	if errors.Is(err, ErrNotFound) {
		return ladder.Default(), nil
	}
	if err != nil {
		return model.SpanProfile{}, err
	}
	return ladder.Parse(data, 0), nil
}

// PoolRating loads the learner's item-pool rating.
func (s *Store) PoolRating(ctx context.Context, learnerID string) (model.PoolRating, error) {
	data, err := s.ProfileData(ctx, learnerID, ModalityPool)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return model.PoolRating{}, err
	}
	return itempool.ParseRating(data), nil
}

// Profiles is every stored profile of one learner, normalized.
type Profiles struct {
	Adaptive map[string]model.AdaptiveProfile `json:"adaptive" yaml:"adaptive"`
	Span     *model.SpanProfile               `json:"span,omitempty" yaml:"span,omitempty"`
	Pool     *model.PoolRating                `json:"pool,omitempty" yaml:"pool,omitempty"`
}

// Empty reports whether no profile was found.
func (p Profiles) Empty() bool {
	return len(p.Adaptive) == 0 && p.Span == nil && p.Pool == nil
}

// Profiles loads every stored profile of the learner. Documents under an
// unknown modality are skipped.
func (s *Store) Profiles(ctx context.Context, learnerID string) (Profiles, error) {
	docs, err := s.ProfileDocuments(ctx, learnerID)
	if err != nil {
		return Profiles{}, err
	}
	out := Profiles{Adaptive: map[string]model.AdaptiveProfile{}}
	for name, data := range docs {
		switch name {
		case ModalitySpan:
			span := ladder.Parse(data, 0)
			out.Span = &span
		case ModalityPool:
			pool := itempool.ParseRating(data)
			out.Pool = &pool
		default:
			if m, ok := adaptive.Lookup(name); ok {
				out.Adaptive[name] = adaptive.Parse(data, m.Defaults)
			}
		}
	}
	return out, nil
}

// Only returns the subset of p stored under modality.
func (p Profiles) Only(modality string) Profiles {
	out := Profiles{Adaptive: map[string]model.AdaptiveProfile{}}
	switch modality {
	case ModalitySpan:
		out.Span = p.Span
	case ModalityPool:
		out.Pool = p.Pool
	default:
		if a, ok := p.Adaptive[modality]; ok {
			out.Adaptive[modality] = a
		}
	}
	return out
}
