// Package trainer ties the calibration engine to persistence: it loads a
// learner's profile, applies one outcome, and saves the result and an
// attempt log entry in one transaction.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/tachy/internal/adaptive"
	"github.com/verte-zerg/tachy/internal/generator"
	"github.com/verte-zerg/tachy/internal/itempool"
	"github.com/verte-zerg/tachy/internal/ladder"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/rating"
	"github.com/verte-zerg/tachy/internal/store"
)

// Stimulus is one string to flash and recall.
type Stimulus struct {
	Text  string
	Label string
}

// Verdict is the graded result of a recall attempt.
type Verdict struct {
	OK       bool
	Expected string
	Typed    string
	Status   string
}

func score(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// SpanSession drives the ladder progression.
type SpanSession struct {
	store   *store.Store
	learner string
	gen     *generator.Generator
	cfg     ladder.Config
	now     func() time.Time

	profile model.SpanProfile
	current string
}

// NewSpanSession loads the learner's span profile.
func NewSpanSession(ctx context.Context, st *store.Store, learner string, gen *generator.Generator, cfg ladder.Config) (*SpanSession, error) {
	profile, err := st.SpanProfile(ctx, learner)
	if err != nil {
		return nil, fmt.Errorf("failed to load span profile: %w", err)
	}
	return &SpanSession{
		store:   st,
		learner: learner,
		gen:     gen,
		cfg:     cfg,
		now:     time.Now,
		profile: profile,
	}, nil
}

// Profile returns the current ladder state.
func (s *SpanSession) Profile() model.SpanProfile {
	return s.profile
}

// Next renders a stimulus at the current stage and length.
func (s *SpanSession) Next() Stimulus {
	s.current = s.gen.Span(s.profile.Stage, s.profile.Length)
	return Stimulus{
		Text:  s.current,
		Label: fmt.Sprintf("Stage %d · Length %d", s.profile.Stage, s.profile.Length),
	}
}

// Record grades typed against the last stimulus from Next and advances the
// ladder. The in-memory profile only moves once the store has committed.
func (s *SpanSession) Record(ctx context.Context, typed string) (Verdict, error) {
	ok := generator.EvaluateAttempt(s.current, typed)
	at := s.now()
	shown := s.profile

	next := ladder.Advance(s.profile, ok, s.cfg)
	next = ladder.PushResult(next, ok, at)
	rec := model.AttemptRecord{
		Learner:    s.learner,
		Modality:   store.ModalitySpan,
		At:         at,
		Score:      score(ok),
		Rating:     float64(next.Length),
		ItemRating: float64(shown.Length),
		Params: model.Params{
			"stage":  float64(shown.Stage),
			"length": float64(shown.Length),
		},
	}
	if _, err := s.store.RecordAttempt(ctx, rec, next); err != nil {
		return Verdict{}, fmt.Errorf("failed to save span attempt: %w", err)
	}
	s.profile = next
	return Verdict{
		OK:       ok,
		Expected: s.current,
		Typed:    typed,
		Status:   fmt.Sprintf("Stage %d · Length %d · Best %d/%d", next.Stage, next.Length, next.BestStage, next.BestLength),
	}, nil
}

// PoolSession drives item-pool selection on the Elo-lite scale.
type PoolSession struct {
	store   *store.Store
	learner string
	gen     *generator.Generator
	now     func() time.Time
	pool    []itempool.Item

	rating  model.PoolRating
	item    itempool.Item
	current string
}

// NewPoolSession loads the learner's pool rating.
func NewPoolSession(ctx context.Context, st *store.Store, learner string, gen *generator.Generator) (*PoolSession, error) {
	r, err := st.PoolRating(ctx, learner)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool rating: %w", err)
	}
	return &PoolSession{
		store:   st,
		learner: learner,
		gen:     gen,
		now:     time.Now,
		pool:    itempool.Build(),
		rating:  r,
	}, nil
}

// Rating returns the current pool rating.
func (s *PoolSession) Rating() model.PoolRating {
	return s.rating
}

// Next selects an item near the learner's rating and renders it.
func (s *PoolSession) Next() Stimulus {
	item := s.Suggest()
	s.item = item
	s.current = s.gen.Item(item)
	return Stimulus{
		Text:  s.current,
		Label: fmt.Sprintf("Item %.0f · Rating %.0f", item.Rating, s.rating.Rating),
	}
}

// Record grades typed against the last stimulus from Next.
func (s *PoolSession) Record(ctx context.Context, typed string) (Verdict, error) {
	ok := generator.EvaluateAttempt(s.current, typed)
	res, err := s.Score(ctx, s.item, score(ok))
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		OK:       ok,
		Expected: s.current,
		Typed:    typed,
		Status:   fmt.Sprintf("Rating %.0f ± %.0f", res.Rating, res.Deviation),
	}, nil
}

// Score applies an observed score on item, then saves the new rating together
// with the attempt log entry.
func (s *PoolSession) Score(ctx context.Context, item itempool.Item, sc float64) (rating.Result, error) {
	if item.Rating == 0 {
		item.Rating = itempool.ItemRating(item.Length, item.Charset)
	}
	at := s.now()
	res := itempool.Record(s.rating.Rating, s.rating.Deviation, item, sc)
	next := model.PoolRating{Rating: res.Rating, Deviation: res.Deviation}
	rec := model.AttemptRecord{
		Learner:    s.learner,
		Modality:   store.ModalityPool,
		At:         at,
		Score:      sc,
		Rating:     res.Rating,
		Deviation:  res.Deviation,
		ItemRating: item.Rating,
		Params:     item.Params(),
	}
	if _, err := s.store.RecordAttempt(ctx, rec, next); err != nil {
		return rating.Result{}, fmt.Errorf("failed to save pool attempt: %w", err)
	}
	s.rating = next
	return res, nil
}

// Suggest returns the next item without rendering a stimulus.
func (s *PoolSession) Suggest() itempool.Item {
	item, _ := itempool.SelectNext(s.rating.Rating, s.rating.Deviation, s.pool, s.gen.Source())
	return item
}

// RecordAdaptive loads the learner's profile for m, applies score, and
// persists the new profile and an attempt entry.
func RecordAdaptive(ctx context.Context, st *store.Store, engine *adaptive.Engine, learner string, m adaptive.Modality, sc float64, at time.Time) (model.AdaptiveProfile, adaptive.Decision, error) {
	profile, err := st.AdaptiveProfile(ctx, learner, m)
	if err != nil {
		return model.AdaptiveProfile{}, adaptive.Decision{}, fmt.Errorf("failed to load %s profile: %w", m.Name, err)
	}
	shown := profile.CurrentParams.Clone()
	next, decision := engine.RecordOutcome(profile, sc, m, at)
	rec := model.AttemptRecord{
		Learner:    learner,
		Modality:   m.Name,
		At:         at,
		Score:      decision.Score,
		Rating:     next.Rating,
		Deviation:  next.Deviation,
		ItemRating: decision.ItemRating,
		Params:     shown,
	}
	if _, err := st.RecordAttempt(ctx, rec, next); err != nil {
		return model.AdaptiveProfile{}, adaptive.Decision{}, fmt.Errorf("failed to save %s attempt: %w", m.Name, err)
	}
	return next, decision, nil
}
