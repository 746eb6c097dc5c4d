package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tachy/internal/adaptive"
	"github.com/verte-zerg/tachy/internal/ladder"
	"github.com/verte-zerg/tachy/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "tachy.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestEnsureLearnerIsStable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first, err := st.EnsureLearner(ctx, "ada")
	require.NoError(t, err)
	second, err := st.EnsureLearner(ctx, " ada ")
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)

	other, err := st.EnsureLearner(ctx, "grace")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	_, err = st.EnsureLearner(ctx, "  ")
	assert.Error(t, err)
}

func TestLookupLearnerDoesNotCreate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.LookupLearner(ctx, "ada")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.LookupLearner(ctx, "ada")
	require.ErrorIs(t, err, ErrNotFound, "lookup must not create the learner")

	id, err := st.EnsureLearner(ctx, "ada")
	require.NoError(t, err)
	found, err := st.LookupLearner(ctx, " ada")
	require.NoError(t, err)
	assert.Equal(t, id, found)
}

func TestProfileDataNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.ProfileData(context.Background(), "nobody", "reader")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveProfileRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.EnsureLearner(ctx, "ada")
	require.NoError(t, err)

	reader := adaptive.Reader()
	missing, err := st.AdaptiveProfile(ctx, id, reader)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, missing.Rating)
	assert.Equal(t, 0, missing.Attempts)

	profile := missing
	profile.Rating = 1234
	profile.Attempts = 7
	require.NoError(t, st.SaveProfile(ctx, id, reader.Name, profile))
	profile.Rating = 1250
	require.NoError(t, st.SaveProfile(ctx, id, reader.Name, profile))

	loaded, err := st.AdaptiveProfile(ctx, id, reader)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, loaded.Rating)
	assert.Equal(t, 7, loaded.Attempts)

	docs, err := st.ProfileDocuments(ctx, id)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs, reader.Name)
}

func TestSpanAndPoolDefaults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	span, err := st.SpanProfile(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, ladder.MinStage, span.Stage)
	assert.Equal(t, ladder.MinLength, span.Length)

	pool, err := st.PoolRating(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, model.PoolRating{Rating: 1000, Deviation: 250}, pool)

	span.Stage = 3
	span.Length = 6
	require.NoError(t, st.SaveProfile(ctx, "ada", ModalitySpan, span))
	require.NoError(t, st.SaveProfile(ctx, "ada", ModalityPool, model.PoolRating{Rating: 1400, Deviation: 120}))

	span, err = st.SpanProfile(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 3, span.Stage)
	assert.Equal(t, 6, span.Length)

	pool, err = st.PoolRating(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, model.PoolRating{Rating: 1400, Deviation: 120}, pool)
}

func TestListAttemptsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	modalities := []string{"reader", "fixation", "reader", "reader"}
	for i, modality := range modalities {
		rec := model.AttemptRecord{
			Learner:    "ada",
			Modality:   modality,
			At:         base.Add(time.Duration(i) * time.Minute),
			Score:      float64(i%2) * 1,
			Rating:     1000 + float64(i)*10,
			Deviation:  250,
			ItemRating: 1100,
			Params:     model.Params{"wpm": 200 + float64(i)},
		}
		_, err := st.InsertAttempt(ctx, rec)
		require.NoError(t, err)
	}
	_, err := st.InsertAttempt(ctx, model.AttemptRecord{Learner: "grace", Modality: "reader", At: base})
	require.NoError(t, err)

	all, err := st.ListAttempts(ctx, model.StatsConfig{Learner: "ada"})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].At.Equal(base))
	assert.Equal(t, 203.0, all[3].Params["wpm"])

	readers, err := st.ListAttempts(ctx, model.StatsConfig{Learner: "ada", Modality: "reader", Last: 2})
	require.NoError(t, err)
	require.Len(t, readers, 2)
	assert.Equal(t, 1020.0, readers[0].Rating)
	assert.Equal(t, 1030.0, readers[1].Rating)

	since := base.Add(90 * time.Second)
	recent, err := st.ListAttempts(ctx, model.StatsConfig{Learner: "ada", Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestRecordAttemptCommitsBoth(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := model.AttemptRecord{Learner: "ada", Modality: ModalityPool, At: at, Score: 1, Rating: 1015, Deviation: 240, ItemRating: 1000}
	id, err := st.RecordAttempt(ctx, rec, model.PoolRating{Rating: 1015, Deviation: 240})
	require.NoError(t, err)
	assert.Positive(t, id)

	pool, err := st.PoolRating(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, model.PoolRating{Rating: 1015, Deviation: 240}, pool)

	attempts, err := st.ListAttempts(ctx, model.StatsConfig{Learner: "ada"})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 1015.0, attempts[0].Rating)
}

func TestRecordAttemptRollsBackProfile(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	reader := adaptive.Reader()

	before := adaptive.Default(reader.Defaults)
	before.Rating = 1200
	require.NoError(t, st.SaveProfile(ctx, "ada", reader.Name, before))

	_, err := st.db.Exec(`DROP TABLE attempts`)
	require.NoError(t, err)

	after := before
	after.Rating = 1215
	after.Attempts = 1
	rec := model.AttemptRecord{Learner: "ada", Modality: reader.Name, At: time.Now(), Score: 1, Rating: 1215}
	_, err = st.RecordAttempt(ctx, rec, after)
	require.Error(t, err)

	loaded, err := st.AdaptiveProfile(ctx, "ada", reader)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, loaded.Rating)
	assert.Equal(t, 0, loaded.Attempts)

	_, err = st.RecordAttempt(ctx, model.AttemptRecord{Learner: "grace", Modality: ModalityPool, At: time.Now()}, model.PoolRating{Rating: 1300, Deviation: 200})
	require.Error(t, err)
	_, err = st.ProfileData(ctx, "grace", ModalityPool)
	assert.ErrorIs(t, err, ErrNotFound, "a failed first attempt leaves no profile behind")
}

func TestProfilesSkipsUnknownModalities(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	reader := adaptive.Reader()
	require.NoError(t, st.SaveProfile(ctx, "ada", reader.Name, adaptive.Default(reader.Defaults)))
	require.NoError(t, st.SaveProfile(ctx, "ada", "juggling", map[string]int{"x": 1}))
	require.NoError(t, st.SaveProfile(ctx, "ada", ModalityPool, model.PoolRating{Rating: 1200, Deviation: 100}))

	profiles, err := st.Profiles(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, profiles.Adaptive, 1)
	assert.NotNil(t, profiles.Pool)
	assert.Nil(t, profiles.Span)

	only := profiles.Only(ModalityPool)
	assert.Empty(t, only.Adaptive)
	require.NotNil(t, only.Pool)
	assert.Equal(t, 1200.0, only.Pool.Rating)
	assert.True(t, profiles.Only("fixation").Empty())
}
