package ladder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tachy/internal/model"
)

func advanceN(p model.SpanProfile, n int, ok bool) model.SpanProfile {
	for i := 0; i < n; i++ {
		p = Advance(p, ok, Config{})
	}
	return p
}

func TestGrowAfterStreakWithCooldown(t *testing.T) {
	p := advanceN(Default(), 3, true)
	assert.Equal(t, 5, p.Length)
	assert.Equal(t, 1, p.Cooldown)
	assert.Equal(t, 0, p.SuccessStreak)

	p = Advance(p, true, Config{})
	assert.Equal(t, 5, p.Length)
	assert.Equal(t, 0, p.Cooldown)
	assert.Equal(t, 1, p.SuccessStreak, "outcomes during cooldown still count")

	p = advanceN(p, 2, true)
	assert.Equal(t, 6, p.Length)
}

func TestShrinkOnErrorWithMinClamp(t *testing.T) {
	p := Advance(Normalize(model.SpanProfile{Length: 4}), false, Config{})
	assert.Equal(t, 4, p.Length)
	assert.Equal(t, 0, p.Cooldown, "no cooldown when nothing changed")

	p = Advance(Normalize(model.SpanProfile{Length: 8}), false, Config{})
	assert.Equal(t, 7, p.Length)
	assert.Equal(t, 1, p.Cooldown)
	assert.Equal(t, 8, p.BestLength)
}

func TestErrorDuringCooldown(t *testing.T) {
	p := Normalize(model.SpanProfile{Length: 8, Cooldown: 1, SuccessStreak: 2, PromotionStreaks: 1})
	p = Advance(p, false, Config{})
	assert.Equal(t, 8, p.Length)
	assert.Equal(t, 0, p.Cooldown)
	assert.Equal(t, 0, p.SuccessStreak)
	assert.Equal(t, 0, p.PromotionStreaks)
}

func TestPromotionNeedsTwoStreaks(t *testing.T) {
	p := Normalize(model.SpanProfile{Stage: 1, Length: 10})

	p = advanceN(p, 3, true)
	assert.Equal(t, 1, p.Stage)
	assert.Equal(t, 10, p.Length)
	assert.Equal(t, 1, p.PromotionStreaks)

	p = advanceN(p, 3, true)
	assert.Equal(t, 2, p.Stage)
	assert.Equal(t, 8, p.Length)
	assert.Equal(t, 0, p.PromotionStreaks)
	assert.Equal(t, 1, p.Cooldown)
	assert.Equal(t, 2, p.BestStage)
	assert.Equal(t, 10, p.BestLength)
}

func TestErrorResetsPromotionProgress(t *testing.T) {
	p := advanceN(Normalize(model.SpanProfile{Stage: 1, Length: 10}), 3, true)
	require.Equal(t, 1, p.PromotionStreaks)
	p = Advance(p, false, Config{})
	assert.Equal(t, 0, p.PromotionStreaks)
	assert.Equal(t, 9, p.Length)
}

func TestTopStageKeepsGrowing(t *testing.T) {
	p := Normalize(model.SpanProfile{Stage: 4, Length: 13})
	p = advanceN(p, 3, true)
	assert.Equal(t, 4, p.Stage)
	assert.Equal(t, 14, p.Length)

	p = advanceN(p, 4, true)
	assert.Equal(t, 14, p.Length)
	assert.Equal(t, 0, p.Cooldown, "no cooldown when already at the maximum")
}

func TestConfigStreak(t *testing.T) {
	assert.Equal(t, 3, Config{}.streak())
	assert.Equal(t, 2, Config{SuccessStreakToGrow: 1}.streak())
	assert.Equal(t, 10, Config{SuccessStreakToGrow: 50}.streak())

	p := Advance(Default(), true, Config{SuccessStreakToGrow: 1})
	assert.Equal(t, 4, p.Length)
	p = Advance(p, true, Config{SuccessStreakToGrow: 1})
	assert.Equal(t, 5, p.Length)
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	p := Normalize(model.SpanProfile{Length: 8})
	_ = Advance(p, false, Config{})
	assert.Equal(t, 8, p.Length)
	assert.Equal(t, 0, p.Cooldown)
}

func TestNormalize(t *testing.T) {
	p := Normalize(model.SpanProfile{
		Stage:            9,
		Length:           2,
		BestStage:        1,
		BestLength:       99,
		SuccessStreak:    -4,
		PromotionStreaks: 40,
		Cooldown:         8,
		Rolling:          make([]model.SpanResult, 15),
	})
	assert.Equal(t, 4, p.Stage)
	assert.Equal(t, 4, p.Length)
	assert.Equal(t, 4, p.BestStage)
	assert.Equal(t, 14, p.BestLength)
	assert.Equal(t, 0, p.SuccessStreak)
	assert.Equal(t, 10, p.PromotionStreaks)
	assert.Equal(t, 5, p.Cooldown)
	assert.Len(t, p.Rolling, 10)
	assert.Equal(t, p, Normalize(p))
}

func TestPushResult(t *testing.T) {
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	p := advanceN(Default(), 3, true)
	p = PushResult(p, true, at)
	require.Len(t, p.Rolling, 1)
	assert.Equal(t, model.SpanResult{OK: true, Stage: 1, Length: 5, At: at}, p.Rolling[0])
	require.NotNil(t, p.LastSessionAt)

	for i := 0; i < 12; i++ {
		p = PushResult(p, i%2 == 0, at.Add(time.Duration(i)*time.Second))
	}
	assert.Len(t, p.Rolling, 10)
	assert.Equal(t, at.Add(11*time.Second), p.Rolling[9].At)
}

func TestParse(t *testing.T) {
	p := Parse([]byte("garbage"), 0)
	assert.Equal(t, Normalize(Default()), p)

	p = Parse([]byte("garbage"), 9)
	assert.Equal(t, 9, p.Length)
	assert.Equal(t, 9, p.BestLength)

	raw := `{"currentStage":"3","currentLength":11.4,"bestStageReached":2,
		"successStreak":null,"cooldown":"x",
		"rollingResults":[{"ok":1,"stage":3,"length":11,"at":"2026-10-01T00:00:00Z"},"junk"]}`
	p = Parse([]byte(raw), 6)
	assert.Equal(t, 3, p.Stage)
	assert.Equal(t, 11, p.Length)
	assert.Equal(t, 3, p.BestStage)
	assert.Equal(t, 0, p.SuccessStreak)
	assert.Equal(t, 0, p.Cooldown)
	require.Len(t, p.Rolling, 1)
	assert.True(t, p.Rolling[0].OK)

	p = Parse([]byte(`{"currentStage":2}`), 7)
	assert.Equal(t, 7, p.Length)
}
