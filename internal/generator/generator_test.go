package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/tachy/internal/itempool"
)

type constRandom float64

func (c constRandom) Float64() float64 { return float64(c) }

func TestStageCharsets(t *testing.T) {
	s1 := StageCharset(1)
	assert.Contains(t, s1, "0")
	assert.NotContains(t, s1, "O", "stage 1 drops O")

	s2 := StageCharset(2)
	assert.Contains(t, s2, "0")
	assert.NotContains(t, s2, "O", "stage 2 drops O")

	s3 := StageCharset(3)
	assert.NotContains(t, s3, "O")
	assert.NotContains(t, s3, "o")

	s4 := StageCharset(4)
	assert.Contains(t, s4, "@")
	assert.Contains(t, s4, "=")

	assert.Equal(t, Digits, StageCharset(0), "out of range stages clamp")
	assert.Equal(t, s4, StageCharset(7))
}

func TestSpanStimulusDeterministic(t *testing.T) {
	assert.Equal(t, "000000", SpanStimulus(constRandom(0), 1, 6))
	assert.Equal(t, "9999", SpanStimulus(constRandom(0.9999), 1, 4))
	assert.Len(t, SpanStimulus(constRandom(0.5), 2, 99), 14, "length clamps to the ladder maximum")
}

func TestGeneratorRespectsStage(t *testing.T) {
	g := NewWithSource(rand.New(rand.NewSource(7)))
	for i := 0; i < 50; i++ {
		s := g.Span(2, 8)
		assert.Len(t, s, 8)
		for _, r := range s {
			assert.Contains(t, Digits+Uppercase, string(r), "stimulus %q", s)
		}
	}
}

func TestItemStimulus(t *testing.T) {
	g := New(3)
	item := itempool.Item{Length: 5, Charset: itempool.Tier(3)}
	s := g.Item(item)
	assert.Len(t, s, 5)
	alphabet := ItemCharset(item.Charset)
	for _, r := range s {
		assert.Contains(t, alphabet, string(r))
	}
	assert.Equal(t, Lowercase, ItemCharset(itempool.Charset{}), "empty charset falls back to lowercase")
}

func TestEvaluateAttempt(t *testing.T) {
	assert.True(t, EvaluateAttempt("A10", "A10 "), "trailing whitespace is ignored")
	assert.True(t, EvaluateAttempt("A10", "\tA10"), "leading whitespace is ignored")
	assert.False(t, EvaluateAttempt("A10", "A1O"), "O does not match 0")
	assert.False(t, EvaluateAttempt("Ab", "ab"), "comparison is case-sensitive")
}
