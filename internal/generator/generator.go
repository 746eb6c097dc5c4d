// Package generator builds span stimuli and checks typed answers.
package generator

import (
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/tachy/internal/itempool"
	"github.com/verte-zerg/tachy/internal/ladder"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
)

// Character classes. O and o are left out so they cannot be mistaken for 0.
const (
	Digits    = "0123456789"
	Uppercase = "ABCDEFGHIJKLMNPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnpqrstuvwxyz"
	Specials  = ".,;:!?-_()[]{}\\/@#$%&*+="
	Symbols   = "_"
)

// Generator produces randomized stimuli from an injected source.
type Generator struct {
	rnd model.Random
}

// New returns a Generator seeded with seed, or with the current time when seed is 0.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// NewWithSource returns a Generator drawing from src.
func NewWithSource(src model.Random) *Generator {
	return &Generator{rnd: src}
}

// Source exposes the generator's random source for other selections that
// must share its sequence.
func (g *Generator) Source() model.Random {
	return g.rnd
}

// Span returns a stimulus for a ladder stage and length.
func (g *Generator) Span(stage, length int) string {
	return SpanStimulus(g.rnd, stage, length)
}

// Item returns a stimulus for a pool item.
func (g *Generator) Item(item itempool.Item) string {
	return ItemStimulus(g.rnd, item.Length, item.Charset)
}

// StageCharset returns the alphabet used at stage: digits, then uppercase,
// then lowercase, then specials are added.
func StageCharset(stage int) string {
	switch {
	case stage <= 1:
		return Digits
	case stage == 2:
		return Digits + Uppercase
	case stage == 3:
		return Digits + Uppercase + Lowercase
	default:
		return Digits + Uppercase + Lowercase + Specials
	}
}

// ItemCharset returns the alphabet for a pool charset. An empty charset
// falls back to lowercase.
func ItemCharset(c itempool.Charset) string {
	var b strings.Builder
	if c.Lower {
		b.WriteString(Lowercase)
	}
	if c.Upper {
		b.WriteString(Uppercase)
	}
	if c.Digits {
		b.WriteString(Digits)
	}
	if c.Symbols {
		b.WriteString(Symbols)
	}
	if b.Len() == 0 {
		return Lowercase
	}
	return b.String()
}

// SpanStimulus draws length characters, clamped to the ladder bounds, from
// the stage alphabet.
func SpanStimulus(src model.Random, stage, length int) string {
	length = numeric.ClampInt(length, ladder.MinLength, ladder.MaxLength)
	return draw(src, StageCharset(stage), length)
}

// ItemStimulus draws length characters from the charset alphabet.
func ItemStimulus(src model.Random, length int, c itempool.Charset) string {
	length = numeric.ClampInt(length, 1, 24)
	return draw(src, ItemCharset(c), length)
}

// EvaluateAttempt reports whether typed matches expected. Surrounding
// whitespace in typed is ignored; the comparison is otherwise exact and
// case-sensitive.
func EvaluateAttempt(expected, typed string) bool {
	return expected == strings.TrimSpace(typed)
}

func draw(src model.Random, alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	n := len(alphabet)
	for i := 0; i < length; i++ {
		idx := numeric.ClampInt(int(src.Float64()*float64(n)), 0, n-1)
		b.WriteByte(alphabet[idx])
	}
	return b.String()
}
