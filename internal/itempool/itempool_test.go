package itempool

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

func TestItemRating(t *testing.T) {
	easy := ItemRating(3, Charset{Lower: true})
	hard := ItemRating(12, Tier(4))
	assert.Equal(t, 780.0, easy)
	assert.Equal(t, 780.0+95+9*42, hard)
	assert.Greater(t, hard, easy)
	assert.Equal(t, ItemRating(4, Tier(1)), ItemRating(0, Tier(1)))
	assert.Equal(t, ItemRating(24, Tier(1)), ItemRating(100, Tier(1)))
}

func TestTier(t *testing.T) {
	assert.Equal(t, Charset{Lower: true}, Tier(0))
	assert.Equal(t, Charset{Lower: true, Upper: true, Digits: true}, Tier(3))
	assert.Equal(t, Tier(4), Tier(9))
}

func TestBuild(t *testing.T) {
	pool := Build()
	require.Len(t, pool, 40)
	assert.Equal(t, 3, pool[0].Length)
	assert.Equal(t, 12, pool[len(pool)-1].Length)
	for _, item := range pool {
		assert.Equal(t, ItemRating(item.Length, item.Charset), item.Rating)
	}
}

func TestSelectNextEmpty(t *testing.T) {
	_, ok := SelectNext(1000, 250, nil, fixedRandom(0))
	assert.False(t, ok)
}

func TestSelectNextShortlist(t *testing.T) {
	pool := Build()
	r, rd := 1000.0, 120.0
	seen := map[Item]bool{}
	for _, f := range []float64{0, 0.34, 0.67, 0.999} {
		item, ok := SelectNext(r, rd, pool, fixedRandom(f))
		require.True(t, ok)
		assert.False(t, math.IsNaN(item.Rating))
		seen[item] = true
	}
	assert.Len(t, seen, 3, "picks come from exactly three shortlisted items")

	// The best item minimises ||R_item - r| - 0.3 rd|.
	best, _ := SelectNext(r, rd, pool, fixedRandom(0))
	want := math.Abs(math.Abs(best.Rating-r) - 0.3*rd)
	for _, item := range pool {
		assert.GreaterOrEqual(t, math.Abs(math.Abs(item.Rating-r)-0.3*rd), want)
	}
}

func TestSelectNextRecomputesMissingRatings(t *testing.T) {
	pool := []Item{{Length: 5, Charset: Tier(2), Rating: math.NaN()}}
	item, ok := SelectNext(1000, 250, pool, rand.New(rand.NewSource(1)))
	require.True(t, ok)
	assert.Equal(t, ItemRating(5, Tier(2)), item.Rating)
}

func TestSelectNextReproducible(t *testing.T) {
	pool := Build()
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		x, _ := SelectNext(1100, 200, pool, a)
		y, _ := SelectNext(1100, 200, pool, b)
		assert.Equal(t, x, y)
	}
}

func TestRecord(t *testing.T) {
	item := Item{Length: 6, Charset: Tier(1)}
	up := Record(1000, 250, item, 1)
	assert.Greater(t, up.Rating, 1000.0)
	down := Record(1000, 250, item, 0)
	assert.Less(t, down.Rating, 1000.0)
}

func TestParseRating(t *testing.T) {
	got := ParseRating([]byte(`{"R_user": 1320.5, "RD_user": "90"}`))
	assert.Equal(t, 1320.5, got.Rating)
	assert.Equal(t, 90.0, got.Deviation)

	got = ParseRating([]byte(`not json`))
	assert.Equal(t, 1000.0, got.Rating)
	assert.Equal(t, 250.0, got.Deviation)

	got = ParseRating([]byte(`{"R_user": 9000, "RD_user": 0}`))
	assert.Equal(t, 3000.0, got.Rating)
	assert.Equal(t, 250.0, got.Deviation)
}

func TestItemParams(t *testing.T) {
	p := Item{Length: 7, Charset: Tier(3)}.Params()
	assert.Equal(t, 7.0, p["length"])
	assert.Equal(t, 1.0, p["upper"])
	assert.Equal(t, 1.0, p["digits"])
	assert.Equal(t, 0.0, p["symbols"])
}
