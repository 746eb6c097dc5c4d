// Package itempool is the discrete-item selection strategy for span content:
// a fixed pool of (length, character tier) items rated on the Elo-lite scale.
package itempool

import (
	"math"
	"sort"

	"github.com/verte-zerg/tachy/internal/loose"
	"github.com/verte-zerg/tachy/internal/model"
	"github.com/verte-zerg/tachy/internal/numeric"
	"github.com/verte-zerg/tachy/internal/rating"
)

// Charset flags the character classes an item draws from.
type Charset struct {
	Lower   bool `json:"az" yaml:"lower"`
	Upper   bool `json:"AZ" yaml:"upper"`
	Digits  bool `json:"n09" yaml:"digits"`
	Symbols bool `json:"us" yaml:"symbols"`
}

// Per-class difficulty weights.
const (
	weightLower   = 0
	weightUpper   = 30
	weightDigits  = 45
	weightSymbols = 20

	baseRating   = 780
	perCharacter = 42
	freeLength   = 3

	MinPoolLength = 3
	MaxPoolLength = 12
	MaxTier       = 4

	minItemLength     = 1
	maxItemLength     = 24
	defaultItemLength = 4

	// shortlist is how many best-scoring items the random pick draws from.
	shortlist = 3
	// offsetShare scales the learner's deviation into a preferred rating offset.
	offsetShare = 0.3
)

// Tier returns the nested charset for tier 1..4: lower, +upper, +digits, +symbols.
// Out of range tiers are clamped.
func Tier(n int) Charset {
	n = numeric.ClampInt(n, 1, MaxTier)
	return Charset{
		Lower:   true,
		Upper:   n >= 2,
		Digits:  n >= 3,
		Symbols: n >= 4,
	}
}

// Weight returns the summed complexity weight of c.
func (c Charset) Weight() float64 {
	var w float64
	if c.Lower {
		w += weightLower
	}
	if c.Upper {
		w += weightUpper
	}
	if c.Digits {
		w += weightDigits
	}
	if c.Symbols {
		w += weightSymbols
	}
	return w
}

// Item is one entry of the pool.
type Item struct {
	Length  int     `json:"length" yaml:"length"`
	Charset Charset `json:"charset" yaml:"charset"`
	Rating  float64 `json:"R_item" yaml:"rating"`
}

// ItemRating rates an item from its length and charset. A zero length
// means the default of 4.
func ItemRating(length int, c Charset) float64 {
	if length == 0 {
		length = defaultItemLength
	}
	length = numeric.ClampInt(length, minItemLength, maxItemLength)
	density := float64(max(0, length-freeLength) * perCharacter)
	return numeric.Clamp(baseRating+c.Weight()+density, rating.EloMinRating, rating.EloMaxRating)
}

// Build returns the full pool: lengths 3..12 crossed with the four tiers.
func Build() []Item {
	out := make([]Item, 0, (MaxPoolLength-MinPoolLength+1)*MaxTier)
	for length := MinPoolLength; length <= MaxPoolLength; length++ {
		for tier := 1; tier <= MaxTier; tier++ {
			c := Tier(tier)
			out = append(out, Item{Length: length, Charset: c, Rating: ItemRating(length, c)})
		}
	}
	return out
}

// SelectNext scores every item by how far its distance from the learner's
// rating is from an uncertainty-scaled offset, then picks uniformly among the
// best three using rnd. It reports false for an empty pool.
func SelectNext(r, rd float64, pool []Item, rnd model.Random) (Item, bool) {
	if len(pool) == 0 {
		return Item{}, false
	}
	r, rd = rating.NormalizeElo(r, rd)

	type scored struct {
		item  Item
		score float64
	}
	items := make([]scored, len(pool))
	for i, item := range pool {
		item.Rating = itemRating(item)
		distance := math.Abs(item.Rating - r)
		items[i] = scored{item: item, score: math.Abs(distance - offsetShare*rd)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score < items[j].score
	})

	top := items[:min(shortlist, len(items))]
	idx := int(rnd.Float64() * float64(len(top)))
	idx = numeric.ClampInt(idx, 0, len(top)-1)
	return top[idx].item, true
}

// Record applies the Elo-lite update for a learner who scored score on item.
func Record(r, rd float64, item Item, score float64) rating.Result {
	return rating.EloLite{}.Update(r, rd, itemRating(item), score)
}

func itemRating(item Item) float64 {
	if math.IsNaN(item.Rating) || math.IsInf(item.Rating, 0) || item.Rating == 0 {
		return ItemRating(item.Length, item.Charset)
	}
	return item.Rating
}

// ParseRating reads a stored pool rating, tolerating a missing or malformed
// document.
func ParseRating(raw []byte) model.PoolRating {
	var r, rd float64
	if obj, ok := loose.Object(raw); ok {
		r, rd = loose.Number(obj["R_user"]), loose.Number(obj["RD_user"])
	}
	r, rd = rating.NormalizeElo(r, rd)
	return model.PoolRating{Rating: r, Deviation: rd}
}

// Params flattens the item into a parameter vector.
func (it Item) Params() model.Params {
	flag := func(b bool) float64 {
		if b {
			return 1
		}
		return 0
	}
	return model.Params{
		"length":  float64(it.Length),
		"upper":   flag(it.Charset.Upper),
		"digits":  flag(it.Charset.Digits),
		"symbols": flag(it.Charset.Symbols),
	}
}
