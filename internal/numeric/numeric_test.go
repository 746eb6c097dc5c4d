package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampOr(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{5, 5},
		{-1, 0},
		{11, 10},
		{math.NaN(), 7},
		{math.Inf(1), 7},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampOr(tc.in, 0, 10, 7), "ClampOr(%v)", tc.in)
	}
}

func TestRoundInt(t *testing.T) {
	assert.Equal(t, 5, RoundInt(4.6, 4, 14, 4))
	assert.Equal(t, 14, RoundInt(99, 4, 14, 4))
	assert.Equal(t, 6, RoundInt(math.NaN(), 4, 14, 6), "NaN takes the fallback")
}
