package adaptive

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tachy/internal/model"
)

func TestDefault(t *testing.T) {
	defaults := Reader().Defaults
	p := Default(defaults)
	assert.Equal(t, 1000.0, p.Rating)
	assert.Equal(t, 250.0, p.Deviation)
	assert.Equal(t, 0, p.Attempts)
	assert.Equal(t, defaults, p.CurrentParams)
	assert.Equal(t, defaults, p.BestParams)
	assert.Nil(t, p.LastSessionAt)

	p.CurrentParams[ParamExposureMs] = 1
	assert.Equal(t, 250.0, defaults[ParamExposureMs], "defaults must not alias the profile")
}

func TestNormalizeClampsEverything(t *testing.T) {
	window := make([]model.Outcome, 14)
	for i := range window {
		window[i] = model.Outcome{Score: float64(i)}
	}
	raw := model.AdaptiveProfile{
		Rating:        math.NaN(),
		Deviation:     9999,
		Attempts:      -3,
		CurrentParams: model.Params{ParamExposureMs: math.Inf(1), "extra": 2},
		Rolling:       window,
		FatigueBias:   40,
		Cooldown:      -1,
	}
	p := Normalize(raw, Reader().Defaults)
	assert.Equal(t, 1000.0, p.Rating)
	assert.Equal(t, 350.0, p.Deviation)
	assert.Equal(t, 0, p.Attempts)
	assert.Equal(t, 250.0, p.CurrentParams[ParamExposureMs])
	assert.Equal(t, 2.0, p.CurrentParams["extra"])
	assert.Equal(t, 8.0, p.BestParams[ParamStimulusSize])
	require.Len(t, p.Rolling, 10)
	assert.Equal(t, 1.0, p.Rolling[0].Score, "scores are clamped to [0,1]")
	assert.Equal(t, 5, p.FatigueBias)
	assert.Equal(t, 0, p.Cooldown)

	assert.Len(t, raw.Rolling, 14, "input must be left untouched")
}

func TestNormalizeIdempotent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	inputs := []model.AdaptiveProfile{
		{},
		{Rating: 5000, Deviation: 1, Attempts: 7, FatigueBias: -9, Cooldown: 9, LastSessionAt: &at},
		{Rating: 1234.5, Deviation: 123, CurrentParams: model.Params{ParamHoldMs: 700}},
	}
	for _, in := range inputs {
		once := Normalize(in, Fixation().Defaults)
		twice := Normalize(once, Fixation().Defaults)
		assert.Equal(t, once, twice)
	}
}

func TestParseGarbage(t *testing.T) {
	defaults := Fixation().Defaults
	for _, raw := range []string{"", "not json", "[1,2,3]", "null", `"str"`, "42"} {
		p := Parse([]byte(raw), defaults)
		assert.Equal(t, Default(defaults).Rating, p.Rating, "input %q", raw)
		assert.Equal(t, defaults, p.CurrentParams, "input %q", raw)
	}
}

func TestParseLoose(t *testing.T) {
	raw := `{
		"R_user": "1300",
		"RD_user": null,
		"attempts_count": 4.6,
		"currentParams": {"holdMs": "800", "motionFlag": true, "label": "x"},
		"bestParams": 17,
		"lastSessionAt": "2026-03-01T10:00:00Z",
		"rollingResults": [1, {"S": 0.5, "at": "2026-03-01T09:00:00Z"}, {"S": "bad"}],
		"fatigueBias": -2.2,
		"cooldown": 7
	}`
	p := Parse([]byte(raw), Fixation().Defaults)
	assert.Equal(t, 1300.0, p.Rating)
	assert.Equal(t, 250.0, p.Deviation)
	assert.Equal(t, 5, p.Attempts)
	assert.Equal(t, 800.0, p.CurrentParams[ParamHoldMs])
	assert.Equal(t, 1.0, p.CurrentParams[ParamMotionFlag])
	assert.NotContains(t, p.CurrentParams, "label")
	assert.Equal(t, Fixation().Defaults, p.BestParams)
	require.NotNil(t, p.LastSessionAt)
	assert.Equal(t, 2026, p.LastSessionAt.Year())
	require.Len(t, p.Rolling, 2)
	assert.Equal(t, 0.5, p.Rolling[0].Score)
	assert.Equal(t, 0.0, p.Rolling[1].Score)
	assert.Equal(t, -2, p.FatigueBias)
	assert.Equal(t, 2, p.Cooldown)
}

func TestParseClampsStoredZero(t *testing.T) {
	p := Parse([]byte(`{"R_user": 0, "RD_user": 0}`), Fixation().Defaults)
	assert.Equal(t, 600.0, p.Rating)
	assert.Equal(t, 60.0, p.Deviation)

	p = Parse([]byte(`{"R_user": "n/a"}`), Fixation().Defaults)
	assert.Equal(t, 1000.0, p.Rating)
	assert.Equal(t, 250.0, p.Deviation)
	assert.Equal(t, p, Normalize(p, Fixation().Defaults))
}
