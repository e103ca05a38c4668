package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(100, 7)
	b := Generate(100, 7)
	require.Equal(t, 100, a.Len())
	assert.Equal(t, a.X, b.X)
	assert.Equal(t, a.Y, b.Y)
}

func TestGenerate_SeedChangesStream(t *testing.T) {
	a := Generate(50, 7)
	b := Generate(50, 8)
	assert.NotEqual(t, a.X, b.X)
}

func TestGenerate_FieldRanges(t *testing.T) {
	ds := Generate(2000, DefaultSeed)
	for i, v := range ds.X {
		assert.True(t, v.Score >= 0 && v.Score <= 1, "row %d score %v", i, v.Score)
		assert.True(t, v.AvgTime >= 5 && v.AvgTime <= 180, "row %d avg_time %v", i, v.AvgTime)
		assert.True(t, v.TimeStd >= 0.5 && v.TimeStd <= 120, "row %d time_std %v", i, v.TimeStd)
		assert.True(t, v.Replays >= 0 && v.Replays <= 10, "row %d replays %v", i, v.Replays)
		assert.Equal(t, math.Trunc(v.Replays), v.Replays)
		assert.Contains(t, []float64{1, 2, 3, 4, 5}, v.Difficulty)
	}
}

func TestGenerate_LabelsFollowHeuristic(t *testing.T) {
	ds := Generate(500, DefaultSeed)
	th := DefaultThresholds()
	for i := range ds.X {
		assert.Equal(t, th.Label(Heuristic(ds.X[i])), ds.Y[i])
	}
}

func TestGenerate_AllClassesPresent(t *testing.T) {
	counts := Generate(DefaultSamples, DefaultSeed).Counts()
	for l, c := range counts {
		assert.Positive(t, c, "class %s missing", level.Level(l))
	}
}

func TestGenerate_NonPositive(t *testing.T) {
	assert.Equal(t, 0, Generate(0, 7).Len())
	assert.Equal(t, 0, Generate(-3, 7).Len())
}

func TestGenerateOptions_MatchesGenerate(t *testing.T) {
	opts := DefaultOptions()
	opts.Samples = 64
	assert.Equal(t, Generate(64, DefaultSeed), GenerateOptions(opts))
}

func TestThresholds_Boundaries(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		z    float64
		want level.Level
	}{
		{-3, level.Beginner},
		{0.45, level.Beginner},
		{math.Nextafter(0.45, 1), level.Intermediate},
		{1.0, level.Intermediate},
		{1.25, level.Intermediate},
		{math.Nextafter(1.25, 2), level.Advanced},
		{4, level.Advanced},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Label(tt.z), "z=%v", tt.z)
	}
}

func TestThresholds_EngineeredVectors(t *testing.T) {
	th := Thresholds{Intermediate: 0.65, Advanced: 1.3}

	// Only the score term is non-zero: z = 2.6 * score.
	atLower := features.Vector{Score: 0.25, Difficulty: 3}
	atUpper := features.Vector{Score: 0.5, Difficulty: 3}

	assert.Equal(t, th.Intermediate, Heuristic(atLower))
	assert.Equal(t, th.Advanced, Heuristic(atUpper))
	assert.Equal(t, level.Beginner, th.Label(Heuristic(atLower)))
	assert.Equal(t, level.Intermediate, th.Label(Heuristic(atUpper)))
}

func TestHeuristic(t *testing.T) {
	v := features.Vector{Score: 0.95, AvgTime: 11, TimeStd: 1, Replays: 0, Difficulty: 1}
	want := 2.6*0.95 - 0.006*11 - 0.003*1 - 0.18*0 - 0.10*(1-3)
	assert.InDelta(t, want, Heuristic(v), 1e-12)
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Intermediate: 1, Advanced: 1}.Validate())
	assert.Error(t, Thresholds{Intermediate: 2, Advanced: 1}.Validate())
	assert.Error(t, Thresholds{Intermediate: math.NaN(), Advanced: 1}.Validate())
	assert.Error(t, Thresholds{Intermediate: 0, Advanced: math.Inf(1)}.Validate())
}
