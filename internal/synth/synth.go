// Package synth generates the synthetic training set used to bootstrap the
// proficiency classifier when no trained model has been persisted yet.
//
// Every value is drawn from a single caller-supplied PRNG, column by column
// (score, avg_time, time_std, replays, difficulty), so the same seed always
// reproduces the same dataset.
package synth

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

const (
	DefaultSamples        = 4000
	DefaultSeed    uint64 = 7
)

// pcgStream is the fixed PCG stream selector paired with the seed.
const pcgStream uint64 = 0x5eed

// Per-field sampling parameters.
const (
	scoreAlpha = 2.2
	scoreBeta  = 1.8

	avgTimeMu    = 3.2
	avgTimeSigma = 0.45
	avgTimeMin   = 5.0
	avgTimeMax   = 180.0

	timeStdMu    = 2.1
	timeStdSigma = 0.55
	timeStdMin   = 0.5
	timeStdMax   = 120.0

	replayLambda = 1.3
	replayMax    = 10.0

	difficultyLevels = 5
)

// Options configures synthetic generation.
type Options struct {
	Samples    int
	Seed       uint64
	Thresholds Thresholds
}

// DefaultOptions returns the baseline generation settings.
func DefaultOptions() Options {
	return Options{
		Samples:    DefaultSamples,
		Seed:       DefaultSeed,
		Thresholds: DefaultThresholds(),
	}
}

// Dataset is a feature matrix with one label per row.
type Dataset struct {
	X []features.Vector
	Y []level.Level
}

// Len returns the number of examples.
func (d Dataset) Len() int { return len(d.X) }

// Counts returns the number of examples per class.
func (d Dataset) Counts() [level.Count]int {
	var c [level.Count]int
	for _, y := range d.Y {
		if y.Valid() {
			c[y]++
		}
	}
	return c
}

// NewSource returns the PRNG source for seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, pcgStream)
}

// Generate draws n labelled examples using seed and the default thresholds.
func Generate(n int, seed uint64) Dataset {
	return GenerateFrom(NewSource(seed), n, DefaultThresholds())
}

// GenerateOptions draws a dataset as configured by opts.
func GenerateOptions(opts Options) Dataset {
	return GenerateFrom(NewSource(opts.Seed), opts.Samples, opts.Thresholds)
}

// GenerateFrom draws n examples from src and labels them with th.
func GenerateFrom(src rand.Source, n int, th Thresholds) Dataset {
	if n <= 0 {
		return Dataset{}
	}

	scoreDist := distuv.Beta{Alpha: scoreAlpha, Beta: scoreBeta, Src: src}
	avgTimeDist := distuv.LogNormal{Mu: avgTimeMu, Sigma: avgTimeSigma, Src: src}
	timeStdDist := distuv.LogNormal{Mu: timeStdMu, Sigma: timeStdSigma, Src: src}
	replayDist := distuv.Poisson{Lambda: replayLambda, Src: src}

	score := sample(n, scoreDist.Rand, 0, 1)
	avgTime := sample(n, avgTimeDist.Rand, avgTimeMin, avgTimeMax)
	timeStd := sample(n, timeStdDist.Rand, timeStdMin, timeStdMax)
	replays := sample(n, replayDist.Rand, 0, replayMax)

	rng := rand.New(src)
	difficulty := make([]float64, n)
	for i := range difficulty {
		difficulty[i] = float64(rng.IntN(difficultyLevels) + 1)
	}

	ds := Dataset{
		X: make([]features.Vector, n),
		Y: make([]level.Level, n),
	}
	for i := 0; i < n; i++ {
		v := features.Vector{
			Score:      score[i],
			AvgTime:    avgTime[i],
			TimeStd:    timeStd[i],
			Replays:    replays[i],
			Difficulty: difficulty[i],
		}
		ds.X[i] = v
		ds.Y[i] = th.Label(Heuristic(v))
	}
	return ds
}

func sample(n int, draw func() float64, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = clamp(draw(), lo, hi)
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
