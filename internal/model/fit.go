package model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
	"github.com/abhisek/pses/internal/synth"
)

// FitOptions configures training.
type FitOptions struct {
	// MaxIterations bounds the optimizer's major iterations. Default: 400.
	MaxIterations int `yaml:"max_iterations"`

	// C is the inverse L2 regularization strength applied to the
	// coefficients (not the intercepts). Default: 1.0.
	C float64 `yaml:"c"`

	// GradientTolerance stops the optimizer once the gradient's
	// infinity norm falls below it. Default: 1e-4.
	GradientTolerance float64 `yaml:"gradient_tolerance"`
}

// DefaultFitOptions returns the baseline training settings.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations:     400,
		C:                 1.0,
		GradientTolerance: 1e-4,
	}
}

// FitReport summarizes an optimizer run.
type FitReport struct {
	Iterations int
	Loss       float64
	Converged  bool
	Status     string
	Duration   time.Duration
}

// nParams is the length of the flattened parameter vector: one row of
// coefficients per class followed by the class intercepts.
const nParams = level.Count*features.Dim + level.Count

// Fit trains a multinomial logistic regression on ds. Exhausting the
// iteration budget is not an error; the best parameters found are returned
// with Converged set to false.
func Fit(ds synth.Dataset, opts FitOptions) (*Classifier, FitReport, error) {
	if ds.Len() == 0 {
		return nil, FitReport{}, ErrEmptyDataset
	}
	if len(ds.Y) != ds.Len() {
		return nil, FitReport{}, fmt.Errorf("dataset has %d rows but %d labels", ds.Len(), len(ds.Y))
	}
	for i, y := range ds.Y {
		if !y.Valid() {
			return nil, FitReport{}, fmt.Errorf("row %d: invalid label %d", i, int(y))
		}
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultFitOptions().MaxIterations
	}
	if opts.C <= 0 {
		opts.C = DefaultFitOptions().C
	}

	clf := &Classifier{}
	rows := standardizeColumns(ds.X, &clf.mean, &clf.scale)
	obj := &objective{x: rows, y: ds.Y, alpha: 1 / opts.C}

	start := time.Now()
	problem := optimize.Problem{Func: obj.loss, Grad: obj.grad}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: opts.GradientTolerance,
	}
	res, err := optimize.Minimize(problem, make([]float64, nParams), settings, &optimize.LBFGS{})
	if res == nil {
		return nil, FitReport{}, fmt.Errorf("optimize: %w", err)
	}
	if !allFinite(res.X) {
		return nil, FitReport{}, fmt.Errorf("optimize produced non-finite parameters (status %s)", res.Status)
	}

	unpack(res.X, &clf.coef, &clf.intercept)
	report := FitReport{
		Iterations: res.Stats.MajorIterations,
		Loss:       res.F,
		Converged:  err == nil,
		Status:     res.Status.String(),
		Duration:   time.Since(start),
	}
	clf.meta = Metadata{
		TrainedAt:  time.Now().UTC(),
		Samples:    ds.Len(),
		Iterations: report.Iterations,
		Converged:  report.Converged,
	}
	return clf, report, nil
}

// standardizeColumns records per-feature mean and population std dev and
// returns the standardized rows. Constant columns keep a scale of 1.
func standardizeColumns(xs []features.Vector, mean, scale *[features.Dim]float64) [][]float64 {
	rows := make([][]float64, len(xs))
	for i, v := range xs {
		rows[i] = v.Slice()
	}

	col := make([]float64, len(rows))
	for j := 0; j < features.Dim; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		m, s := stat.PopMeanStdDev(col, nil)
		if s == 0 || math.IsNaN(s) {
			s = 1
		}
		mean[j], scale[j] = m, s
	}

	for _, r := range rows {
		for j := range r {
			r[j] = (r[j] - mean[j]) / scale[j]
		}
	}
	return rows
}

func unpack(params []float64, coef *[level.Count][features.Dim]float64, intercept *[level.Count]float64) {
	for k := 0; k < level.Count; k++ {
		copy(coef[k][:], params[k*features.Dim:(k+1)*features.Dim])
	}
	copy(intercept[:], params[level.Count*features.Dim:])
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// objective is the L2-penalized multinomial negative log-likelihood.
type objective struct {
	x     [][]float64
	y     []level.Level
	alpha float64
}

// scores fills out with the class scores of row i under params.
func (o *objective) scores(params []float64, row []float64, out []float64) {
	b := params[level.Count*features.Dim:]
	for k := range out {
		w := params[k*features.Dim : (k+1)*features.Dim]
		out[k] = b[k] + floats.Dot(w, row)
	}
}

func (o *objective) loss(params []float64) float64 {
	s := make([]float64, level.Count)
	var nll float64
	for i, row := range o.x {
		o.scores(params, row, s)
		nll += logSumExp(s) - s[o.y[i]]
	}
	w := params[:level.Count*features.Dim]
	return nll + 0.5*o.alpha*floats.Dot(w, w)
}

func (o *objective) grad(grad, params []float64) {
	for i := range grad {
		grad[i] = 0
	}
	s := make([]float64, level.Count)
	for i, row := range o.x {
		o.scores(params, row, s)
		softmax(s)
		s[o.y[i]] -= 1
		for k, r := range s {
			g := grad[k*features.Dim : (k+1)*features.Dim]
			floats.AddScaled(g, r, row)
			grad[level.Count*features.Dim+k] += r
		}
	}
	for j := 0; j < level.Count*features.Dim; j++ {
		grad[j] += o.alpha * params[j]
	}
}

func logSumExp(s []float64) float64 {
	m := floats.Max(s)
	var sum float64
	for _, v := range s {
		sum += math.Exp(v - m)
	}
	return m + math.Log(sum)
}
