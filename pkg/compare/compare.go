// Package compare computes RMSD, RMSF, element-wise statistics and pairwise distance
// matrices over aligned mobilogram matrices.
//
// Deviations are reported as percentages: every RMSD and RMSF value is the root mean
// square of the difference matrix multiplied by 100.
package compare

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// Kind names the comparison a Result holds.
type Kind string

const (
	KindRMSD      Kind = "rmsd"
	KindRMSF      Kind = "rmsf"
	KindAggregate Kind = "aggregate"
	KindDistance  Kind = "distance"
)

// Result is implemented by every comparison output.
type Result interface {
	Kind() Kind
}

// RMSDResult is the single-value deviation between two matrices.
type RMSDResult struct {
	RMSD float64
	Diff *mat.Dense
}

func (*RMSDResult) Kind() Kind { return KindRMSD }

// RMSFResult holds the per-drift-bin deviation profile of two matrices.
// Profile has one entry per row; RMSD is the whole-matrix value.
type RMSFResult struct {
	Profile []float64
	RMSD    float64
	Diff    *mat.Dense
	Sigma   float64
}

func (*RMSFResult) Kind() Kind { return KindRMSF }

// Stat selects the element-wise statistic of Aggregate.
type Stat string

const (
	Mean     Stat = "mean"
	StdDev   Stat = "stddev"
	Variance Stat = "variance"
)

// ParseStat resolves a statistic name, case-insensitively.
func ParseStat(s string) (Stat, error) {
	switch st := Stat(strings.ToLower(strings.TrimSpace(s))); st {
	case Mean, StdDev, Variance:
		return st, nil
	case "std":
		return StdDev, nil
	case "var":
		return Variance, nil
	}
	return "", &core.ValidationError{Field: "Stat", Message: fmt.Sprintf("unknown statistic %q", s)}
}

// AggregateResult is an element-wise statistic over two or more matrices.
type AggregateResult struct {
	Stat   Stat
	Matrix *mat.Dense
}

func (*AggregateResult) Kind() Kind { return KindAggregate }

// DistanceMatrixResult holds pairwise RMSD values. Only the strict upper triangle
// (i < j) is filled; the diagonal and lower triangle are zero.
type DistanceMatrixResult struct {
	Distances *mat.Dense
	Labels    []string
}

func (*DistanceMatrixResult) Kind() Kind { return KindDistance }

// At returns the distance between labels i and j regardless of their order.
func (d *DistanceMatrixResult) At(i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return d.Distances.At(i, j)
}

// RMSD returns 100 * sqrt(mean((a - b)^2)).
func RMSD(a, b mat.Matrix) (*RMSDResult, error) {
	diff, err := difference(a, b)
	if err != nil {
		return nil, err
	}
	return &RMSDResult{RMSD: rms(diff.RawMatrix().Data), Diff: diff}, nil
}

// RMSF returns the RMSD of every drift row of a - b, smoothed with a Gaussian of the
// given sigma. A sigma of zero or less leaves the profile unsmoothed.
func RMSF(a, b mat.Matrix, sigma float64) (*RMSFResult, error) {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma > MaxSigma {
		return nil, &core.ValidationError{
			Field:   "Sigma",
			Message: fmt.Sprintf("%g must be finite and at most %g", sigma, MaxSigma),
		}
	}

	diff, err := difference(a, b)
	if err != nil {
		return nil, err
	}

	rows, _ := diff.Dims()
	profile := make([]float64, rows)
	for i := range profile {
		profile[i] = rms(diff.RawRowView(i))
	}

	return &RMSFResult{
		Profile: Smooth(profile, sigma),
		RMSD:    rms(diff.RawMatrix().Data),
		Diff:    diff,
		Sigma:   sigma,
	}, nil
}

// Aggregate computes the element-wise statistic over ms. StdDev and Variance are the
// population forms.
func Aggregate(s Stat, ms []mat.Matrix) (*AggregateResult, error) {
	if len(ms) < 2 {
		return nil, &core.InsufficientInputError{Required: 2, Supplied: len(ms)}
	}
	fn, err := statFunc(s)
	if err != nil {
		return nil, err
	}
	if err := core.SameShape(ms...); err != nil {
		return nil, err
	}

	r, c := ms[0].Dims()
	out := mat.NewDense(r, c, nil)
	cell := make([]float64, len(ms))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			for k, m := range ms {
				cell[k] = m.At(i, j)
			}
			out.Set(i, j, fn(cell))
		}
	}

	return &AggregateResult{Stat: s, Matrix: out}, nil
}

// DistanceMatrix computes the RMSD between every pair of matrices. labels names the
// rows and columns and must have one entry per matrix.
func DistanceMatrix(ms []mat.Matrix, labels []string) (*DistanceMatrixResult, error) {
	n := len(ms)
	if n < 2 {
		return nil, &core.InsufficientInputError{Required: 2, Supplied: n}
	}
	if len(labels) != n {
		return nil, &core.ValidationError{
			Field:   "Labels",
			Message: fmt.Sprintf("got %d labels for %d matrices", len(labels), n),
		}
	}
	if err := core.SameShape(ms...); err != nil {
		return nil, err
	}

	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			res, err := RMSD(ms[i], ms[j])
			if err != nil {
				return nil, fmt.Errorf("failed to compare %s and %s: %w", labels[i], labels[j], err)
			}
			d.Set(i, j, res.RMSD)
		}
	}

	return &DistanceMatrixResult{
		Distances: d,
		Labels:    append([]string(nil), labels...),
	}, nil
}

// RMSD1D is RMSD over two marginal projections.
func RMSD1D(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, &core.ShapeMismatchError{ShapeA: [2]int{1, len(a)}, ShapeB: [2]int{1, len(b)}}
	}
	if len(a) == 0 {
		return 0, &core.ValidationError{Field: "Projection", Message: "empty projection"}
	}
	diff := make([]float64, len(a))
	floats.SubTo(diff, a, b)
	return rms(diff), nil
}

// Aggregate1D is Aggregate over marginal projections.
func Aggregate1D(s Stat, vs [][]float64) ([]float64, error) {
	if len(vs) < 2 {
		return nil, &core.InsufficientInputError{Required: 2, Supplied: len(vs)}
	}
	fn, err := statFunc(s)
	if err != nil {
		return nil, err
	}
	for _, v := range vs[1:] {
		if len(v) != len(vs[0]) {
			return nil, &core.ShapeMismatchError{ShapeA: [2]int{1, len(vs[0])}, ShapeB: [2]int{1, len(v)}}
		}
	}

	out := make([]float64, len(vs[0]))
	cell := make([]float64, len(vs))
	for i := range out {
		for k, v := range vs {
			cell[k] = v[i]
		}
		out[i] = fn(cell)
	}
	return out, nil
}

func difference(a, b mat.Matrix) (*mat.Dense, error) {
	if err := core.SameShape(a, b); err != nil {
		return nil, err
	}
	if r, c := a.Dims(); r == 0 || c == 0 {
		return nil, &core.ValidationError{Field: "Matrix", Message: "empty matrix"}
	}
	var diff mat.Dense
	diff.Sub(a, b)
	return &diff, nil
}

// rms returns 100 * sqrt(mean(x^2)).
func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return 100 * math.Sqrt(floats.Dot(x, x)/float64(len(x)))
}

func statFunc(s Stat) (func([]float64) float64, error) {
	switch s {
	case Mean:
		return func(x []float64) float64 { return stat.Mean(x, nil) }, nil
	case StdDev:
		return func(x []float64) float64 { return stat.PopStdDev(x, nil) }, nil
	case Variance:
		return func(x []float64) float64 { return stat.PopVariance(x, nil) }, nil
	}
	return nil, &core.ValidationError{Field: "Stat", Message: fmt.Sprintf("unknown statistic %q", s)}
}
