// Package align crops combined mobilograms to a shared voltage and drift-time window
// so that they can be compared cell by cell.
package align

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// Limits is an explicit alignment window. X is the voltage axis, Y the drift axis.
// A min greater than its max is swapped rather than rejected.
type Limits struct {
	XMin, XMax float64
	YMin, YMax float64
}

// normalized returns the limits with each axis in ascending order.
func (l Limits) normalized() Limits {
	if l.XMin > l.XMax {
		l.XMin, l.XMax = l.XMax, l.XMin
	}
	if l.YMin > l.YMax {
		l.YMin, l.YMax = l.YMax, l.YMin
	}
	return l
}

// Result holds the cropped copies in input order along with the shared axes.
type Result struct {
	Mobilograms []*core.CombinedIonMobilogram
	VoltageAxis []float64
	DriftAxis   []float64
	Warnings    []string
}

// Pair returns the first two aligned mobilograms.
func (r *Result) Pair() (*core.CombinedIonMobilogram, *core.CombinedIonMobilogram) {
	return r.Mobilograms[0], r.Mobilograms[1]
}

// Matrices returns the aligned matrices in input order.
func (r *Result) Matrices() []mat.Matrix {
	out := make([]mat.Matrix, len(r.Mobilograms))
	for i, m := range r.Mobilograms {
		out[i] = m.Matrix
	}
	return out
}

// Aligner crops mobilograms to a common window. Collapsed windows fall back to the
// full axis and are reported through Logger and Result.Warnings.
type Aligner struct {
	Logger *zap.Logger
}

// New returns an Aligner logging to logger; nil selects a no-op logger.
func New(logger *zap.Logger) *Aligner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aligner{Logger: logger}
}

// Align crops a and b to limits, or to the intersection of their axes when limits is nil.
func (a *Aligner) Align(x, y *core.CombinedIonMobilogram, limits *Limits) (*Result, error) {
	return a.AlignAll([]*core.CombinedIonMobilogram{x, y}, limits)
}

// AlignAll crops every mobilogram to the same window. Inputs are not modified.
func (a *Aligner) AlignAll(ms []*core.CombinedIonMobilogram, limits *Limits) (*Result, error) {
	if len(ms) < 2 {
		return nil, &core.InsufficientInputError{Required: 2, Supplied: len(ms)}
	}
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("cannot align %s: %w", m.Name, err)
		}
	}

	var window Limits
	if limits != nil {
		window = limits.normalized()
	} else {
		window = intersect(ms)
	}

	res := &Result{}
	for _, m := range ms {
		colLo, colHi := a.indexWindow(res, m.Name, "voltage", m.VoltageAxis, window.XMin, window.XMax)
		rowLo, rowHi := a.indexWindow(res, m.Name, "drift", m.DriftAxis, window.YMin, window.YMax)

		cropped, err := crop(m, rowLo, rowHi, colLo, colHi)
		if err != nil {
			return nil, err
		}
		res.Mobilograms = append(res.Mobilograms, cropped)
	}

	first := res.Mobilograms[0]
	for _, m := range res.Mobilograms[1:] {
		if m.Shape() != first.Shape() {
			return nil, &core.ShapeMismatchError{ShapeA: first.Shape(), ShapeB: m.Shape()}
		}
	}
	res.VoltageAxis = first.VoltageAxis
	res.DriftAxis = first.DriftAxis

	return res, nil
}

// intersect returns the overlap of every mobilogram's voltage and drift ranges.
func intersect(ms []*core.CombinedIonMobilogram) Limits {
	l := Limits{
		XMin: math.Inf(-1), XMax: math.Inf(1),
		YMin: math.Inf(-1), YMax: math.Inf(1),
	}
	for _, m := range ms {
		l.XMin = math.Max(l.XMin, m.VoltageAxis[0])
		l.XMax = math.Min(l.XMax, m.VoltageAxis[len(m.VoltageAxis)-1])
		l.YMin = math.Max(l.YMin, m.DriftAxis[0])
		l.YMax = math.Min(l.YMax, m.DriftAxis[len(m.DriftAxis)-1])
	}
	return l
}

// indexWindow maps [lo, hi] onto inclusive nearest indices of axis. A window that
// resolves to a single index or less is reset to the whole axis.
func (a *Aligner) indexWindow(res *Result, name, axisName string, axis []float64, lo, hi float64) (int, int) {
	i, j := core.NearestIndex(axis, lo), core.NearestIndex(axis, hi)
	if i < j || len(axis) <= 1 {
		return i, j
	}

	msg := fmt.Sprintf("%s: %s window [%g, %g] collapsed, using full range [%g, %g]",
		name, axisName, lo, hi, axis[0], axis[len(axis)-1])
	res.Warnings = append(res.Warnings, msg)
	a.logger().Warn("Degenerate alignment window",
		zap.String("mobilogram", name),
		zap.String("axis", axisName),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
	)
	return 0, len(axis) - 1
}

func (a *Aligner) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// crop copies the inclusive row and column window of m into a new mobilogram.
func crop(m *core.CombinedIonMobilogram, rowLo, rowHi, colLo, colHi int) (*core.CombinedIonMobilogram, error) {
	sub := mat.DenseCopyOf(m.Matrix.Slice(rowLo, rowHi+1, colLo, colHi+1))

	out, err := core.NewCombinedIonMobilogram(
		m.Name,
		sub,
		append([]float64(nil), m.VoltageAxis[colLo:colHi+1]...),
		append([]float64(nil), m.DriftAxis[rowLo:rowHi+1]...),
	)
	if err != nil {
		return nil, err
	}

	out.Profile = m.Profile
	if len(m.Plan) == len(m.VoltageAxis) {
		out.Plan = append(core.ScanRangePlan(nil), m.Plan[colLo:colHi+1]...)
	}
	return out, nil
}
