package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DriftAxis returns the 1-indexed drift-bin axis 1..n.
func DriftAxis(n int) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(i + 1)
	}
	return axis
}

// NearestIndex returns the index of the axis value closest to v.
// Ties resolve to the lower index. It returns -1 for an empty axis.
func NearestIndex(axis []float64, v float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Shape returns the dimensions of m as [rows, cols].
func Shape(m mat.Matrix) [2]int {
	r, c := m.Dims()
	return [2]int{r, c}
}

// SameShape returns a ShapeMismatchError naming the first matrix that differs from ms[0].
func SameShape(ms ...mat.Matrix) error {
	if len(ms) == 0 {
		return nil
	}
	want := Shape(ms[0])
	for _, m := range ms[1:] {
		if got := Shape(m); got != want {
			return &ShapeMismatchError{ShapeA: want, ShapeB: got}
		}
	}
	return nil
}
