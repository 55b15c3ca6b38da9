package core

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDriftAxis(t *testing.T) {
	axis := DriftAxis(4)
	expected := []float64{1, 2, 3, 4}

	if len(axis) != len(expected) {
		t.Fatalf("Expected %d bins, got %d", len(expected), len(axis))
	}
	for i := range expected {
		if axis[i] != expected[i] {
			t.Errorf("Bin %d: expected %.0f, got %.0f", i, expected[i], axis[i])
		}
	}
}

func TestNearestIndex(t *testing.T) {
	axis := []float64{10, 20, 30, 40, 50}

	tests := []struct {
		name  string
		axis  []float64
		value float64
		want  int
	}{
		{"exact match", axis, 30, 2},
		{"closer to lower", axis, 24, 1},
		{"closer to upper", axis, 26, 2},
		{"tie picks lower", axis, 25, 1},
		{"below range", axis, -100, 0},
		{"above range", axis, 1000, 4},
		{"empty axis", nil, 5, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestIndex(tt.axis, tt.value)
			if got != tt.want {
				t.Errorf("NearestIndex(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestSameShape(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	b := mat.NewDense(2, 3, nil)
	c := mat.NewDense(3, 2, nil)

	if err := SameShape(a, b); err != nil {
		t.Errorf("SameShape() unexpected error: %v", err)
	}

	err := SameShape(a, b, c)
	var shapeErr *ShapeMismatchError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Expected ShapeMismatchError, got %v", err)
	}
	if shapeErr.ShapeA != [2]int{2, 3} || shapeErr.ShapeB != [2]int{3, 2} {
		t.Errorf("Unexpected shapes in error: %v", shapeErr)
	}
}
