package core

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewRawScanSeries(t *testing.T) {
	tests := []struct {
		name      string
		driftBins int
		scans     int
		data      []float64
		wantErr   bool
	}{
		{"valid 2x3", 2, 3, []float64{1, 2, 3, 4, 5, 6}, false},
		{"too few values", 2, 3, []float64{1, 2, 3}, true},
		{"zero bins", 0, 3, nil, true},
		{"zero scans", 2, 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRawScanSeries("test", tt.driftBins, tt.scans, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRawScanSeries() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if s.DriftBins() != tt.driftBins || s.TotalScans() != tt.scans {
				t.Errorf("Expected %dx%d, got %dx%d", tt.driftBins, tt.scans, s.DriftBins(), s.TotalScans())
			}
		})
	}
}

func TestStandardDriftBins(t *testing.T) {
	standard, err := NewRawScanSeries("synapt", DefaultDriftBins, 1, make([]float64, DefaultDriftBins))
	if err != nil {
		t.Fatalf("NewRawScanSeries() error: %v", err)
	}
	if !standard.StandardDriftBins() {
		t.Errorf("Expected %d drift bins to be standard", DefaultDriftBins)
	}

	other, err := NewRawScanSeries("other", 4, 1, make([]float64, 4))
	if err != nil {
		t.Fatalf("NewRawScanSeries() error: %v", err)
	}
	if other.StandardDriftBins() {
		t.Error("Expected 4 drift bins to be non-standard")
	}
	if err := other.Validate(); err != nil {
		t.Errorf("Non-standard bin count must still validate, got %v", err)
	}
}

func TestRawScanSeriesValidation(t *testing.T) {
	tests := []struct {
		name    string
		series  *RawScanSeries
		wantErr bool
	}{
		{
			name:    "valid series",
			series:  &RawScanSeries{Intensities: mat.NewDense(2, 2, []float64{1, 2, 3, 4}), MZRange: [2]float64{1000, 2000}},
			wantErr: false,
		},
		{
			name:    "missing matrix",
			series:  &RawScanSeries{},
			wantErr: true,
		},
		{
			name:    "NaN intensity",
			series:  &RawScanSeries{Intensities: mat.NewDense(1, 2, []float64{math.NaN(), 1})},
			wantErr: true,
		},
		{
			name:    "descending m/z range",
			series:  &RawScanSeries{Intensities: mat.NewDense(1, 1, []float64{1}), MZRange: [2]float64{2000, 1000}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScanRangePlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		plan    ScanRangePlan
		wantErr bool
	}{
		{"contiguous", ScanRangePlan{{0, 2, 5}, {2, 6, 10}}, false},
		{"empty plan", ScanRangePlan{}, true},
		{"gap between steps", ScanRangePlan{{0, 2, 5}, {3, 6, 10}}, true},
		{"overlapping steps", ScanRangePlan{{0, 3, 5}, {2, 6, 10}}, true},
		{"empty step", ScanRangePlan{{0, 0, 5}}, true},
		{"negative start", ScanRangePlan{{-1, 2, 5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScanRangePlanHelpers(t *testing.T) {
	plan := ScanRangePlan{{0, 2, 5}, {2, 6, 10}}

	if plan.End() != 6 {
		t.Errorf("Expected end 6, got %d", plan.End())
	}
	if plan.Len() != 2 {
		t.Errorf("Expected 2 steps, got %d", plan.Len())
	}
	if plan[1].Scans() != 4 {
		t.Errorf("Expected 4 scans in step 1, got %d", plan[1].Scans())
	}
	v := plan.Voltages()
	if len(v) != 2 || v[0] != 5 || v[1] != 10 {
		t.Errorf("Unexpected voltages %v", v)
	}
	if (ScanRangePlan{}).End() != 0 {
		t.Error("Expected empty plan to end at 0")
	}
}

func TestNewCombinedIonMobilogram(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	cim, err := NewCombinedIonMobilogram("test", m, []float64{10, 20, 30}, DriftAxis(2))
	if err != nil {
		t.Fatalf("NewCombinedIonMobilogram() error: %v", err)
	}

	wantRows := []float64{6, 15}
	wantCols := []float64{5, 7, 9}
	for i, v := range wantRows {
		if cim.MarginalDrift[i] != v {
			t.Errorf("MarginalDrift[%d] = %v, want %v", i, cim.MarginalDrift[i], v)
		}
	}
	for i, v := range wantCols {
		if cim.MarginalVoltage[i] != v {
			t.Errorf("MarginalVoltage[%d] = %v, want %v", i, cim.MarginalVoltage[i], v)
		}
	}
	if cim.Shape() != [2]int{2, 3} {
		t.Errorf("Unexpected shape %v", cim.Shape())
	}
	if err := cim.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	_, err = NewCombinedIonMobilogram("bad", m, []float64{10, 20}, DriftAxis(2))
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for mismatched axes, got %v", err)
	}
}

func TestCombinedIonMobilogramValidation(t *testing.T) {
	cim := &CombinedIonMobilogram{
		Matrix:      mat.NewDense(2, 2, nil),
		VoltageAxis: []float64{20, 10},
		DriftAxis:   []float64{1},
	}

	err := cim.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"drift axis has 1 entries", "voltage axis must be ascending"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in %q", want, msg)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient scans", &InsufficientScansError{Expected: 20, Available: 15}, "requires 20 scans but only 15"},
		{"shape mismatch", &ShapeMismatchError{ShapeA: [2]int{2, 3}, ShapeB: [2]int{3, 3}}, "2x3 vs 3x3"},
		{"insufficient input", &InsufficientInputError{Required: 2, Supplied: 1}, "at least 2 matrices are required, got 1"},
		{"validation", &ValidationError{Field: "Linear", Message: "bad"}, "validation error in Linear: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.want)
			}
		})
	}
}
