// Package core provides the value types shared by the CIU combination and comparison
// packages, together with their validation logic and typed errors.
package core

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultDriftBins is the number of drift-time bins Synapt instruments export.
// Other bin counts are accepted; axes are always derived from the data.
const DefaultDriftBins = 200

// AcquisitionProfile describes how raw scans map onto activation-voltage steps.
// The concrete variants live in package profile.
type AcquisitionProfile interface {
	Mode() string
	Validate() error
}

// RawScanSeries holds the per-scan drift-time intensities extracted from an
// instrument file. Rows are drift bins, columns are acquisition scans.
type RawScanSeries struct {
	Name        string
	Intensities *mat.Dense
	MZRange     [2]float64
}

// NewRawScanSeries builds a series from row-major data with driftBins rows.
func NewRawScanSeries(name string, driftBins, totalScans int, data []float64) (*RawScanSeries, error) {
	if driftBins <= 0 || totalScans <= 0 {
		return nil, &ValidationError{
			Field:   "RawScanSeries",
			Message: fmt.Sprintf("dimensions must be positive, got %dx%d", driftBins, totalScans),
		}
	}
	if len(data) != driftBins*totalScans {
		return nil, &ValidationError{
			Field:   "RawScanSeries",
			Message: fmt.Sprintf("expected %d values for %dx%d, got %d", driftBins*totalScans, driftBins, totalScans, len(data)),
		}
	}
	return &RawScanSeries{
		Name:        name,
		Intensities: mat.NewDense(driftBins, totalScans, data),
	}, nil
}

// DriftBins returns the number of drift-time bins (matrix rows).
func (s *RawScanSeries) DriftBins() int {
	r, _ := s.Intensities.Dims()
	return r
}

// StandardDriftBins reports whether the series has DefaultDriftBins rows.
func (s *RawScanSeries) StandardDriftBins() bool {
	return s.DriftBins() == DefaultDriftBins
}

// TotalScans returns the number of acquisition scans (matrix columns).
func (s *RawScanSeries) TotalScans() int {
	_, c := s.Intensities.Dims()
	return c
}

// Validate checks that the series can be combined.
func (s *RawScanSeries) Validate() error {
	var errs []string

	if s.Intensities == nil {
		errs = append(errs, "intensity matrix is required")
	} else {
		for i := 0; i < s.DriftBins(); i++ {
			for j, v := range s.Intensities.RawRowView(i) {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					errs = append(errs, fmt.Sprintf("bin %d scan %d has invalid intensity", i, j))
				}
			}
		}
	}
	if s.MZRange[0] > s.MZRange[1] {
		errs = append(errs, "m/z range must be ascending")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "RawScanSeries",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ScanRange is one voltage step of a plan. ScanEnd is exclusive.
type ScanRange struct {
	ScanStart int
	ScanEnd   int
	Voltage   float64
}

// Scans returns the number of scans summed into this step.
func (r ScanRange) Scans() int {
	return r.ScanEnd - r.ScanStart
}

// ScanRangePlan is the ordered list of voltage steps for one combination request.
type ScanRangePlan []ScanRange

// Voltages returns the voltage of every step in plan order.
func (p ScanRangePlan) Voltages() []float64 {
	out := make([]float64, len(p))
	for i, r := range p {
		out[i] = r.Voltage
	}
	return out
}

// Len returns the number of voltage steps.
func (p ScanRangePlan) Len() int {
	return len(p)
}

// End returns the exclusive scan index the plan consumes up to.
func (p ScanRangePlan) End() int {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].ScanEnd
}

// Validate checks that ranges are non-empty, contiguous and strictly increasing.
func (p ScanRangePlan) Validate() error {
	if len(p) == 0 {
		return &ValidationError{Field: "ScanRangePlan", Message: "plan has no voltage steps"}
	}

	var errs []string
	for i, r := range p {
		if r.ScanStart < 0 {
			errs = append(errs, fmt.Sprintf("step %d starts at negative scan %d", i, r.ScanStart))
		}
		if r.ScanEnd <= r.ScanStart {
			errs = append(errs, fmt.Sprintf("step %d is empty (%d:%d)", i, r.ScanStart, r.ScanEnd))
		}
		if i > 0 && r.ScanStart != p[i-1].ScanEnd {
			errs = append(errs, fmt.Sprintf("step %d starts at %d, previous ended at %d", i, r.ScanStart, p[i-1].ScanEnd))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "ScanRangePlan",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// CombinedIonMobilogram is the drift-time by voltage-step matrix produced from a raw
// scan series, along with its axes and 1D projections.
type CombinedIonMobilogram struct {
	Name            string
	Matrix          *mat.Dense // [drift bins, voltage steps]
	VoltageAxis     []float64
	DriftAxis       []float64
	MarginalDrift   []float64 // row sums
	MarginalVoltage []float64 // column sums
	Profile         AcquisitionProfile
	Plan            ScanRangePlan
}

// NewCombinedIonMobilogram wraps a matrix with its axes and computes both marginals.
func NewCombinedIonMobilogram(name string, m *mat.Dense, voltageAxis, driftAxis []float64) (*CombinedIonMobilogram, error) {
	r, c := m.Dims()
	if len(driftAxis) != r || len(voltageAxis) != c {
		return nil, &ValidationError{
			Field: "CombinedIonMobilogram",
			Message: fmt.Sprintf("axes %dx%d do not match matrix %dx%d",
				len(driftAxis), len(voltageAxis), r, c),
		}
	}

	cim := &CombinedIonMobilogram{
		Name:        name,
		Matrix:      m,
		VoltageAxis: voltageAxis,
		DriftAxis:   driftAxis,
	}
	cim.MarginalDrift, cim.MarginalVoltage = Marginals(m)
	return cim, nil
}

// Marginals returns the row sums and column sums of m.
func Marginals(m mat.Matrix) (rows, cols []float64) {
	r, c := m.Dims()
	rows = make([]float64, r)
	cols = make([]float64, c)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		rows[i] = floats.Sum(row)
		floats.Add(cols, row)
	}
	return rows, cols
}

// Shape returns the matrix dimensions as [rows, cols].
func (c *CombinedIonMobilogram) Shape() [2]int {
	return Shape(c.Matrix)
}

// Validate checks that the matrix and its axes agree.
func (c *CombinedIonMobilogram) Validate() error {
	var errs []string

	if c.Matrix == nil {
		errs = append(errs, "matrix is required")
	} else {
		r, cols := c.Matrix.Dims()
		if len(c.DriftAxis) != r {
			errs = append(errs, fmt.Sprintf("drift axis has %d entries for %d rows", len(c.DriftAxis), r))
		}
		if len(c.VoltageAxis) != cols {
			errs = append(errs, fmt.Sprintf("voltage axis has %d entries for %d columns", len(c.VoltageAxis), cols))
		}
	}
	if !isAscending(c.VoltageAxis) {
		errs = append(errs, "voltage axis must be ascending")
	}
	if !isAscending(c.DriftAxis) {
		errs = append(errs, "drift axis must be ascending")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "CombinedIonMobilogram",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

func isAscending(axis []float64) bool {
	for i := 1; i < len(axis); i++ {
		if axis[i] < axis[i-1] {
			return false
		}
	}
	return true
}
