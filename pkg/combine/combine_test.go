package combine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
	"github.com/ChrisMcGann/CIUKit/pkg/profile"
)

// rampSeries builds a series whose cell (bin, scan) is bin*100 + scan.
func rampSeries(t *testing.T, bins, scans int) *core.RawScanSeries {
	t.Helper()
	data := make([]float64, bins*scans)
	for i := 0; i < bins; i++ {
		for j := 0; j < scans; j++ {
			data[i*scans+j] = float64(i*100 + j)
		}
	}
	s, err := core.NewRawScanSeries("ramp", bins, scans, data)
	require.NoError(t, err)
	return s
}

func TestCombineColumnSums(t *testing.T) {
	series := rampSeries(t, 4, 15)
	before := mat.DenseCopyOf(series.Intensities)

	plan := core.ScanRangePlan{
		{ScanStart: 0, ScanEnd: 3, Voltage: 10},
		{ScanStart: 3, ScanEnd: 6, Voltage: 20},
		{ScanStart: 6, ScanEnd: 9, Voltage: 30},
		{ScanStart: 9, ScanEnd: 12, Voltage: 40},
		{ScanStart: 12, ScanEnd: 15, Voltage: 50},
	}

	cim, err := Combine(series, plan)
	require.NoError(t, err)

	r, c := cim.Matrix.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 5, c)

	for j, step := range plan {
		for i := 0; i < r; i++ {
			var want float64
			for s := step.ScanStart; s < step.ScanEnd; s++ {
				want += series.Intensities.At(i, s)
			}
			assert.Equal(t, want, cim.Matrix.At(i, j), "bin %d step %d", i, j)
		}
	}

	assert.Equal(t, []float64{10, 20, 30, 40, 50}, cim.VoltageAxis)
	assert.Equal(t, []float64{1, 2, 3, 4}, cim.DriftAxis)
	assert.Equal(t, plan, cim.Plan)
	assert.True(t, mat.Equal(before, series.Intensities), "input series must not be modified")
}

func TestCombineMarginals(t *testing.T) {
	series, err := core.NewRawScanSeries("small", 2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	require.NoError(t, err)

	plan := core.ScanRangePlan{
		{ScanStart: 0, ScanEnd: 1, Voltage: 5},
		{ScanStart: 1, ScanEnd: 4, Voltage: 10},
	}

	cim, err := Combine(series, plan)
	require.NoError(t, err)

	// [[1, 9], [5, 21]]
	assert.Equal(t, []float64{1, 9, 5, 21}, cim.Matrix.RawMatrix().Data)
	assert.Equal(t, []float64{10, 26}, cim.MarginalDrift)
	assert.Equal(t, []float64{6, 30}, cim.MarginalVoltage)
}

func TestCombineSkipsLeadingScans(t *testing.T) {
	series := rampSeries(t, 2, 10)

	plan, err := profile.Plan(profile.UserDefined{FirstScan: 4, Pairs: []profile.VoltageScans{{Voltage: 5, Scans: 2}, {Voltage: 10, Scans: 4}}}, series.TotalScans())
	require.NoError(t, err)

	cim, err := Combine(series, plan)
	require.NoError(t, err)

	assert.Equal(t, float64(4+5), cim.Matrix.At(0, 0))
	assert.Equal(t, float64(6+7+8+9), cim.Matrix.At(0, 1))
	assert.Equal(t, float64(104+105), cim.Matrix.At(1, 0))
}

func TestCombineErrors(t *testing.T) {
	series := rampSeries(t, 2, 6)

	t.Run("plan past end of series", func(t *testing.T) {
		_, err := Combine(series, core.ScanRangePlan{{ScanStart: 0, ScanEnd: 4, Voltage: 5}, {ScanStart: 4, ScanEnd: 8, Voltage: 10}})
		var scansErr *core.InsufficientScansError
		require.True(t, errors.As(err, &scansErr))
		assert.Equal(t, 8, scansErr.Expected)
		assert.Equal(t, 6, scansErr.Available)
	})

	t.Run("gap in plan", func(t *testing.T) {
		_, err := Combine(series, core.ScanRangePlan{{ScanStart: 0, ScanEnd: 2, Voltage: 5}, {ScanStart: 3, ScanEnd: 4, Voltage: 10}})
		var valErr *core.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("empty plan", func(t *testing.T) {
		_, err := Combine(series, nil)
		var valErr *core.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})
}

func TestRun(t *testing.T) {
	series := rampSeries(t, 3, 15)
	p := profile.Linear{StartVoltage: 10, EndVoltage: 50, StepVoltage: 10, ScansPerVoltage: 3}

	cim, err := Run(series, p)
	require.NoError(t, err)

	assert.Equal(t, p, cim.Profile)
	assert.Len(t, cim.Plan, 5)
	assert.Equal(t, 15, cim.Plan.End())
	assert.Equal(t, [2]int{3, 5}, cim.Shape())
}

func TestRunInsufficientScans(t *testing.T) {
	series := rampSeries(t, 3, 12)
	p := profile.Linear{StartVoltage: 10, EndVoltage: 50, StepVoltage: 10, ScansPerVoltage: 3}

	_, err := Run(series, p)
	var scansErr *core.InsufficientScansError
	require.True(t, errors.As(err, &scansErr), "error must unwrap to InsufficientScansError: %v", err)
	assert.Equal(t, 15, scansErr.Expected)
	assert.Equal(t, 12, scansErr.Available)
}
