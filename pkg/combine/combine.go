// Package combine collapses a raw scan series into a drift-time by voltage matrix.
package combine

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
	"github.com/ChrisMcGann/CIUKit/pkg/profile"
)

// Combine sums the scans of every plan step into one column. Intensities are summed,
// not averaged, and no normalization is applied.
func Combine(series *core.RawScanSeries, plan core.ScanRangePlan) (*core.CombinedIonMobilogram, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if end := plan.End(); end > series.TotalScans() {
		return nil, &core.InsufficientScansError{
			Expected:  end,
			Available: series.TotalScans(),
		}
	}

	bins := series.DriftBins()
	m := mat.NewDense(bins, len(plan), nil)
	for i := 0; i < bins; i++ {
		row := series.Intensities.RawRowView(i)
		for j, r := range plan {
			m.Set(i, j, floats.Sum(row[r.ScanStart:r.ScanEnd]))
		}
	}

	cim, err := core.NewCombinedIonMobilogram(series.Name, m, plan.Voltages(), core.DriftAxis(bins))
	if err != nil {
		return nil, err
	}
	cim.Plan = append(core.ScanRangePlan(nil), plan...)

	return cim, nil
}

// Run plans the profile against the series and combines it.
func Run(series *core.RawScanSeries, p profile.Profile) (*core.CombinedIonMobilogram, error) {
	plan, err := profile.Plan(p, series.TotalScans())
	if err != nil {
		return nil, fmt.Errorf("failed to plan %s acquisition: %w", p.Mode(), err)
	}

	cim, err := Combine(series, plan)
	if err != nil {
		return nil, err
	}
	cim.Profile = p

	return cim, nil
}
