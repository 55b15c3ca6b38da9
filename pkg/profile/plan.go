package profile

import (
	"fmt"
	"math"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// maxRequiredScans bounds RequiredScans, which has no series to check against.
const maxRequiredScans = math.MaxInt32

// Plan maps a profile onto contiguous scan ranges. It fails with
// *core.InsufficientScansError when the plan reaches past totalScans and with
// *core.ValidationError when the profile itself is invalid.
func Plan(p Profile, totalScans int) (core.ScanRangePlan, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Reject before the steps are allocated
	if lower := p.minScans(); lower > float64(totalScans) {
		return nil, &core.InsufficientScansError{
			Expected:  clampScans(lower),
			Available: totalScans,
		}
	}

	volts, counts := p.steps()
	plan := make(core.ScanRangePlan, len(volts))

	start := p.firstScan()
	for i := range volts {
		plan[i] = core.ScanRange{
			ScanStart: start,
			ScanEnd:   start + counts[i],
			Voltage:   volts[i],
		}
		start += counts[i]
	}

	if end := plan.End(); end > totalScans {
		return nil, &core.InsufficientScansError{
			Expected:  end,
			Available: totalScans,
		}
	}

	return plan, nil
}

// RequiredScans returns the scan index the profile consumes up to, without
// checking it against a series.
func RequiredScans(p Profile) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if lower := p.minScans(); lower > maxRequiredScans {
		return 0, &core.ValidationError{
			Field:   "Profile",
			Message: fmt.Sprintf("profile needs at least %.0f scans, more than %d", lower, maxRequiredScans),
		}
	}

	volts, counts := p.steps()
	total := p.firstScan()
	for i := range volts {
		total += counts[i]
	}
	return total, nil
}

func clampScans(v float64) int {
	if v >= math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}
