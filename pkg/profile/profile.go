// Package profile defines the acquisition profiles that map raw scan indices onto
// activation-voltage steps, and plans scan ranges from them.
//
// The set of profiles is closed: Linear, Exponential, Fitted and UserDefined.
// Each variant computes its own per-step scan counts; Plan turns those counts into
// contiguous scan ranges and checks them against the number of scans available.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// Acquisition modes
const (
	ModeLinear      = "linear"
	ModeExponential = "exponential"
	ModeFitted      = "fitted"
	ModeUserDefined = "user"
)

// stepTolerance absorbs floating point error when counting voltage steps:
// a 0.1 to 1.0 ramp in 0.1 steps has 10 voltages.
const stepTolerance = 1e-9

// Profile is an acquisition profile that can produce per-step voltages and scan counts.
type Profile interface {
	core.AcquisitionProfile
	firstScan() int
	minScans() float64
	steps() (voltages []float64, counts []int)
}

// Linear acquires ScansPerVoltage scans at every voltage from StartVoltage to
// EndVoltage in StepVoltage increments.
type Linear struct {
	FirstScan       int
	StartVoltage    float64
	EndVoltage      float64
	StepVoltage     float64
	ScansPerVoltage int
}

// Mode returns ModeLinear.
func (l Linear) Mode() string { return ModeLinear }

// Validate checks the ramp parameters.
func (l Linear) Validate() error {
	return l.validate("Linear")
}

func (l Linear) validate(field string) error {
	var errs []string

	if l.FirstScan < 0 {
		errs = append(errs, "first scan must be non-negative")
	}
	if !isFinite(l.StartVoltage) || !isFinite(l.EndVoltage) || !isFinite(l.StepVoltage) {
		errs = append(errs, "voltages must be finite")
	} else if l.StepVoltage <= 0 {
		errs = append(errs, "step voltage must be positive")
	}
	if l.ScansPerVoltage <= 0 {
		errs = append(errs, "scans per voltage must be positive")
	}
	if l.EndVoltage < l.StartVoltage {
		errs = append(errs, fmt.Sprintf("end voltage %.2f is below start voltage %.2f", l.EndVoltage, l.StartVoltage))
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   field,
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

func (l Linear) firstScan() int { return l.FirstScan }

// stepCount returns the number of full steps of the ramp; a partial last step is dropped.
// It stays in floating point so that very long ramps can be rejected before allocation.
func (l Linear) stepCount() float64 {
	return math.Floor((l.EndVoltage-l.StartVoltage)/l.StepVoltage+stepTolerance) + 1
}

// minScans is exact for Linear and a lower bound for the variants that embed it,
// whose counts never drop below ScansPerVoltage.
func (l Linear) minScans() float64 {
	return float64(l.FirstScan) + l.stepCount()*float64(l.ScansPerVoltage)
}

func (l Linear) voltages() []float64 {
	out := make([]float64, int(l.stepCount()))
	for i := range out {
		out[i] = l.StartVoltage + float64(i)*l.StepVoltage
	}
	return out
}

func (l Linear) steps() ([]float64, []int) {
	volts := l.voltages()
	counts := make([]int, len(volts))
	for i := range counts {
		counts[i] = l.ScansPerVoltage
	}
	return volts, counts
}

// Exponential behaves like Linear until the voltage reaches ExpPercentage percent of
// the ramp. From then on every step acquires ExpIncrement more scans than the one before.
type Exponential struct {
	Linear
	ExpIncrement  float64
	ExpPercentage float64 // 0-100
}

// Mode returns ModeExponential.
func (e Exponential) Mode() string { return ModeExponential }

// Validate checks the ramp and growth parameters.
func (e Exponential) Validate() error {
	if err := e.Linear.validate("Exponential"); err != nil {
		return err
	}

	var errs []string
	if e.ExpIncrement < 0 || !isFinite(e.ExpIncrement) {
		errs = append(errs, "exponential increment must be non-negative")
	}
	if e.ExpPercentage < 0 || e.ExpPercentage > 100 || math.IsNaN(e.ExpPercentage) {
		errs = append(errs, "exponential percentage must be between 0 and 100")
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   "Exponential",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

// Threshold returns the voltage at which scan counts start to grow.
func (e Exponential) Threshold() float64 {
	return e.StartVoltage + e.ExpPercentage/100*(e.EndVoltage-e.StartVoltage)
}

func (e Exponential) steps() ([]float64, []int) {
	volts := e.voltages()
	counts := make([]int, len(volts))
	threshold := e.Threshold() - stepTolerance

	// The increment may be fractional, so the running count is kept in floating
	// point and only rounded when emitted.
	acc := float64(e.ScansPerVoltage)
	for i, v := range volts {
		if i > 0 && v >= threshold {
			acc += e.ExpIncrement
		}
		counts[i] = atLeastOne(acc)
	}
	return volts, counts
}

// Fitted grows the scan count along a Boltzmann curve centred on the voltage midpoint,
// from ScansPerVoltage at low voltages towards FitHighScans at high voltages.
type Fitted struct {
	Linear
	FitScaleDx   float64
	FitHighScans int // 0 means 2*ScansPerVoltage
}

// Mode returns ModeFitted.
func (f Fitted) Mode() string { return ModeFitted }

// Validate checks the ramp and curve parameters.
func (f Fitted) Validate() error {
	if err := f.Linear.validate("Fitted"); err != nil {
		return err
	}

	var errs []string
	if f.FitScaleDx <= 0 || !isFinite(f.FitScaleDx) {
		errs = append(errs, "fit scale dx must be positive")
	}
	if f.FitHighScans != 0 && f.FitHighScans < f.ScansPerVoltage {
		errs = append(errs, fmt.Sprintf("high plateau %d is below scans per voltage %d", f.FitHighScans, f.ScansPerVoltage))
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   "Fitted",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

func (f Fitted) highScans() int {
	if f.FitHighScans == 0 {
		return 2 * f.ScansPerVoltage
	}
	return f.FitHighScans
}

func (f Fitted) steps() ([]float64, []int) {
	volts := f.voltages()
	counts := make([]int, len(volts))

	low := float64(f.ScansPerVoltage)
	high := float64(f.highScans())
	mid := (f.StartVoltage + f.EndVoltage) / 2
	for i, v := range volts {
		counts[i] = atLeastOne(low + (high-low)/(1+math.Exp(-(v-mid)/f.FitScaleDx)))
	}
	return volts, counts
}

// VoltageScans is one user-supplied voltage step.
type VoltageScans struct {
	Voltage float64 `csv:"voltage" mapstructure:"voltage" yaml:"voltage"`
	Scans   int     `csv:"scans" mapstructure:"scans" yaml:"scans"`
}

// UserDefined takes voltages and scan counts verbatim from a list.
type UserDefined struct {
	FirstScan int
	Pairs     []VoltageScans
}

// Mode returns ModeUserDefined.
func (u UserDefined) Mode() string { return ModeUserDefined }

// Validate checks that every step acquires at least one scan.
func (u UserDefined) Validate() error {
	var errs []string

	if u.FirstScan < 0 {
		errs = append(errs, "first scan must be non-negative")
	}
	if len(u.Pairs) == 0 {
		errs = append(errs, "at least one voltage/scan pair is required")
	}
	for i, p := range u.Pairs {
		if p.Scans <= 0 {
			errs = append(errs, fmt.Sprintf("pair %d (%.2f V) has %d scans", i, p.Voltage, p.Scans))
		}
		if !isFinite(p.Voltage) {
			errs = append(errs, fmt.Sprintf("pair %d has invalid voltage", i))
		}
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   "UserDefined",
			Message: strings.Join(errs, "; "),
		}
	}
	return nil
}

func (u UserDefined) firstScan() int { return u.FirstScan }

func (u UserDefined) minScans() float64 {
	total := float64(u.FirstScan)
	for _, p := range u.Pairs {
		total += float64(p.Scans)
	}
	return total
}

func (u UserDefined) steps() ([]float64, []int) {
	volts := make([]float64, len(u.Pairs))
	counts := make([]int, len(u.Pairs))
	for i, p := range u.Pairs {
		volts[i] = p.Voltage
		counts[i] = p.Scans
	}
	return volts, counts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// atLeastOne rounds a scan count into [1, math.MaxInt32].
func atLeastOne(v float64) int {
	v = math.Round(v)
	if v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
