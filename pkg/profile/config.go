package profile

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// Config is the flat, serializable form of a profile as it arrives from flags,
// config files or a stored document.
type Config struct {
	Mode            string         `mapstructure:"mode" yaml:"mode"`
	FirstScan       int            `mapstructure:"first-scan" yaml:"first_scan"`
	StartVoltage    float64        `mapstructure:"start-voltage" yaml:"start_voltage,omitempty"`
	EndVoltage      float64        `mapstructure:"end-voltage" yaml:"end_voltage,omitempty"`
	StepVoltage     float64        `mapstructure:"step-voltage" yaml:"step_voltage,omitempty"`
	ScansPerVoltage int            `mapstructure:"scans-per-voltage" yaml:"scans_per_voltage,omitempty"`
	ExpIncrement    float64        `mapstructure:"exp-increment" yaml:"exp_increment,omitempty"`
	ExpPercentage   float64        `mapstructure:"exp-percentage" yaml:"exp_percentage,omitempty"`
	FitScaleDx      float64        `mapstructure:"fit-scale-dx" yaml:"fit_scale_dx,omitempty"`
	FitHighScans    int            `mapstructure:"fit-high-scans" yaml:"fit_high_scans,omitempty"`
	Pairs           []VoltageScans `mapstructure:"pairs" yaml:"pairs,omitempty"`
}

// Profile builds the profile variant named by Mode. "boltzmann" is accepted as
// an alias of "fitted".
func (c Config) Profile() (Profile, error) {
	linear := Linear{
		FirstScan:       c.FirstScan,
		StartVoltage:    c.StartVoltage,
		EndVoltage:      c.EndVoltage,
		StepVoltage:     c.StepVoltage,
		ScansPerVoltage: c.ScansPerVoltage,
	}

	var p Profile
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case ModeLinear, "":
		p = linear
	case ModeExponential:
		p = Exponential{
			Linear:        linear,
			ExpIncrement:  c.ExpIncrement,
			ExpPercentage: c.ExpPercentage,
		}
	case ModeFitted, "boltzmann":
		p = Fitted{
			Linear:       linear,
			FitScaleDx:   c.FitScaleDx,
			FitHighScans: c.FitHighScans,
		}
	case ModeUserDefined, "user-defined":
		p = UserDefined{
			FirstScan: c.FirstScan,
			Pairs:     c.Pairs,
		}
	default:
		return nil, &core.ValidationError{
			Field:   "Mode",
			Message: fmt.Sprintf("unknown acquisition mode '%s', must be linear, exponential, fitted or user", c.Mode),
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ConfigFrom flattens a profile back into its Config form.
func ConfigFrom(p core.AcquisitionProfile) (Config, error) {
	fromLinear := func(l Linear) Config {
		return Config{
			FirstScan:       l.FirstScan,
			StartVoltage:    l.StartVoltage,
			EndVoltage:      l.EndVoltage,
			StepVoltage:     l.StepVoltage,
			ScansPerVoltage: l.ScansPerVoltage,
		}
	}

	var c Config
	switch v := p.(type) {
	case Linear:
		c = fromLinear(v)
	case Exponential:
		c = fromLinear(v.Linear)
		c.ExpIncrement = v.ExpIncrement
		c.ExpPercentage = v.ExpPercentage
	case Fitted:
		c = fromLinear(v.Linear)
		c.FitScaleDx = v.FitScaleDx
		c.FitHighScans = v.FitHighScans
	case UserDefined:
		c.FirstScan = v.FirstScan
		c.Pairs = v.Pairs
	default:
		return Config{}, fmt.Errorf("unsupported acquisition profile %T", p)
	}
	c.Mode = p.Mode()

	return c, nil
}
