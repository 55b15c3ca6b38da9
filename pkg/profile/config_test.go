package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

func TestConfigProfile(t *testing.T) {
	base := Config{StartVoltage: 10, EndVoltage: 50, StepVoltage: 10, ScansPerVoltage: 3}
	linear := Linear{StartVoltage: 10, EndVoltage: 50, StepVoltage: 10, ScansPerVoltage: 3}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   Profile
	}{
		{"empty mode is linear", func(c *Config) {}, linear},
		{"linear upper case", func(c *Config) { c.Mode = "LINEAR" }, linear},
		{
			name: "exponential",
			mutate: func(c *Config) {
				c.Mode = "exponential"
				c.ExpIncrement = 1
				c.ExpPercentage = 50
			},
			want: Exponential{Linear: linear, ExpIncrement: 1, ExpPercentage: 50},
		},
		{
			name: "boltzmann alias",
			mutate: func(c *Config) {
				c.Mode = "boltzmann"
				c.FitScaleDx = 5
			},
			want: Fitted{Linear: linear, FitScaleDx: 5},
		},
		{
			name: "user defined",
			mutate: func(c *Config) {
				c.Mode = "user"
				c.Pairs = []VoltageScans{{5, 2}}
			},
			want: UserDefined{Pairs: []VoltageScans{{5, 2}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)

			got, err := c.Profile()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigProfileErrors(t *testing.T) {
	_, err := Config{Mode: "sawtooth"}.Profile()
	var valErr *core.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "Mode", valErr.Field)

	_, err = Config{Mode: "linear"}.Profile()
	assert.True(t, errors.As(err, &valErr), "zero-valued ramp must not validate")
}

func TestConfigFromRoundTrip(t *testing.T) {
	linear := Linear{FirstScan: 2, StartVoltage: 10, EndVoltage: 50, StepVoltage: 10, ScansPerVoltage: 3}

	profiles := []Profile{
		linear,
		Exponential{Linear: linear, ExpIncrement: 0.5, ExpPercentage: 25},
		Fitted{Linear: linear, FitScaleDx: 4, FitHighScans: 8},
		UserDefined{FirstScan: 1, Pairs: []VoltageScans{{5, 2}, {10, 4}}},
	}

	for _, p := range profiles {
		t.Run(p.Mode(), func(t *testing.T) {
			c, err := ConfigFrom(p)
			require.NoError(t, err)
			assert.Equal(t, p.Mode(), c.Mode)

			// profiles are stored as YAML documents alongside combined matrices
			out, err := yaml.Marshal(c)
			require.NoError(t, err)

			var decoded Config
			require.NoError(t, yaml.Unmarshal(out, &decoded))

			back, err := decoded.Profile()
			require.NoError(t, err)
			assert.Equal(t, p, back)
		})
	}
}
