// Package overlay prepares two aligned mobilograms for display on shared axes
package overlay

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

// Mode selects how two matrices are layered
type Mode string

const (
	// Transparent draws both matrices unchanged, each with its own alpha
	Transparent Mode = "transparent"
	// Mask hides cells below a fraction of each matrix's maximum
	Mask Mode = "mask"
)

// ParseMode resolves a mode name, case-insensitively
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Transparent, Mask:
		return m, nil
	}
	return "", &core.ValidationError{Field: "Mode", Message: fmt.Sprintf("unknown overlay mode %q", s)}
}

// Config holds overlay configuration
type Config struct {
	Mode       Mode    `mapstructure:"mode" yaml:"mode"`
	ThresholdA float64 `mapstructure:"threshold-a" yaml:"threshold_a"` // Fraction of max(A) below which A is masked
	ThresholdB float64 `mapstructure:"threshold-b" yaml:"threshold_b"` // Fraction of max(B) below which B is masked
	AlphaA     float64 `mapstructure:"alpha-a" yaml:"alpha_a"`         // Opacity of layer A
	AlphaB     float64 `mapstructure:"alpha-b" yaml:"alpha_b"`         // Opacity of layer B
}

// DefaultConfig returns the default settings for mode
func DefaultConfig(mode Mode) Config {
	switch mode {
	case Mask:
		return Config{Mode: Mask, ThresholdA: 0.25, ThresholdB: 0.25, AlphaA: 1, AlphaB: 1}
	default:
		return Config{Mode: Transparent, AlphaA: 1, AlphaB: 0.5}
	}
}

// Layer is one matrix of an overlay. Mask is row-major and true where the cell was hidden.
type Layer struct {
	Data   *mat.Dense
	Mask   []bool
	Alpha  float64
	Cutoff float64
}

// Masked reports whether cell (i, j) was hidden
func (l *Layer) Masked(i, j int) bool {
	if l.Mask == nil {
		return false
	}
	_, c := l.Data.Dims()
	return l.Mask[i*c+j]
}

// MaskedCount returns the number of hidden cells
func (l *Layer) MaskedCount() int {
	n := 0
	for _, m := range l.Mask {
		if m {
			n++
		}
	}
	return n
}

// Overlay is a pair of display-ready layers sharing one shape
type Overlay struct {
	Mode Mode
	A    Layer
	B    Layer
}

// Validate checks modes and that thresholds and alphas lie in [0, 1]
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"ThresholdA", c.ThresholdA},
		{"ThresholdB", c.ThresholdB},
		{"AlphaA", c.AlphaA},
		{"AlphaB", c.AlphaB},
	}
	for _, f := range fields {
		if !(f.value >= 0 && f.value <= 1) {
			return &core.ValidationError{Field: f.name, Message: fmt.Sprintf("%g is outside [0, 1]", f.value)}
		}
	}
	return nil
}

// Apply layers a and b according to the configuration. Inputs are not modified.
func (c Config) Apply(a, b mat.Matrix) (*Overlay, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Both layers are drawn on the same axes
	if err := core.SameShape(a, b); err != nil {
		return nil, err
	}

	mode, _ := ParseMode(string(c.Mode))
	out := &Overlay{
		Mode: mode,
		A:    Layer{Data: mat.DenseCopyOf(a), Alpha: c.AlphaA},
		B:    Layer{Data: mat.DenseCopyOf(b), Alpha: c.AlphaB},
	}

	if mode == Mask {
		maskBelow(&out.A, c.ThresholdA)
		maskBelow(&out.B, c.ThresholdB)
	}

	return out, nil
}

// maskBelow zeroes and flags cells below threshold * max of the layer's own data
func maskBelow(l *Layer, threshold float64) {
	r, c := l.Data.Dims()
	if r == 0 || c == 0 {
		return
	}

	l.Cutoff = threshold * mat.Max(l.Data)
	l.Mask = make([]bool, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if l.Data.At(i, j) < l.Cutoff {
				l.Data.Set(i, j, 0)
				l.Mask[i*c+j] = true
			}
		}
	}
}
