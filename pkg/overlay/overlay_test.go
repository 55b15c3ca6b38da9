package overlay

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ChrisMcGann/CIUKit/pkg/core"
)

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		mode Mode
		want Config
	}{
		{Transparent, Config{Mode: Transparent, AlphaA: 1.0, AlphaB: 0.5}},
		{Mask, Config{Mode: Mask, ThresholdA: 0.25, ThresholdB: 0.25, AlphaA: 1, AlphaB: 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := DefaultConfig(tt.mode)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestApplyMask(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{
		0.1, 0.5, 1.0,
		0.2, 0.25, 0.3,
	})
	b := mat.NewDense(2, 3, []float64{
		4, 0, 1,
		2, 0.5, 3,
	})
	before := mat.DenseCopyOf(a)

	cfg := DefaultConfig(Mask)
	cfg.ThresholdB = 0.5
	ov, err := cfg.Apply(a, b)
	require.NoError(t, err)

	assert.Equal(t, Mask, ov.Mode)
	assert.Equal(t, []float64{0, 0.5, 1.0, 0, 0.25, 0.3}, ov.A.Data.RawMatrix().Data)
	assert.Equal(t, []bool{true, false, false, true, false, false}, ov.A.Mask)
	assert.Equal(t, 0.25, ov.A.Cutoff)
	assert.Equal(t, 2, ov.A.MaskedCount())

	assert.Equal(t, []float64{4, 0, 0, 2, 0, 3}, ov.B.Data.RawMatrix().Data)
	assert.True(t, ov.B.Masked(0, 1))
	assert.True(t, ov.B.Masked(1, 1))
	assert.False(t, ov.B.Masked(1, 0))

	r, c := ov.A.Data.Dims()
	assert.Equal(t, [2]int{2, 3}, [2]int{r, c})
	assert.True(t, mat.Equal(before, a), "input must not be modified")
}

func TestApplyTransparent(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})
	b := mat.NewDense(2, 2, []float64{0.0, 0.9, 0.8, 0.7})

	ov, err := DefaultConfig(Transparent).Apply(a, b)
	require.NoError(t, err)

	assert.True(t, mat.Equal(a, ov.A.Data))
	assert.True(t, mat.Equal(b, ov.B.Data))
	assert.Nil(t, ov.A.Mask)
	assert.False(t, ov.A.Masked(0, 0))
	assert.Equal(t, 1.0, ov.A.Alpha)
	assert.Equal(t, 0.5, ov.B.Alpha)
}

func TestApplyErrors(t *testing.T) {
	a := mat.NewDense(2, 2, nil)

	tests := []struct {
		name    string
		cfg     Config
		b       mat.Matrix
		wantErr interface{}
	}{
		{"shape mismatch", DefaultConfig(Mask), mat.NewDense(2, 3, nil), &core.ShapeMismatchError{}},
		{"threshold above one", Config{Mode: Mask, ThresholdA: 1.5, AlphaA: 1, AlphaB: 1}, a, &core.ValidationError{}},
		{"negative alpha", Config{Mode: Transparent, AlphaA: -0.1, AlphaB: 1}, a, &core.ValidationError{}},
		{"unknown mode", Config{Mode: "stacked"}, a, &core.ValidationError{}},
		{"NaN threshold", Config{Mode: Mask, ThresholdA: math.NaN(), AlphaA: 1, AlphaB: 1}, a, &core.ValidationError{}},
		{"NaN alpha", Config{Mode: Transparent, AlphaA: 0.5, AlphaB: math.NaN()}, a, &core.ValidationError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Apply(a, tt.b)
			require.Error(t, err)
			switch tt.wantErr.(type) {
			case *core.ShapeMismatchError:
				var target *core.ShapeMismatchError
				assert.True(t, errors.As(err, &target))
			case *core.ValidationError:
				var target *core.ValidationError
				assert.True(t, errors.As(err, &target))
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("MASK")
	require.NoError(t, err)
	assert.Equal(t, Mask, m)

	_, err = ParseMode("blend")
	assert.Error(t, err)
}
