package compare

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultSigma is the Gaussian width applied to RMSF profiles, in drift bins.
const DefaultSigma = 1.0

// truncate is the kernel half-width in standard deviations.
const truncate = 4.0

// MaxSigma bounds the smoothing width so the kernel stays allocatable.
const MaxSigma = 1e4

// Smooth convolves x with a normalized Gaussian of the given sigma. Samples past either
// end are mirrored, repeating the edge sample (d c b a | a b c d | d c b a).
// A sigma of zero or less, or NaN, returns a copy of x. Sigma is capped at MaxSigma.
func Smooth(x []float64, sigma float64) []float64 {
	out := make([]float64, len(x))
	if !(sigma > 0) || len(x) == 0 {
		copy(out, x)
		return out
	}
	sigma = math.Min(sigma, MaxSigma)

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	n := len(x)
	for i := range out {
		var sum float64
		for k, w := range kernel {
			sum += w * x[reflect(i+k-radius, n)]
		}
		out[i] = sum
	}
	return out
}

// gaussianKernel returns weights for offsets -r..r, r = round(truncate*sigma), summing to 1.
func gaussianKernel(sigma float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-0.5 * d * d / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// reflect maps i onto [0, n) by mirroring about the array edges.
func reflect(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
