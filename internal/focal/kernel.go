// Package focal builds Gaussian kernels and convolves them over sparse
// rasters to produce smoothed exposure surfaces.
package focal

import (
	"math"

	"github.com/rotisserie/eris"
)

// Kernel is a square, odd-sized, radially symmetric matrix of non-negative
// Gaussian weights with finite support: zero outside the radius.
type Kernel struct {
	Radius int
	Sigma  float64

	weights []float64 // (2R+1)x(2R+1), row-major
}

// NewKernel builds a discretized Gaussian of the given radius in cells.
// sigma <= 0 selects the default radius/3. Weights are unnormalized; the
// convolution renormalizes per cell over the weights actually used.
func NewKernel(radius int, sigma float64) (*Kernel, error) {
	if radius < 1 {
		return nil, eris.Errorf("focal: kernel radius %d, want >= 1", radius)
	}
	if sigma <= 0 {
		sigma = float64(radius) / 3
	}

	size := 2*radius + 1
	w := make([]float64, size*size)
	for i := -radius; i <= radius; i++ {
		for j := -radius; j <= radius; j++ {
			d2 := float64(i*i + j*j)
			w[(i+radius)*size+(j+radius)] = math.Exp(-d2 / (2 * sigma * sigma))
		}
	}
	return &Kernel{Radius: radius, Sigma: sigma, weights: w}, nil
}

// Weight returns the weight at offset (di, dj) from the kernel center.
// Offsets beyond the radius return 0.
func (k *Kernel) Weight(di, dj int) float64 {
	if di < -k.Radius || di > k.Radius || dj < -k.Radius || dj > k.Radius {
		return 0
	}
	size := 2*k.Radius + 1
	return k.weights[(di+k.Radius)*size+(dj+k.Radius)]
}

// Sum returns the total of all weights.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, w := range k.weights {
		s += w
	}
	return s
}
