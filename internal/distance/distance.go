// Package distance computes exact Euclidean distance-to-source surfaces
// using the Felzenszwalb–Huttenlocher two-pass squared-distance transform.
// Chamfer approximations are not acceptable here: downstream covariates
// expect metric accuracy to sub-cell precision.
package distance

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// farAway is the squared-distance sentinel for non-source cells before the
// transform runs. Large but finite, so the parabola arithmetic stays valid.
const farAway = 1e30

// Transform returns a raster holding, for every cell, the Euclidean distance
// in the grid's linear units to the nearest cell of src whose value equals
// sourceValue. Source cells come out exactly 0. When the grid contains no
// source cell at all, every cell is NoData (never an unbounded value).
// Anisotropic cells are handled by scaling each axis by its cell size.
func Transform(src *raster.Raster, sourceValue float64) (*raster.Raster, error) {
	g := src.Grid
	if g.Rows == 0 || g.Cols == 0 {
		return nil, eris.Errorf("distance: empty %dx%d grid", g.Rows, g.Cols)
	}

	d := make([]float64, g.Size())
	found := false
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if src.Valid(row, col) && src.Value(row, col) == sourceValue {
				d[row*g.Cols+col] = 0
				found = true
			} else {
				d[row*g.Cols+col] = farAway
			}
		}
	}

	if !found {
		return raster.NewFromValues(g, src.NoData, fill(g.Size(), src.NoData))
	}

	// Pass 1: squared distances down each column, spaced by the cell height.
	colBuf := make([]float64, g.Rows)
	for col := 0; col < g.Cols; col++ {
		for row := 0; row < g.Rows; row++ {
			colBuf[row] = d[row*g.Cols+col]
		}
		dt1d(colBuf, g.CellY)
		for row := 0; row < g.Rows; row++ {
			d[row*g.Cols+col] = colBuf[row]
		}
	}

	// Pass 2: along each row, spaced by the cell width.
	for row := 0; row < g.Rows; row++ {
		dt1d(d[row*g.Cols:(row+1)*g.Cols], g.CellX)
	}

	for i, v := range d {
		d[i] = math.Sqrt(v)
	}
	return raster.NewFromValues(g, src.NoData, d)
}

// dt1d replaces f with the 1-D squared distance transform of the sampled
// function, samples spaced step apart (Felzenszwalb & Huttenlocher 2012,
// lower envelope of parabolas).
func dt1d(f []float64, step float64) {
	n := len(f)
	if n == 0 {
		return
	}

	v := make([]int, n)       // sample indices of the envelope parabolas
	z := make([]float64, n+1) // boundaries between envelope parabolas
	out := make([]float64, n)

	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)

	pos := func(i int) float64 { return float64(i) * step }

	for q := 1; q < n; q++ {
		s := intersect(f, pos, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, pos, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		x := pos(q)
		for z[k+1] < x {
			k++
		}
		diff := x - pos(v[k])
		out[q] = diff*diff + f[v[k]]
	}

	copy(f, out)
}

// intersect returns the abscissa where the parabolas rooted at samples q and
// p cross.
func intersect(f []float64, pos func(int) float64, q, p int) float64 {
	xq, xp := pos(q), pos(p)
	return ((f[q] + xq*xq) - (f[p] + xp*xp)) / (2*xq - 2*xp)
}

func fill(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
