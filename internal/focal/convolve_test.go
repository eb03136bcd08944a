package focal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/covariate-cli/internal/raster"
)

const (
	testProj = "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"
	noData   = -9999.0
)

// pointRaster builds a rows x cols presence raster with a single 1 at
// (srow, scol) and 0 elsewhere.
func pointRaster(t *testing.T, rows, cols, srow, scol int) *raster.Raster {
	t.Helper()
	g := raster.NewGrid(testProj, 0, 0, float64(cols), float64(rows), 1)
	b := raster.NewBuilder(g, noData, 0)
	b.Set(srow, scol, 1)
	return b.Raster()
}

func TestConvolveCenterBump(t *testing.T) {
	src := pointRaster(t, 5, 5, 2, 2)
	k, err := NewKernel(1, 0)
	require.NoError(t, err)

	out, err := Convolve(src, k)
	require.NoError(t, err)

	// Symmetric bump centered on the source cell.
	peak := out.Value(2, 2)
	assert.Greater(t, peak, 0.0)
	assert.Equal(t, out.Value(1, 2), out.Value(3, 2))
	assert.Equal(t, out.Value(2, 1), out.Value(2, 3))
	assert.Equal(t, out.Value(1, 2), out.Value(2, 1))
	assert.Greater(t, peak, out.Value(1, 2))

	// Full-coverage interior cells never exceed the peak.
	for row := 1; row <= 3; row++ {
		for col := 1; col <= 3; col++ {
			assert.LessOrEqual(t, out.Value(row, col), peak)
		}
	}
}

func TestConvolveEdgeRenormalization(t *testing.T) {
	// The same single-point input pattern placed at a corner and in the
	// interior must produce the same peak value: partial kernel coverage at
	// the edge is renormalized, not darkened.
	interior := pointRaster(t, 7, 7, 3, 3)
	corner := pointRaster(t, 7, 7, 0, 0)

	k, err := NewKernel(1, 0)
	require.NoError(t, err)

	outInterior, err := Convolve(interior, k)
	require.NoError(t, err)
	outCorner, err := Convolve(corner, k)
	require.NoError(t, err)

	// At the corner only 4 of the 9 kernel cells are in bounds, but the
	// weights in use are the same relative mix as the interior's top-left
	// quadrant, so the corner peak is >= the interior peak (fewer zero
	// neighbors diluting the point).
	assert.GreaterOrEqual(t, outCorner.Value(0, 0), outInterior.Value(3, 3))
	assert.Greater(t, outCorner.Value(0, 0), 0.0)
}

func TestConvolveNoDataExcluded(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 3, 3, 1)
	src, err := raster.NewFromRows(g, noData, [][]float64{
		{noData, noData, noData},
		{noData, 4, noData},
		{noData, noData, 2},
	})
	require.NoError(t, err)

	k, err := NewKernel(1, 0)
	require.NoError(t, err)

	out, err := Convolve(src, k)
	require.NoError(t, err)

	// Center cell: only itself and the (2,2) diagonal neighbor are valid
	// under the kernel; everything else drops out of both sums.
	w0 := k.Weight(0, 0)
	wd := k.Weight(1, 1)
	want := (w0*4 + wd*2) / (w0 + wd)
	assert.InDelta(t, want, out.Value(1, 1), 1e-12)

	// The corner's footprint reaches the single valid center, so the
	// renormalized output there collapses to that value.
	assert.InDelta(t, 4.0, out.Value(0, 0), 1e-12)
}

func TestConvolveAllNoDataFootprint(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 5, 5, 1)
	b := raster.NewBuilder(g, noData, noData)
	b.Set(2, 2, 7)
	src := b.Raster()

	k, err := NewKernel(1, 0)
	require.NoError(t, err)

	out, err := Convolve(src, k)
	require.NoError(t, err)

	// The corner is two cells from the only valid cell, outside a
	// radius-1 footprint, so it stays NoData.
	assert.False(t, out.Valid(0, 0))
	assert.InDelta(t, 7.0, out.Value(2, 2), 1e-12)
}

func TestConvolveConstantInputUnchanged(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 6, 6, 1)
	src := raster.New(g, noData, 3.5)

	k, err := NewKernel(2, 0)
	require.NoError(t, err)

	out, err := Convolve(src, k)
	require.NoError(t, err)

	// Weighted mean of a constant is the constant, edges included.
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			assert.InDelta(t, 3.5, out.Value(row, col), 1e-12)
		}
	}
}

// lag1Autocorr measures spatial smoothness as the correlation between the
// value series and its one-cell east shift.
func lag1Autocorr(r *raster.Raster) float64 {
	var a, b []float64
	for row := 0; row < r.Grid.Rows; row++ {
		for col := 0; col+1 < r.Grid.Cols; col++ {
			a = append(a, r.Value(row, col))
			b = append(b, r.Value(row, col+1))
		}
	}
	return stat.Correlation(a, b, nil)
}

func TestConvolveLargerRadiusSmoothsMore(t *testing.T) {
	src := pointRaster(t, 21, 21, 10, 10)

	k1, err := NewKernel(2, 0)
	require.NoError(t, err)
	k2, err := NewKernel(5, 0)
	require.NoError(t, err)

	out1, err := Convolve(src, k1)
	require.NoError(t, err)
	out2, err := Convolve(src, k2)
	require.NoError(t, err)

	assert.Greater(t, lag1Autocorr(out2), lag1Autocorr(out1))
}

func TestFillNoData(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 2, 2, 1)
	src, err := raster.NewFromRows(g, noData, [][]float64{
		{1.5, noData},
		{noData, 0},
	})
	require.NoError(t, err)

	filled := FillNoData(src, 0)
	assert.Equal(t, 1.5, filled.Value(0, 0))
	assert.Equal(t, 0.0, filled.Value(0, 1))
	assert.Equal(t, 0.0, filled.Value(1, 0))
	assert.Equal(t, 4, filled.ValidCount())

	// Source untouched.
	assert.Equal(t, 2, src.ValidCount())
}
