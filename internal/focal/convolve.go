package focal

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// Convolve computes the NoData-aware focal weighted mean of src under the
// kernel. Input cells that are NoData or outside the grid are excluded from
// both the weighted sum and the normalization factor, so edge cells and
// cells near sparse data are not systematically depressed. A cell whose
// whole footprint holds no valid input becomes NoData; see FillNoData for
// the presence-raster substitution rule.
//
// Each output cell depends only on its input neighborhood, so rows are
// processed in parallel.
func Convolve(src *raster.Raster, k *Kernel) (*raster.Raster, error) {
	g := src.Grid
	out := make([]float64, g.Size())

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for row := 0; row < g.Rows; row++ {
		eg.Go(func() error {
			for col := 0; col < g.Cols; col++ {
				out[row*g.Cols+col] = focalMean(src, k, row, col)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return raster.NewFromValues(g, src.NoData, out)
}

// focalMean returns the renormalized weighted mean of the kernel footprint
// centered on (row, col), or NoData when no valid input cell falls under a
// non-zero weight.
func focalMean(src *raster.Raster, k *Kernel, row, col int) float64 {
	g := src.Grid

	minDi, maxDi := -k.Radius, k.Radius
	if row+minDi < 0 {
		minDi = -row
	}
	if row+maxDi > g.Rows-1 {
		maxDi = g.Rows - 1 - row
	}
	minDj, maxDj := -k.Radius, k.Radius
	if col+minDj < 0 {
		minDj = -col
	}
	if col+maxDj > g.Cols-1 {
		maxDj = g.Cols - 1 - col
	}

	var sum, wsum float64
	for di := minDi; di <= maxDi; di++ {
		for dj := minDj; dj <= maxDj; dj++ {
			w := k.Weight(di, dj)
			if w == 0 {
				continue
			}
			v := src.Value(row+di, col+dj)
			if src.IsNoData(v) {
				continue
			}
			sum += w * v
			wsum += w
		}
	}

	if wsum == 0 {
		return src.NoData
	}
	return sum / wsum
}
