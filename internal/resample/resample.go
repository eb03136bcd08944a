// Package resample aligns a foreign-CRS raster onto the working grid.
// Target cell centroids are projected into the source CRS through a
// geographic pivot (proj4 inverse, then forward) and values are picked up by
// bilinear interpolation among the four nearest source cells.
package resample

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/terrascope/geometry"
	"github.com/terrascope/proj4go"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// ToGrid resamples src onto the target grid. Output cells whose centroid
// falls outside the source extent, or whose bilinear neighborhood touches a
// NoData source cell, are NoData. When source and target share a proj
// string the coordinate transform is skipped entirely.
func ToGrid(src *raster.Raster, target raster.Grid) (*raster.Raster, error) {
	if target.Rows <= 0 || target.Cols <= 0 {
		return nil, eris.Errorf("resample: empty %dx%d target grid", target.Rows, target.Cols)
	}

	pts := make([]geometry.Point, target.Size())
	for row := 0; row < target.Rows; row++ {
		for col := 0; col < target.Cols; col++ {
			x, y := target.CellCenter(row, col)
			pts[row*target.Cols+col] = geometry.Point{X: x, Y: y}
		}
	}

	if src.Grid.Proj4 != target.Proj4 {
		// Through geographic coordinates, the way ae_wms warps tiles.
		proj4go.Inverse(target.Proj4, pts)
		proj4go.Forwards(src.Grid.Proj4, pts)
	}

	out := make([]float64, target.Size())
	for i, p := range pts {
		out[i] = bilinear(src, p.X, p.Y)
	}
	return raster.NewFromValues(target, src.NoData, out)
}

// bilinear interpolates src at the source-CRS point (x, y). Points inside
// the extent but beyond the outermost cell centroids clamp to the edge
// cells rather than extrapolating.
func bilinear(src *raster.Raster, x, y float64) float64 {
	g := src.Grid
	if x < g.MinX || x > g.MaxX || y < g.MinY || y > g.MaxY ||
		math.IsNaN(x) || math.IsNaN(y) {
		return src.NoData
	}

	gx := (x-g.MinX)/g.CellX - 0.5
	gy := (g.MaxY-y)/g.CellY - 0.5

	col0, fx := splitFrac(gx, g.Cols)
	row0, fy := splitFrac(gy, g.Rows)
	col1 := min(col0+1, g.Cols-1)
	row1 := min(row0+1, g.Rows-1)

	v00 := src.Value(row0, col0)
	v01 := src.Value(row0, col1)
	v10 := src.Value(row1, col0)
	v11 := src.Value(row1, col1)
	if src.IsNoData(v00) || src.IsNoData(v01) || src.IsNoData(v10) || src.IsNoData(v11) {
		return src.NoData
	}

	top := v00*(1-fx) + v01*fx
	bottom := v10*(1-fx) + v11*fx
	return top*(1-fy) + bottom*fy
}

// splitFrac clamps a fractional cell coordinate to the interpolable range
// and splits it into a base index and fraction.
func splitFrac(v float64, n int) (int, float64) {
	if n == 1 {
		return 0, 0
	}
	if v < 0 {
		v = 0
	}
	if v > float64(n-1) {
		v = float64(n - 1)
	}
	i := int(math.Floor(v))
	if i > n-2 {
		i = n - 2
	}
	return i, v - float64(i)
}
