// Package mask restricts rasters to a study area: cropping to a bounding
// box and nulling cells outside a boundary polygon.
package mask

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/vector"
)

// Crop trims a raster to the given bounding box. The window is snapped
// outward to cell boundaries so the result stays aligned with the source
// grid; cells are copied, never resampled. Fails when the box does not
// intersect the raster extent.
func Crop(r *raster.Raster, minX, minY, maxX, maxY float64) (*raster.Raster, error) {
	g := r.Grid
	if minX >= maxX || minY >= maxY {
		return nil, eris.Errorf("mask: degenerate crop box [%g,%g]x[%g,%g]", minX, maxX, minY, maxY)
	}
	if maxX <= g.MinX || minX >= g.MaxX || maxY <= g.MinY || minY >= g.MaxY {
		return nil, eris.Errorf("mask: crop box [%g,%g]x[%g,%g] outside raster extent [%g,%g]x[%g,%g]",
			minX, maxX, minY, maxY, g.MinX, g.MaxX, g.MinY, g.MaxY)
	}

	minCol := clampInt(int(math.Floor((minX-g.MinX)/g.CellX)), 0, g.Cols-1)
	maxCol := clampInt(int(math.Ceil((maxX-g.MinX)/g.CellX))-1, 0, g.Cols-1)
	minRow := clampInt(int(math.Floor((g.MaxY-maxY)/g.CellY)), 0, g.Rows-1)
	maxRow := clampInt(int(math.Ceil((g.MaxY-minY)/g.CellY))-1, 0, g.Rows-1)

	sub := raster.Grid{
		Proj4: g.Proj4,
		MinX:  g.MinX + float64(minCol)*g.CellX,
		MaxX:  g.MinX + float64(maxCol+1)*g.CellX,
		MinY:  g.MaxY - float64(maxRow+1)*g.CellY,
		MaxY:  g.MaxY - float64(minRow)*g.CellY,
		CellX: g.CellX,
		CellY: g.CellY,
		Rows:  maxRow - minRow + 1,
		Cols:  maxCol - minCol + 1,
	}

	b := raster.NewBuilder(sub, r.NoData, r.NoData)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			b.Set(row-minRow, col-minCol, r.Value(row, col))
		}
	}
	return b.Raster(), nil
}

// Polygon sets every cell whose centroid lies outside the boundary layer's
// polygons to NoData. Cells inside keep their value exactly. The boundary
// must be in the raster's CRS and polygonal.
func Polygon(r *raster.Raster, boundary *vector.Layer) (*raster.Raster, error) {
	if err := boundary.CheckNotEmpty(); err != nil {
		return nil, eris.Wrap(err, "mask")
	}
	if err := boundary.CheckCRS(r.Grid); err != nil {
		return nil, eris.Wrap(err, "mask")
	}

	g := r.Grid
	out := make([]float64, g.Size())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			i := row*g.Cols + col
			x, y := g.CellCenter(row, col)
			if containsAny(boundary, x, y) {
				out[i] = r.Value(row, col)
			} else {
				out[i] = r.NoData
			}
		}
	}
	return raster.NewFromValues(g, r.NoData, out)
}

func containsAny(l *vector.Layer, x, y float64) bool {
	for _, g := range l.Geometries {
		if vector.GeometryContains(g, x, y) {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
