// Package raster provides the grid and single-band raster primitives every
// pipeline stage operates on. All derived layers must share one Grid; the
// stacker rejects anything else.
package raster

import "math"

// coordEps is the tolerance used when comparing grid coordinates. Grids are
// derived from the same configuration, so anything beyond float rounding is a
// real mismatch.
const coordEps = 1e-9

// Grid is a raster skeleton: a coordinate reference (proj4 string), an
// extent, a cell size, and the resulting dimensions. It carries no data.
// Row 0 is the northernmost row; column 0 the westernmost column.
type Grid struct {
	Proj4 string

	MinX, MinY float64
	MaxX, MaxY float64

	CellX, CellY float64

	Rows, Cols int
}

// NewGrid builds a grid covering the given extent with square cells of the
// given size. The extent is expanded northward/eastward to a whole number of
// cells so that cell edges stay aligned with MinX/MinY.
func NewGrid(proj4 string, minX, minY, maxX, maxY, cell float64) Grid {
	cols := int(math.Ceil((maxX - minX - coordEps) / cell))
	rows := int(math.Ceil((maxY - minY - coordEps) / cell))
	return Grid{
		Proj4: proj4,
		MinX:  minX,
		MinY:  minY,
		MaxX:  minX + float64(cols)*cell,
		MaxY:  minY + float64(rows)*cell,
		CellX: cell,
		CellY: cell,
		Rows:  rows,
		Cols:  cols,
	}
}

// Equal reports whether two grids describe the same raster skeleton: same
// CRS, same extent and cell size within tolerance, same dimensions.
func (g Grid) Equal(o Grid) bool {
	return g.Proj4 == o.Proj4 &&
		g.Rows == o.Rows && g.Cols == o.Cols &&
		near(g.MinX, o.MinX) && near(g.MinY, o.MinY) &&
		near(g.MaxX, o.MaxX) && near(g.MaxY, o.MaxY) &&
		near(g.CellX, o.CellX) && near(g.CellY, o.CellY)
}

// Size returns the number of cells.
func (g Grid) Size() int { return g.Rows * g.Cols }

// CellCenter returns the projected coordinates of the centroid of cell
// (row, col).
func (g Grid) CellCenter(row, col int) (x, y float64) {
	x = g.MinX + (float64(col)+0.5)*g.CellX
	y = g.MaxY - (float64(row)+0.5)*g.CellY
	return x, y
}

// CellAt returns the cell containing the point (x, y), and whether the point
// falls inside the grid extent. Points on the east/north edge belong to the
// last cell.
func (g Grid) CellAt(x, y float64) (row, col int, ok bool) {
	if x < g.MinX-coordEps || x > g.MaxX+coordEps ||
		y < g.MinY-coordEps || y > g.MaxY+coordEps {
		return 0, 0, false
	}
	col = int(math.Floor((x - g.MinX) / g.CellX))
	row = int(math.Floor((g.MaxY - y) / g.CellY))
	if col == g.Cols {
		col = g.Cols - 1
	}
	if row == g.Rows {
		row = g.Rows - 1
	}
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return 0, 0, false
	}
	return row, col, true
}

func near(a, b float64) bool { return math.Abs(a-b) <= coordEps }
