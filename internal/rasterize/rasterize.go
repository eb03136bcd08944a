// Package rasterize burns vector geometries onto a grid. Points mark their
// containing cell, lines mark every cell their path crosses, polygons mark
// every cell whose centroid falls inside.
package rasterize

import (
	"math"

	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/vector"
)

// Options sets the burn values. Background may equal NoData to produce a
// sparse raster.
type Options struct {
	Foreground float64
	Background float64
	NoData     float64
}

// Rasterize burns every geometry in the layer onto the grid. The layer must
// already be in the grid's CRS (ErrCRSMismatch otherwise) and must not be
// empty (ErrEmptyGeometryResult).
func Rasterize(layer *vector.Layer, g raster.Grid, opts Options) (*raster.Raster, error) {
	if err := layer.CheckNotEmpty(); err != nil {
		return nil, eris.Wrap(err, "rasterize")
	}
	if err := layer.CheckCRS(g); err != nil {
		return nil, eris.Wrap(err, "rasterize")
	}

	b := raster.NewBuilder(g, opts.NoData, opts.Background)
	mark := func(row, col int) {
		if row >= 0 && row < g.Rows && col >= 0 && col < g.Cols {
			b.Set(row, col, opts.Foreground)
		}
	}

	for _, t := range layer.Geometries {
		burnGeometry(t, g, mark)
	}

	return b.Raster(), nil
}

func burnGeometry(t geom.T, g raster.Grid, mark func(row, col int)) {
	switch s := t.(type) {
	case *geom.Point:
		burnPoint(g, s.X(), s.Y(), mark)
	case *geom.MultiPoint:
		for i := 0; i < s.NumPoints(); i++ {
			p := s.Point(i)
			burnPoint(g, p.X(), p.Y(), mark)
		}
	case *geom.LineString:
		burnLine(g, s.FlatCoords(), s.Stride(), mark)
	case *geom.MultiLineString:
		for i := 0; i < s.NumLineStrings(); i++ {
			ls := s.LineString(i)
			burnLine(g, ls.FlatCoords(), ls.Stride(), mark)
		}
	case *geom.Polygon:
		burnPolygon(g, s, mark)
	case *geom.MultiPolygon:
		for i := 0; i < s.NumPolygons(); i++ {
			burnPolygon(g, s.Polygon(i), mark)
		}
	}
}

func burnPoint(g raster.Grid, x, y float64, mark func(row, col int)) {
	if row, col, ok := g.CellAt(x, y); ok {
		mark(row, col)
	}
}

func burnLine(g raster.Grid, flat []float64, stride int, mark func(row, col int)) {
	for i := 0; i+stride < len(flat); i += stride {
		traverseSegment(g, flat[i], flat[i+1], flat[i+stride], flat[i+stride+1], mark)
	}
}

// traverseSegment marks every cell the segment crosses, using grid-boundary
// stepping (Amanatides & Woo). Cells outside the grid are skipped by mark.
func traverseSegment(g raster.Grid, x0, y0, x1, y1 float64, mark func(row, col int)) {
	// Fractional cell coordinates: u grows east, v grows south with rows.
	u0 := (x0 - g.MinX) / g.CellX
	v0 := (g.MaxY - y0) / g.CellY
	u1 := (x1 - g.MinX) / g.CellX
	v1 := (g.MaxY - y1) / g.CellY

	col := int(math.Floor(u0))
	row := int(math.Floor(v0))
	endCol := int(math.Floor(u1))
	endRow := int(math.Floor(v1))

	mark(row, col)

	du := u1 - u0
	dv := v1 - v0

	stepC, tMaxC, tDeltaC := axisInit(u0, du)
	stepR, tMaxR, tDeltaR := axisInit(v0, dv)

	// Each iteration crosses exactly one cell boundary.
	steps := abs(endCol-col) + abs(endRow-row)
	for i := 0; i < steps; i++ {
		if tMaxC < tMaxR {
			col += stepC
			tMaxC += tDeltaC
		} else {
			row += stepR
			tMaxR += tDeltaR
		}
		mark(row, col)
	}
}

// axisInit computes the step direction, the segment parameter at the first
// boundary crossing, and the parameter advance per cell along one axis.
func axisInit(p0, d float64) (step int, tMax, tDelta float64) {
	if d > 0 {
		return 1, (math.Floor(p0) + 1 - p0) / d, 1 / d
	}
	if d < 0 {
		return -1, (math.Floor(p0) - p0) / d, -1 / d
	}
	return 0, math.Inf(1), math.Inf(1)
}

func burnPolygon(g raster.Grid, p *geom.Polygon, mark func(row, col int)) {
	bounds := p.Bounds()
	minRow, maxRow, minCol, maxCol := cellRange(g, bounds.Min(0), bounds.Min(1), bounds.Max(0), bounds.Max(1))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			x, y := g.CellCenter(row, col)
			if vector.PolygonContains(p, x, y) {
				mark(row, col)
			}
		}
	}
}

// cellRange clips a bbox to the grid and returns the inclusive cell index
// range it touches.
func cellRange(g raster.Grid, minX, minY, maxX, maxY float64) (minRow, maxRow, minCol, maxCol int) {
	minCol = clamp(int(math.Floor((minX-g.MinX)/g.CellX)), 0, g.Cols-1)
	maxCol = clamp(int(math.Floor((maxX-g.MinX)/g.CellX)), 0, g.Cols-1)
	minRow = clamp(int(math.Floor((g.MaxY-maxY)/g.CellY)), 0, g.Rows-1)
	maxRow = clamp(int(math.Floor((g.MaxY-minY)/g.CellY)), 0, g.Rows-1)
	return minRow, maxRow, minCol, maxCol
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
