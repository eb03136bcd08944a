package raster

import (
	"math"

	"github.com/rotisserie/eris"
)

// Raster is a single band of values on a Grid with a NoData sentinel.
// Rasters are immutable once produced: every transform allocates a new one.
// Values are stored row-major, row 0 northernmost.
type Raster struct {
	Grid   Grid
	NoData float64

	data []float64
}

// New returns a raster with every cell set to the given fill value.
func New(g Grid, noData, fill float64) *Raster {
	data := make([]float64, g.Size())
	for i := range data {
		data[i] = fill
	}
	return &Raster{Grid: g, NoData: noData, data: data}
}

// NewFromValues wraps a row-major value slice. It fails with ErrShapeMismatch
// when the slice length disagrees with the grid dimensions.
func NewFromValues(g Grid, noData float64, values []float64) (*Raster, error) {
	if len(values) != g.Size() {
		return nil, eris.Wrapf(ErrShapeMismatch,
			"raster: %d values for %dx%d grid", len(values), g.Rows, g.Cols)
	}
	data := make([]float64, len(values))
	copy(data, values)
	return &Raster{Grid: g, NoData: noData, data: data}, nil
}

// NewFromRows wraps a [][]float64, north row first. It fails with
// ErrShapeMismatch when any dimension disagrees with the grid.
func NewFromRows(g Grid, noData float64, rows [][]float64) (*Raster, error) {
	if len(rows) != g.Rows {
		return nil, eris.Wrapf(ErrShapeMismatch,
			"raster: %d rows for %dx%d grid", len(rows), g.Rows, g.Cols)
	}
	data := make([]float64, 0, g.Size())
	for i, row := range rows {
		if len(row) != g.Cols {
			return nil, eris.Wrapf(ErrShapeMismatch,
				"raster: row %d has %d values for %dx%d grid", i, len(row), g.Rows, g.Cols)
		}
		data = append(data, row...)
	}
	return &Raster{Grid: g, NoData: noData, data: data}, nil
}

// Value returns the value at (row, col). Out-of-range indices panic, as with
// any slice access.
func (r *Raster) Value(row, col int) float64 {
	return r.data[row*r.Grid.Cols+col]
}

// Valid reports whether the cell at (row, col) holds a data value.
func (r *Raster) Valid(row, col int) bool {
	return !r.IsNoData(r.Value(row, col))
}

// IsNoData reports whether v is this raster's NoData sentinel. NaN is always
// treated as NoData.
func (r *Raster) IsNoData(v float64) bool {
	return v == r.NoData || math.IsNaN(v)
}

// ValidValues returns a newly allocated slice of all non-NoData values in
// scan order.
func (r *Raster) ValidValues() []float64 {
	out := make([]float64, 0, len(r.data))
	for _, v := range r.data {
		if !r.IsNoData(v) {
			out = append(out, v)
		}
	}
	return out
}

// ValidCount returns the number of non-NoData cells.
func (r *Raster) ValidCount() int {
	n := 0
	for _, v := range r.data {
		if !r.IsNoData(v) {
			n++
		}
	}
	return n
}

// Apply returns a new raster with f applied to every data cell. NoData cells
// stay NoData.
func (r *Raster) Apply(f func(v float64) float64) *Raster {
	data := make([]float64, len(r.data))
	for i, v := range r.data {
		if r.IsNoData(v) {
			data[i] = r.NoData
			continue
		}
		data[i] = f(v)
	}
	return &Raster{Grid: r.Grid, NoData: r.NoData, data: data}
}

// Combine merges two rasters cell by cell with f. If either operand at a
// cell is NoData the result at that cell is NoData. Fails with
// ErrGridMismatch when the rasters are not on the same grid.
func Combine(a, b *Raster, f func(av, bv float64) float64) (*Raster, error) {
	if !a.Grid.Equal(b.Grid) {
		return nil, eris.Wrapf(ErrGridMismatch,
			"raster: combine %dx%d with %dx%d", a.Grid.Rows, a.Grid.Cols, b.Grid.Rows, b.Grid.Cols)
	}
	data := make([]float64, len(a.data))
	for i := range data {
		av, bv := a.data[i], b.data[i]
		if a.IsNoData(av) || b.IsNoData(bv) {
			data[i] = a.NoData
			continue
		}
		data[i] = f(av, bv)
	}
	return &Raster{Grid: a.Grid, NoData: a.NoData, data: data}, nil
}

// Builder accumulates cell values for a raster under construction. It exists
// so transforms can fill a band incrementally and then freeze it.
type Builder struct {
	r *Raster
}

// NewBuilder starts a raster filled with the given value.
func NewBuilder(g Grid, noData, fill float64) *Builder {
	return &Builder{r: New(g, noData, fill)}
}

// Set writes a value at (row, col).
func (b *Builder) Set(row, col int, v float64) {
	b.r.data[row*b.r.Grid.Cols+col] = v
}

// Value reads back a value at (row, col).
func (b *Builder) Value(row, col int) float64 {
	return b.r.Value(row, col)
}

// Raster freezes the builder and returns the raster. The builder must not be
// used afterwards.
func (b *Builder) Raster() *Raster {
	r := b.r
	b.r = nil
	return r
}
