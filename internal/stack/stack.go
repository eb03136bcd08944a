// Package stack combines aligned single-band rasters into per-cell feature
// rows and serializes them for the modelling stage.
package stack

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// Band is a named raster destined for one feature-table column.
type Band struct {
	Name   string
	Raster *raster.Raster
}

// FeatureTable is the pipeline's terminal artifact: one row per cell where
// every band holds data. Columns are X, Y, then the band names in input
// order. Row order is cell-scan order and carries no meaning.
type FeatureTable struct {
	Columns []string
	Rows    [][]float64
}

// Stack merges N rasters into a FeatureTable. A cell is emitted only when
// all N bands are non-NoData there; there are no partial rows. Fails with
// ErrGridMismatch unless every band shares one grid.
func Stack(bands []Band) (*FeatureTable, error) {
	if len(bands) == 0 {
		return nil, eris.New("stack: no bands")
	}

	g := bands[0].Raster.Grid
	for _, b := range bands[1:] {
		if !b.Raster.Grid.Equal(g) {
			return nil, eris.Wrapf(raster.ErrGridMismatch,
				"stack: band %q is %dx%d, band %q is %dx%d",
				b.Name, b.Raster.Grid.Rows, b.Raster.Grid.Cols,
				bands[0].Name, g.Rows, g.Cols)
		}
	}

	table := &FeatureTable{Columns: make([]string, 0, len(bands)+2)}
	table.Columns = append(table.Columns, "X", "Y")
	for _, b := range bands {
		table.Columns = append(table.Columns, b.Name)
	}

	for row := 0; row < g.Rows; row++ {
	cells:
		for col := 0; col < g.Cols; col++ {
			vals := make([]float64, 0, len(bands)+2)
			x, y := g.CellCenter(row, col)
			vals = append(vals, x, y)
			for _, b := range bands {
				v := b.Raster.Value(row, col)
				if b.Raster.IsNoData(v) {
					continue cells
				}
				vals = append(vals, v)
			}
			table.Rows = append(table.Rows, vals)
		}
	}

	return table, nil
}
