package focal

import "github.com/sells-group/covariate-cli/internal/raster"

// FillNoData returns a copy of r with every NoData cell replaced by value.
//
// This is a domain rule, not a convolution property: when the convolution
// input was a sparse 0/1 presence raster, a cell whose footprint held no
// valid input means "no exposure", and the exposure surface substitutes 0
// there. Callers opt in explicitly; general rasters keep their NoData.
func FillNoData(r *raster.Raster, value float64) *raster.Raster {
	g := r.Grid
	out := make([]float64, g.Size())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			v := r.Value(row, col)
			if r.IsNoData(v) {
				v = value
			}
			out[row*g.Cols+col] = v
		}
	}
	filled, err := raster.NewFromValues(g, r.NoData, out)
	if err != nil {
		// The slice was sized from the same grid; this cannot fail.
		panic(err)
	}
	return filled
}
