package mask

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/vector"
)

const (
	testProj = "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"
	noData   = -9999.0
)

func sequential(t *testing.T, g raster.Grid) *raster.Raster {
	t.Helper()
	vals := make([]float64, g.Size())
	for i := range vals {
		vals[i] = float64(i)
	}
	r, err := raster.NewFromValues(g, noData, vals)
	require.NoError(t, err)
	return r
}

func boundaryLayer(flat ...float64) *vector.Layer {
	poly := geom.NewPolygon(geom.XY)
	_ = poly.Push(geom.NewLinearRingFlat(geom.XY, flat))
	return &vector.Layer{Name: "boundary", Proj4: testProj, Geometries: []geom.T{poly}}
}

func TestCropAlignsToCells(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 100, 100, 10)
	r := sequential(t, g)

	// Box interior to cells [1..3]x[1..3] snaps outward to those cells.
	out, err := Crop(r, 12, 65, 33, 88)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Grid.Rows)
	assert.Equal(t, 3, out.Grid.Cols)
	assert.InDelta(t, 10.0, out.Grid.MinX, 1e-9)
	assert.InDelta(t, 40.0, out.Grid.MaxX, 1e-9)
	assert.InDelta(t, 60.0, out.Grid.MinY, 1e-9)
	assert.InDelta(t, 90.0, out.Grid.MaxY, 1e-9)

	// Values survive the move: the cell centered at (15, 85) held row 1,
	// col 1 of the source.
	assert.Equal(t, r.Value(1, 1), out.Value(0, 0))
	assert.Equal(t, r.Value(3, 3), out.Value(2, 2))
}

func TestCropWholeExtentIsIdentity(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 50, 50, 10)
	r := sequential(t, g)

	out, err := Crop(r, 0, 0, 50, 50)
	require.NoError(t, err)
	assert.True(t, out.Grid.Equal(g))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			assert.Equal(t, r.Value(row, col), out.Value(row, col))
		}
	}
}

func TestCropOutsideExtent(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 50, 50, 10)
	r := sequential(t, g)

	_, err := Crop(r, 100, 100, 200, 200)
	assert.Error(t, err)

	_, err = Crop(r, 30, 30, 20, 40)
	assert.Error(t, err)
}

func TestPolygonMask(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 50, 50, 10)
	r := sequential(t, g)

	// Boundary covers the west half: columns 0 and 1 (centers 5 and 15).
	boundary := boundaryLayer(0, 0, 20, 0, 20, 50, 0, 50, 0, 0)

	out, err := Polygon(r, boundary)
	require.NoError(t, err)

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col <= 1 {
				// Strictly inside: value passes through untouched.
				assert.Equal(t, r.Value(row, col), out.Value(row, col), "cell %d,%d", row, col)
			} else {
				assert.False(t, out.Valid(row, col), "cell %d,%d", row, col)
			}
		}
	}
}

func TestPolygonMaskCRSMismatch(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 50, 50, 10)
	r := sequential(t, g)

	boundary := boundaryLayer(0, 0, 20, 0, 20, 50, 0, 50, 0, 0)
	boundary.Proj4 = vector.GeographicProj4

	_, err := Polygon(r, boundary)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrCRSMismatch))
}

func TestPolygonMaskEmptyBoundary(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 50, 50, 10)
	r := sequential(t, g)

	_, err := Polygon(r, &vector.Layer{Name: "boundary", Proj4: testProj})
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrEmptyGeometryResult))
}
