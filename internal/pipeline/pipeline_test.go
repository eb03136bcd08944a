package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/vector"
)

const testProj = "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"

const noData = -9999.0

func testParams() Params {
	return Params{
		Proj4:    testProj,
		CellSize: 100,
		NoData:   noData,
		Road:     ExposureParams{Radius: 1},
		Tourism:  ExposureParams{Radius: 2},
		Building: ExposureParams{Radius: 2},
	}
}

func squareBoundary() *vector.Layer {
	poly := geom.NewPolygon(geom.XY)
	_ = poly.Push(geom.NewLinearRingFlat(geom.XY, []float64{
		0, 0, 1000, 0, 1000, 1000, 0, 1000, 0, 0,
	}))
	return &vector.Layer{Name: "boundary", Proj4: testProj, Geometries: []geom.T{poly}}
}

func pointLayer(name string, coords ...float64) *vector.Layer {
	l := &vector.Layer{Name: name, Proj4: testProj}
	for i := 0; i+1 < len(coords); i += 2 {
		l.Geometries = append(l.Geometries,
			geom.NewPointFlat(geom.XY, []float64{coords[i], coords[i+1]}))
	}
	return l
}

func testSources(t *testing.T) Sources {
	t.Helper()

	coast := &vector.Layer{Name: "coast", Proj4: testProj, Geometries: []geom.T{
		geom.NewLineStringFlat(geom.XY, []float64{50, 0, 50, 1000}),
	}}

	demGrid := raster.NewGrid(testProj, -200, -200, 1200, 1200, 100)
	dem := raster.NewBuilder(demGrid, noData, 500).Raster()

	return Sources{
		Boundary:  squareBoundary(),
		Coast:     coast,
		Roads:     pointLayer("roads", 150, 150, 850, 850),
		Tourism:   pointLayer("tourism", 450, 450),
		Buildings: pointLayer("buildings", 250, 750, 650, 350),
		DEM:       dem,
	}
}

func TestRunProducesFullTable(t *testing.T) {
	result, err := Run(context.Background(), testParams(), testSources(t))
	require.NoError(t, err)

	assert.Equal(t, 10, result.Grid.Rows)
	assert.Equal(t, 10, result.Grid.Cols)
	assert.Equal(t, []string{
		"X", "Y",
		ColCoastDistance, ColTourismExposure, ColBuildingExposure,
		ColRoadExposure, ColElevation,
	}, result.Table.Columns)

	// Every cell center is inside the square boundary.
	assert.Len(t, result.Table.Rows, 100)
}

func TestRunCoastDistanceGrowsEastward(t *testing.T) {
	result, err := Run(context.Background(), testParams(), testSources(t))
	require.NoError(t, err)

	// Rows come out in scan order; within one raster row the coast
	// column must be non-decreasing away from the coastline at x=50.
	byY := map[float64][]float64{}
	for _, row := range result.Table.Rows {
		byY[row[1]] = append(byY[row[1]], row[2])
	}
	for _, distances := range byY {
		for i := 1; i < len(distances); i++ {
			assert.GreaterOrEqual(t, distances[i], distances[i-1])
		}
	}

	// Distances are kilometers; the grid is only a kilometer across.
	for _, row := range result.Table.Rows {
		assert.Less(t, row[2], 1.0)
		assert.GreaterOrEqual(t, row[2], 0.0)
	}
}

func TestRunExposuresAreStandardized(t *testing.T) {
	result, err := Run(context.Background(), testParams(), testSources(t))
	require.NoError(t, err)

	for col := 3; col <= 5; col++ {
		var sum float64
		for _, row := range result.Table.Rows {
			sum += row[col]
		}
		mean := sum / float64(len(result.Table.Rows))
		assert.InDelta(t, 0, mean, 1e-9, "column %s", result.Table.Columns[col])
	}
}

func TestRunElevationResampled(t *testing.T) {
	result, err := Run(context.Background(), testParams(), testSources(t))
	require.NoError(t, err)

	for _, row := range result.Table.Rows {
		assert.InDelta(t, 500, row[6], 1e-9)
	}
}

func TestRunEmptyLayerFails(t *testing.T) {
	src := testSources(t)
	src.Tourism = &vector.Layer{Name: "tourism", Proj4: testProj}

	_, err := Run(context.Background(), testParams(), src)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrEmptyGeometryResult))
}

func TestRunBoundaryCRSMismatch(t *testing.T) {
	src := testSources(t)
	src.Boundary.Proj4 = vector.GeographicProj4

	_, err := Run(context.Background(), testParams(), src)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrCRSMismatch))
}

func TestRunMissingDEM(t *testing.T) {
	src := testSources(t)
	src.DEM = nil

	_, err := Run(context.Background(), testParams(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dem")
}
