package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/covariate-cli/internal/config"
	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/rasterio"
	"github.com/sells-group/covariate-cli/internal/vector"
	"github.com/sells-group/covariate-cli/pkg/overpass"
)

func TestLoadVectorLayerFromOverpassCache(t *testing.T) {
	dir := t.TempDir()
	resp := &overpass.Response{Elements: []overpass.Element{
		{Type: "node", ID: 1, Lat: 42.1, Lon: 12.5},
	}}
	require.NoError(t, overpass.SaveResponse(resp, filepath.Join(dir, "tourism.json")))

	cfg := &config.Config{}
	cfg.Grid.Proj4 = vector.GeographicProj4
	cfg.Overpass.CacheDir = dir

	layer, err := loadVectorLayer("tourism", config.LayerConfig{OSMKey: "tourism"}, cfg, false)
	require.NoError(t, err)
	assert.Equal(t, "tourism", layer.Name)
	assert.Equal(t, vector.GeographicProj4, layer.Proj4)
	assert.Len(t, layer.Geometries, 1)
}

func TestLoadVectorLayerMissingCache(t *testing.T) {
	cfg := &config.Config{}
	cfg.Grid.Proj4 = vector.GeographicProj4
	cfg.Overpass.CacheDir = t.TempDir()

	_, err := loadVectorLayer("roads", config.LayerConfig{OSMKey: "highway"}, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch")
}

func TestExportTableUnknownFormat(t *testing.T) {
	_, err := exportTable(nil, t.TempDir(), "parquet", "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parquet")
}

func TestLoadDEMFromManifest(t *testing.T) {
	dir := t.TempDir()

	grid := raster.NewGrid(vector.GeographicProj4, 0, 0, 0.3, 0.3, 0.1)
	dem := raster.NewBuilder(grid, -9999, 120).Raster()
	require.NoError(t, rasterio.WriteASCII(dem, filepath.Join(dir, "dem.asc")))

	manifest := rasterio.Manifest{
		"dem": {Name: "dem", Path: "dem.asc", Proj4: vector.GeographicProj4, NoData: -9999},
	}
	manifestPath := filepath.Join(dir, "layers.json")
	require.NoError(t, rasterio.WriteManifest(manifest, manifestPath))

	loaded, err := loadDEM(manifestPath, "")
	require.NoError(t, err)
	assert.Equal(t, vector.GeographicProj4, loaded.Grid.Proj4)
	assert.Equal(t, 3, loaded.Grid.Rows)
	assert.InDelta(t, 120, loaded.Value(0, 0), 1e-9)
}

func TestCachePath(t *testing.T) {
	cfg := &config.Config{}
	cfg.Overpass.CacheDir = "data/overpass"
	assert.Equal(t, filepath.Join("data", "overpass", "roads.json"), cachePath(cfg, "roads"))
}
