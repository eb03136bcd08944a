package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/covariate-cli/internal/config"
	"github.com/sells-group/covariate-cli/internal/pipeline"
	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/rasterio"
	"github.com/sells-group/covariate-cli/internal/vector"
	"github.com/sells-group/covariate-cli/pkg/overpass"
)

// loadSources assembles the pipeline inputs from shapefiles, cached
// Overpass responses, and the DEM, reprojecting everything into the
// analysis CRS.
func loadSources(cfg *config.Config) (pipeline.Sources, error) {
	var src pipeline.Sources

	boundary, err := loadShapefileLayer("boundary", cfg.Boundary.Path, cfg.Boundary.Proj4, cfg)
	if err != nil {
		return src, err
	}
	src.Boundary = boundary

	coast, err := loadVectorLayer("coast", cfg.Coast, cfg, false)
	if err != nil {
		return src, err
	}
	src.Coast = coast

	roads, err := loadVectorLayer("roads", cfg.Road, cfg, false)
	if err != nil {
		return src, err
	}
	src.Roads = roads

	tourism, err := loadVectorLayer("tourism", cfg.Tourism, cfg, false)
	if err != nil {
		return src, err
	}
	src.Tourism = tourism

	buildings, err := loadVectorLayer("buildings", cfg.Building, cfg, true)
	if err != nil {
		return src, err
	}
	src.Buildings = buildings

	dem, err := loadDEM(cfg.DEM.Path, cfg.DEM.Proj4)
	if err != nil {
		return src, eris.Wrap(err, "load dem")
	}
	src.DEM = dem

	return src, nil
}

// loadDEM reads the elevation raster. A .json path is treated as a layer
// manifest whose "dem" entry names the grid file and its CRS.
func loadDEM(path, proj4 string) (*raster.Raster, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		manifest, err := rasterio.ReadManifest(path)
		if err != nil {
			return nil, err
		}
		meta, err := manifest.ReadLayer("dem")
		if err != nil {
			return nil, err
		}
		gridPath := meta.Path
		if !filepath.IsAbs(gridPath) {
			gridPath = filepath.Join(filepath.Dir(path), gridPath)
		}
		return rasterio.ReadASCII(gridPath, meta.Proj4)
	}
	return rasterio.ReadASCII(path, proj4)
}

// loadVectorLayer reads a layer from a shapefile or a cached Overpass
// response, whichever the config points at.
func loadVectorLayer(name string, lc config.LayerConfig, cfg *config.Config, closedAsPolygons bool) (*vector.Layer, error) {
	path := lc.Path
	if path == "" {
		path = cachePath(cfg, name)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		resp, err := overpass.LoadResponse(path)
		if err != nil {
			return nil, eris.Wrapf(err, "load %s (run `covariate-cli fetch` first?)", name)
		}
		layer, err := vector.FromOverpass(resp, vector.OSMOptions{
			Name:                 name,
			ClosedWaysAsPolygons: closedAsPolygons,
		})
		if err != nil {
			return nil, err
		}
		return reprojected(layer, cfg.Grid.Proj4)
	}

	return loadShapefileLayer(name, path, lc.Proj4, cfg)
}

func loadShapefileLayer(name, path, proj4 string, cfg *config.Config) (*vector.Layer, error) {
	if proj4 == "" {
		proj4 = cfg.Grid.Proj4
	}
	layer, err := vector.LoadShapefile(path, name, proj4)
	if err != nil {
		return nil, err
	}
	return reprojected(layer, cfg.Grid.Proj4)
}

func reprojected(layer *vector.Layer, proj4 string) (*vector.Layer, error) {
	if layer.Proj4 == proj4 {
		return layer, nil
	}
	zap.L().Debug("reprojecting layer",
		zap.String("layer", layer.Name),
		zap.String("from", layer.Proj4),
		zap.String("to", proj4),
	)
	return vector.Reproject(layer, proj4)
}

func cachePath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.Overpass.CacheDir, name+".json")
}
