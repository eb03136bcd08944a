// Package pipeline orchestrates the covariate stages: grid derivation,
// coast distance, exposure smoothing, elevation resampling, and the
// final stack into a feature table.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/covariate-cli/internal/distance"
	"github.com/sells-group/covariate-cli/internal/focal"
	"github.com/sells-group/covariate-cli/internal/mask"
	"github.com/sells-group/covariate-cli/internal/normalize"
	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/internal/rasterize"
	"github.com/sells-group/covariate-cli/internal/resample"
	"github.com/sells-group/covariate-cli/internal/stack"
	"github.com/sells-group/covariate-cli/internal/vector"
)

// Feature column names, in output order.
const (
	ColCoastDistance    = "CoastDistance"
	ColTourismExposure  = "TourismExposure"
	ColBuildingExposure = "BuildingExposure"
	ColRoadExposure     = "RoadExposure"
	ColElevation        = "Elevation"
)

// ExposureParams configures one smoothed presence layer.
type ExposureParams struct {
	Radius int
	Sigma  float64
}

// Params holds everything the pipeline needs besides the input data.
type Params struct {
	Proj4    string
	CellSize float64
	NoData   float64
	Road     ExposureParams
	Tourism  ExposureParams
	Building ExposureParams
}

// Sources bundles the input layers. All vectors must already be in the
// analysis CRS; the DEM may be in any CRS and is resampled.
type Sources struct {
	Boundary  *vector.Layer
	Coast     *vector.Layer
	Roads     *vector.Layer
	Tourism   *vector.Layer
	Buildings *vector.Layer
	DEM       *raster.Raster
}

// Result is the pipeline output: the derived grid and the stacked table.
type Result struct {
	Grid  raster.Grid
	Table *stack.FeatureTable
}

// Run executes the full pipeline over the given sources.
func Run(ctx context.Context, params Params, src Sources) (*Result, error) {
	start := time.Now()
	log := zap.L()

	grid, err := deriveGrid(params, src.Boundary)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: grid derived",
		zap.Int("rows", grid.Rows),
		zap.Int("cols", grid.Cols),
		zap.Float64("cell_size", params.CellSize),
	)

	bands := make([]stack.Band, 5)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		r, err := coastDistance(params, src.Coast, src.Boundary, grid)
		if err != nil {
			return err
		}
		bands[0] = stack.Band{Name: ColCoastDistance, Raster: r}
		return nil
	})
	for _, job := range []struct {
		idx    int
		name   string
		layer  *vector.Layer
		kernel ExposureParams
	}{
		{1, ColTourismExposure, src.Tourism, params.Tourism},
		{2, ColBuildingExposure, src.Buildings, params.Building},
		{3, ColRoadExposure, src.Roads, params.Road},
	} {
		group.Go(func() error {
			r, err := exposure(gctx, params, job.layer, src.Boundary, grid, job.kernel)
			if err != nil {
				return eris.Wrapf(err, "pipeline: %s", job.name)
			}
			bands[job.idx] = stack.Band{Name: job.name, Raster: r}
			return nil
		})
	}
	group.Go(func() error {
		r, err := elevation(src.DEM, src.Boundary, grid)
		if err != nil {
			return err
		}
		bands[4] = stack.Band{Name: ColElevation, Raster: r}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	table, err := stack.Stack(bands)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: stack")
	}

	log.Info("pipeline: complete",
		zap.Int("rows", len(table.Rows)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &Result{Grid: grid, Table: table}, nil
}

// deriveGrid builds the analysis grid from the boundary extent.
func deriveGrid(params Params, boundary *vector.Layer) (raster.Grid, error) {
	if boundary.Empty() {
		return raster.Grid{}, eris.Wrap(boundary.CheckNotEmpty(), "pipeline: boundary")
	}
	if boundary.Proj4 != params.Proj4 {
		return raster.Grid{}, eris.Wrapf(raster.ErrCRSMismatch,
			"pipeline: boundary is %q, analysis CRS is %q", boundary.Proj4, params.Proj4)
	}
	minX, minY, maxX, maxY, err := boundary.Bounds()
	if err != nil {
		return raster.Grid{}, err
	}
	return raster.NewGrid(params.Proj4, minX, minY, maxX, maxY, params.CellSize), nil
}

// coastDistance rasterizes the coastline, runs the distance transform,
// and converts meters to kilometers.
func coastDistance(params Params, coast, boundary *vector.Layer, grid raster.Grid) (*raster.Raster, error) {
	presence, err := rasterize.Rasterize(coast, grid, rasterize.Options{
		Foreground: 1, Background: 0, NoData: params.NoData,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: rasterize coast")
	}

	dist, err := distance.Transform(presence, 1)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: coast distance")
	}
	km := dist.Apply(func(v float64) float64 { return v / 1000 })

	masked, err := mask.Polygon(km, boundary)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: mask coast distance")
	}
	zap.L().Debug("pipeline: coast distance done")
	return masked, nil
}

// exposure rasterizes a presence layer, smooths it with a Gaussian
// kernel, and standardizes the result to z-scores. Cells the smoothing
// could not reach count as zero exposure before standardization.
func exposure(ctx context.Context, params Params, layer, boundary *vector.Layer, grid raster.Grid, kp ExposureParams) (*raster.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: canceled")
	}

	presence, err := rasterize.Rasterize(layer, grid, rasterize.Options{
		Foreground: 1, Background: 0, NoData: params.NoData,
	})
	if err != nil {
		return nil, eris.Wrap(err, "rasterize")
	}

	kernel, err := focal.NewKernel(kp.Radius, kp.Sigma)
	if err != nil {
		return nil, eris.Wrap(err, "kernel")
	}
	smoothed, err := focal.Convolve(presence, kernel)
	if err != nil {
		return nil, eris.Wrap(err, "convolve")
	}
	filled := focal.FillNoData(smoothed, 0)

	scored, err := normalize.ZScore(filled)
	if err != nil {
		return nil, eris.Wrap(err, "zscore")
	}

	masked, err := mask.Polygon(scored, boundary)
	if err != nil {
		return nil, eris.Wrap(err, "mask")
	}
	zap.L().Debug("pipeline: exposure done",
		zap.String("layer", layer.Name),
		zap.Int("radius", kp.Radius),
	)
	return masked, nil
}

// elevation resamples the DEM onto the analysis grid.
func elevation(dem *raster.Raster, boundary *vector.Layer, grid raster.Grid) (*raster.Raster, error) {
	if dem == nil {
		return nil, eris.New("pipeline: missing dem")
	}
	resampled, err := resample.ToGrid(dem, grid)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: resample dem")
	}
	masked, err := mask.Polygon(resampled, boundary)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: mask dem")
	}
	zap.L().Debug("pipeline: elevation done")
	return masked, nil
}
