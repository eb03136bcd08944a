package vector

import (
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/covariate-cli/internal/raster"
	"github.com/sells-group/covariate-cli/pkg/overpass"
)

// OSMOptions configures the Overpass-to-layer conversion.
type OSMOptions struct {
	Name string
	// ClosedWaysAsPolygons burns closed ways as areas instead of outlines.
	// Building footprints want this; road loops do not.
	ClosedWaysAsPolygons bool
}

// FromOverpass converts an Overpass query result into a geographic-CRS
// layer: nodes become points, ways become line strings or polygons. A
// result with no usable geometry fails with ErrEmptyGeometryResult so
// callers never mistake a failed query for an empty landscape.
func FromOverpass(resp *overpass.Response, opts OSMOptions) (*Layer, error) {
	layer := &Layer{Name: opts.Name, Proj4: GeographicProj4}

	for _, el := range resp.Elements {
		switch el.Type {
		case "node":
			layer.Geometries = append(layer.Geometries,
				geom.NewPointFlat(geom.XY, []float64{el.Lon, el.Lat}))

		case "way":
			if len(el.Geometry) < 2 {
				continue
			}
			flat := make([]float64, 0, len(el.Geometry)*2)
			for _, p := range el.Geometry {
				flat = append(flat, p.Lon, p.Lat)
			}
			if opts.ClosedWaysAsPolygons && isClosed(flat) && len(el.Geometry) >= 4 {
				poly := geom.NewPolygon(geom.XY)
				if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
					continue
				}
				layer.Geometries = append(layer.Geometries, poly)
				continue
			}
			layer.Geometries = append(layer.Geometries, geom.NewLineStringFlat(geom.XY, flat))
		}
	}

	if layer.Empty() {
		return nil, eris.Wrapf(raster.ErrEmptyGeometryResult, "vector: overpass layer %q", opts.Name)
	}
	return layer, nil
}

func isClosed(flat []float64) bool {
	n := len(flat)
	return n >= 4 && flat[0] == flat[n-2] && flat[1] == flat[n-1]
}
