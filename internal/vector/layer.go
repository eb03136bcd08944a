// Package vector holds the read-only geometry layers the pipeline consumes:
// go-geom geometries tagged with an explicit CRS. Layers are produced by the
// acquisition collaborators (shapefiles, Overpass) and never reprojected
// implicitly by any stage.
package vector

import (
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// GeographicProj4 is the proj4 string for plain WGS84 longitude/latitude,
// the CRS Overpass and most source shapefiles deliver.
const GeographicProj4 = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"

// Layer is a named collection of geometries in a single CRS. Attribute
// fields beyond geometry are not carried; the pipeline has no use for them.
type Layer struct {
	Name       string
	Proj4      string
	Geometries []geom.T
}

// Empty reports whether the layer holds no geometries.
func (l *Layer) Empty() bool { return l == nil || len(l.Geometries) == 0 }

// CheckNotEmpty fails with ErrEmptyGeometryResult for an empty layer.
// An empty query result must surface, not silently become "zero everywhere".
func (l *Layer) CheckNotEmpty() error {
	if l.Empty() {
		name := "(nil)"
		if l != nil {
			name = l.Name
		}
		return eris.Wrapf(raster.ErrEmptyGeometryResult, "vector: layer %q", name)
	}
	return nil
}

// Bounds returns the extent of all geometries in the layer's CRS.
func (l *Layer) Bounds() (minX, minY, maxX, maxY float64, err error) {
	if err := l.CheckNotEmpty(); err != nil {
		return 0, 0, 0, 0, err
	}
	b := geom.NewBounds(geom.XY)
	for _, t := range l.Geometries {
		b.Extend(t)
	}
	return b.Min(0), b.Min(1), b.Max(0), b.Max(1), nil
}

// CheckCRS fails with ErrCRSMismatch when the layer's CRS differs from the
// grid's. Callers must reproject vectors before handing them to the pipeline.
func (l *Layer) CheckCRS(g raster.Grid) error {
	if l.Proj4 != g.Proj4 {
		return eris.Wrapf(raster.ErrCRSMismatch,
			"vector: layer %q is %q, grid is %q", l.Name, l.Proj4, g.Proj4)
	}
	return nil
}
