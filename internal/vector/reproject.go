package vector

import (
	"github.com/rotisserie/eris"
	"github.com/terrascope/geometry"
	"github.com/terrascope/proj4go"
	geom "github.com/twpayne/go-geom"
)

// Reproject returns a copy of the layer with every coordinate transformed
// into the target CRS through a geographic pivot. A layer already in the
// target CRS is returned unchanged.
func Reproject(l *Layer, proj4 string) (*Layer, error) {
	if err := l.CheckNotEmpty(); err != nil {
		return nil, err
	}
	if l.Proj4 == proj4 {
		return l, nil
	}

	out := &Layer{Name: l.Name, Proj4: proj4, Geometries: make([]geom.T, len(l.Geometries))}
	for i, t := range l.Geometries {
		flat := append([]float64(nil), t.FlatCoords()...)

		pts := make([]geometry.Point, len(flat)/2)
		for j := range pts {
			pts[j] = geometry.Point{X: flat[2*j], Y: flat[2*j+1]}
		}
		if l.Proj4 != GeographicProj4 {
			proj4go.Inverse(l.Proj4, pts)
		}
		if proj4 != GeographicProj4 {
			proj4go.Forwards(proj4, pts)
		}
		for j, p := range pts {
			flat[2*j] = p.X
			flat[2*j+1] = p.Y
		}

		g, err := rebuildFlat(t, flat)
		if err != nil {
			return nil, err
		}
		out.Geometries[i] = g
	}
	return out, nil
}

func rebuildFlat(t geom.T, flat []float64) (geom.T, error) {
	switch g := t.(type) {
	case *geom.Point:
		return geom.NewPointFlat(geom.XY, flat), nil
	case *geom.LineString:
		return geom.NewLineStringFlat(geom.XY, flat), nil
	case *geom.MultiLineString:
		return geom.NewMultiLineStringFlat(geom.XY, flat, g.Ends()), nil
	case *geom.Polygon:
		return geom.NewPolygonFlat(geom.XY, flat, g.Ends()), nil
	case *geom.MultiPolygon:
		return geom.NewMultiPolygonFlat(geom.XY, flat, g.Endss()), nil
	default:
		return nil, eris.Errorf("vector: cannot reproject %T", t)
	}
}
