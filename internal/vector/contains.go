package vector

import (
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// PolygonContains reports whether the point (x, y) lies inside the polygon:
// inside the exterior ring and outside every hole.
func PolygonContains(p *geom.Polygon, x, y float64) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	pt := geom.Coord{x, y}
	if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// MultiPolygonContains reports whether the point lies inside any member
// polygon.
func MultiPolygonContains(mp *geom.MultiPolygon, x, y float64) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		if PolygonContains(mp.Polygon(i), x, y) {
			return true
		}
	}
	return false
}

// GeometryContains reports whether the point lies inside a polygonal
// geometry. Non-areal geometries contain nothing.
func GeometryContains(g geom.T, x, y float64) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return PolygonContains(t, x, y)
	case *geom.MultiPolygon:
		return MultiPolygonContains(t, x, y)
	default:
		return false
	}
}
