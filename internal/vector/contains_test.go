package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	geom "github.com/twpayne/go-geom"
)

// square returns a closed ring from (x0,y0) to (x1,y1).
func square(x0, y0, x1, y1 float64) []float64 {
	return []float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0}
}

func TestPolygonContains(t *testing.T) {
	poly := geom.NewPolygon(geom.XY)
	_ = poly.Push(geom.NewLinearRingFlat(geom.XY, square(0, 0, 10, 10)))

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 5, 5, true},
		{"near edge inside", 0.1, 0.1, true},
		{"outside west", -1, 5, false},
		{"outside north", 5, 11, false},
		{"far away", 100, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PolygonContains(poly, tt.x, tt.y))
		})
	}
}

func TestPolygonContainsHole(t *testing.T) {
	poly := geom.NewPolygon(geom.XY)
	_ = poly.Push(geom.NewLinearRingFlat(geom.XY, square(0, 0, 10, 10)))
	_ = poly.Push(geom.NewLinearRingFlat(geom.XY, square(4, 4, 6, 6)))

	assert.True(t, PolygonContains(poly, 2, 2))
	// Inside the hole is outside the polygon.
	assert.False(t, PolygonContains(poly, 5, 5))
}

func TestMultiPolygonContains(t *testing.T) {
	a := geom.NewPolygon(geom.XY)
	_ = a.Push(geom.NewLinearRingFlat(geom.XY, square(0, 0, 1, 1)))
	b := geom.NewPolygon(geom.XY)
	_ = b.Push(geom.NewLinearRingFlat(geom.XY, square(5, 5, 6, 6)))

	mp := geom.NewMultiPolygon(geom.XY)
	_ = mp.Push(a)
	_ = mp.Push(b)

	assert.True(t, MultiPolygonContains(mp, 0.5, 0.5))
	assert.True(t, MultiPolygonContains(mp, 5.5, 5.5))
	assert.False(t, MultiPolygonContains(mp, 3, 3))
}

func TestGeometryContainsNonAreal(t *testing.T) {
	pt := geom.NewPointFlat(geom.XY, []float64{1, 1})
	assert.False(t, GeometryContains(pt, 1, 1))

	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 10, 10})
	assert.False(t, GeometryContains(ls, 5, 5))
}
