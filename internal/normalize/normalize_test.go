package normalize

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/covariate-cli/internal/raster"
)

const (
	testProj = "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"
	noData   = -9999.0
)

func TestZScoreMeanZeroStdOne(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 4, 2, 1)
	r, err := raster.NewFromRows(g, noData, [][]float64{
		{1, 2, 3, 4},
		{10, 20, noData, 0},
	})
	require.NoError(t, err)

	z, err := ZScore(r)
	require.NoError(t, err)

	valid := z.ValidValues()
	require.Len(t, valid, 7)

	mean, std := stat.MeanStdDev(valid, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)

	// NoData stays NoData.
	assert.False(t, z.Valid(1, 2))
}

func TestZScorePreservesOrder(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 3, 1, 1)
	r, err := raster.NewFromRows(g, noData, [][]float64{{5, 1, 9}})
	require.NoError(t, err)

	z, err := ZScore(r)
	require.NoError(t, err)

	assert.Less(t, z.Value(0, 1), z.Value(0, 0))
	assert.Less(t, z.Value(0, 0), z.Value(0, 2))
}

func TestZScoreDegenerate(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 3, 3, 1)

	constant := raster.New(g, noData, 7)
	_, err := ZScore(constant)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrDegenerateInput))

	empty := raster.New(g, noData, noData)
	_, err = ZScore(empty)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrDegenerateInput))

	b := raster.NewBuilder(g, noData, noData)
	b.Set(0, 0, 3)
	single := b.Raster()
	_, err = ZScore(single)
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrDegenerateInput))
}
