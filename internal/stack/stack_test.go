package stack

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/covariate-cli/internal/raster"
)

const (
	testProj = "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs"
	noData   = -9999.0
)

func band(t *testing.T, g raster.Grid, name string, rows [][]float64) Band {
	t.Helper()
	r, err := raster.NewFromRows(g, noData, rows)
	require.NoError(t, err)
	return Band{Name: name, Raster: r}
}

func TestStackDropsPartialRows(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 20, 20, 10)

	a := band(t, g, "CoastDistance", [][]float64{
		{1, 2},
		{noData, 4},
	})
	b := band(t, g, "Elevation", [][]float64{
		{10, noData},
		{30, 40},
	})

	table, err := Stack([]Band{a, b})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y", "CoastDistance", "Elevation"}, table.Columns)

	// Only cells (0,0) and (1,1) are valid in both bands.
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []float64{5, 15, 1, 10}, table.Rows[0])
	assert.Equal(t, []float64{15, 5, 4, 40}, table.Rows[1])
}

func TestStackAllValid(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 30, 10, 10)
	a := band(t, g, "A", [][]float64{{1, 2, 3}})
	b := band(t, g, "B", [][]float64{{4, 5, 6}})
	c := band(t, g, "C", [][]float64{{7, 8, 9}})

	table, err := Stack([]Band{a, b, c})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	for _, row := range table.Rows {
		assert.Len(t, row, 5)
	}
}

func TestStackGridMismatch(t *testing.T) {
	a := band(t, raster.NewGrid(testProj, 0, 0, 20, 10, 10), "A", [][]float64{{1, 2}})
	b := band(t, raster.NewGrid(testProj, 0, 0, 30, 10, 10), "B", [][]float64{{1, 2, 3}})

	_, err := Stack([]Band{a, b})
	require.Error(t, err)
	assert.True(t, eris.Is(err, raster.ErrGridMismatch))
}

func TestStackNoBands(t *testing.T) {
	_, err := Stack(nil)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 20, 10, 10)
	a := band(t, g, "CoastDistance", [][]float64{{1.5, noData}})
	b := band(t, g, "Elevation", [][]float64{{120, 240}})

	table, err := Stack([]Band{a, b})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(table, &buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2) // header + one valid row
	assert.Equal(t, []string{"X", "Y", "CoastDistance", "Elevation"}, records[0])
	assert.Equal(t, []string{"5", "5", "1.5", "120"}, records[1])
}

func TestWriteXLSX(t *testing.T) {
	g := raster.NewGrid(testProj, 0, 0, 20, 10, 10)
	a := band(t, g, "A", [][]float64{{1, 2}})

	table, err := Stack([]Band{a})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "features.xlsx")
	require.NoError(t, WriteXLSX(table, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, "features", f.Sheets[0].Name)
	require.Len(t, f.Sheets[0].Rows, 3)
	assert.Equal(t, "A", f.Sheets[0].Rows[0].Cells[2].String())
}
