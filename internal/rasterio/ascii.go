// Package rasterio reads and writes single-band grids as ESRI ASCII rasters
// with a JSON manifest carrying the metadata the format itself cannot hold
// (CRS above all).
package rasterio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/covariate-cli/internal/raster"
)

// defaultNoData is used when an ASCII grid omits the NODATA_value header.
const defaultNoData = -9999.0

// ReadASCII parses an ESRI ASCII grid. The format carries no CRS, so the
// caller supplies the proj4 string (normally from the layer manifest).
func ReadASCII(path, proj4 string) (*raster.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterio: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r, err := readASCII(f, proj4)
	if err != nil {
		return nil, eris.Wrapf(err, "rasterio: parse %s", path)
	}
	return r, nil
}

func readASCII(src io.Reader, proj4 string) (*raster.Raster, error) {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	header := map[string]float64{}
	var values []float64

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		// Header lines are "key value" pairs with a non-numeric key.
		if len(fields) == 2 && len(values) == 0 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, eris.Errorf("bad header line %q", sc.Text())
				}
				header[strings.ToLower(fields[0])] = v
				continue
			}
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, eris.Errorf("bad cell value %q", field)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan")
	}

	cols, ok := header["ncols"]
	if !ok {
		return nil, eris.New("missing ncols")
	}
	rows, ok := header["nrows"]
	if !ok {
		return nil, eris.New("missing nrows")
	}
	cell, ok := header["cellsize"]
	if !ok {
		return nil, eris.New("missing cellsize")
	}
	xll, ok := header["xllcorner"]
	if !ok {
		return nil, eris.New("missing xllcorner")
	}
	yll, ok := header["yllcorner"]
	if !ok {
		return nil, eris.New("missing yllcorner")
	}
	noData, ok := header["nodata_value"]
	if !ok {
		noData = defaultNoData
	}

	g := raster.Grid{
		Proj4: proj4,
		MinX:  xll,
		MinY:  yll,
		MaxX:  xll + cols*cell,
		MaxY:  yll + rows*cell,
		CellX: cell,
		CellY: cell,
		Rows:  int(rows),
		Cols:  int(cols),
	}
	out, err := raster.NewFromValues(g, noData, values)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WriteASCII serializes a raster as an ESRI ASCII grid. The format only
// supports square cells.
func WriteASCII(r *raster.Raster, path string) error {
	g := r.Grid
	if g.CellX != g.CellY {
		return eris.Errorf("rasterio: ascii grid needs square cells, have %gx%g", g.CellX, g.CellY)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "rasterio: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols %d\n", g.Cols)
	fmt.Fprintf(w, "nrows %d\n", g.Rows)
	fmt.Fprintf(w, "xllcorner %s\n", formatFloat(g.MinX))
	fmt.Fprintf(w, "yllcorner %s\n", formatFloat(g.MinY))
	fmt.Fprintf(w, "cellsize %s\n", formatFloat(g.CellX))
	fmt.Fprintf(w, "NODATA_value %s\n", formatFloat(r.NoData))

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if col > 0 {
				if err := w.WriteByte(' '); err != nil {
					return eris.Wrap(err, "rasterio: write")
				}
			}
			if _, err := w.WriteString(formatFloat(r.Value(row, col))); err != nil {
				return eris.Wrap(err, "rasterio: write")
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return eris.Wrap(err, "rasterio: write")
		}
	}

	if err := w.Flush(); err != nil {
		return eris.Wrapf(err, "rasterio: flush %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "rasterio: close %s", path)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
