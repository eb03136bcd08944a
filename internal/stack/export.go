package stack

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WriteCSV serializes the table with a header row.
func WriteCSV(t *FeatureTable, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns); err != nil {
		return eris.Wrap(err, "stack: write csv header")
	}

	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "stack: write csv row %d", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "stack: flush csv")
	}
	return nil
}

// WriteXLSX serializes the table to a single-sheet workbook.
func WriteXLSX(t *FeatureTable, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("features")
	if err != nil {
		return eris.Wrap(err, "stack: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}

	for _, row := range t.Rows {
		xr := sheet.AddRow()
		for _, v := range row {
			xr.AddCell().SetFloat(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "stack: save xlsx %s", path)
	}
	return nil
}
