// Package contactfile reads and writes contact and company tables as CSV or
// XLSX files.
package contactfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Format is a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Contacts"

// notAvailable is written in place of empty values.
const notAvailable = "N/A"

// ResolveFormat returns the explicit format when set, otherwise infers it
// from the path extension. Unknown extensions default to CSV.
func ResolveFormat(path, explicit string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "":
	default:
		return "", eris.Errorf("contactfile: unknown format %q", explicit)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX, nil
	}
	return FormatCSV, nil
}

// readTable returns every row of the file, header first.
func readTable(path string) ([][]string, error) {
	format, err := ResolveFormat(path, "")
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return readXLSX(path)
	}
	return readCSV(path)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "contactfile: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "contactfile: read csv %s", path)
	}
	return records, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "contactfile: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, nil
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// writeTable writes header and rows in the given format.
func writeTable(path string, format Format, header []string, rows [][]string) error {
	if format == FormatXLSX {
		return writeXLSX(path, header, rows)
	}
	return writeCSV(path, header, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "contactfile: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "contactfile: write header")
	}
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrap(err, "contactfile: write rows")
	}
	return eris.Wrap(w.Error(), "contactfile: flush csv")
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "contactfile: add sheet")
	}
	for _, values := range append([][]string{header}, rows...) {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
	return eris.Wrapf(f.Save(path), "contactfile: save xlsx %s", path)
}

// headerIndex maps trimmed column names to their position. A leading UTF-8
// BOM on the first column is dropped.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}
