package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datamend/domain/table"
	"datamend/internal"
	"datamend/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Writer serializes a Table to a supported tabular format chosen by the
// target file extension.
type Writer struct {
	log *internal.Logger
}

// NewWriter creates a table writer.
func NewWriter(logger *internal.Logger) *Writer {
	return &Writer{log: logger}
}

// DerivedPath inserts a "_cleaned" suffix before the extension of the
// source path.
func DerivedPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+"_cleaned"+ext)
}

// Write serializes the table to the given path and returns the resolved
// path. Missing cells serialize as the format's native null: an empty
// cell for CSV and spreadsheets, null for JSON.
func (w *Writer) Write(tbl *table.Table, path string) (string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	w.log.Debug("[Writer] writing %s file: %s", format, path)

	switch format {
	case FormatCSV:
		err = w.writeCSV(tbl, path)
	case FormatXLSX:
		err = w.writeXLSX(tbl, path)
	case FormatJSON:
		err = w.writeJSON(tbl, path)
	}
	if err != nil {
		return "", err
	}

	w.log.Info("[Writer] wrote %s (%d columns, %d rows)", filepath.Base(path), len(tbl.Columns), tbl.RowCount())
	return path, nil
}

func (w *Writer) writeCSV(tbl *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.SaveError("failed to create csv file", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(tbl.ColumnNames()); err != nil {
		return errors.SaveError("failed to write csv header", err)
	}
	for r := 0; r < tbl.RowCount(); r++ {
		record := make([]string, len(tbl.Columns))
		for i := range tbl.Columns {
			record[i] = tbl.Columns[i].Values[r].Render(tbl.Columns[i].DType)
		}
		if err := cw.Write(record); err != nil {
			return errors.SaveError("failed to write csv row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.SaveError("failed to flush csv file", err)
	}
	return nil
}

func (w *Writer) writeXLSX(tbl *table.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(tbl.Columns))
	for i := range tbl.Columns {
		header[i] = tbl.Columns[i].Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.SaveError("failed to write spreadsheet header", err)
	}

	for r := 0; r < tbl.RowCount(); r++ {
		row := make([]interface{}, len(tbl.Columns))
		for i := range tbl.Columns {
			v := tbl.Columns[i].Values[r]
			switch {
			case v.Missing:
				row[i] = nil
			case tbl.Columns[i].DType == table.DTypeNumeric:
				row[i] = v.Num
			default:
				row[i] = v.Str
			}
		}
		cell := fmt.Sprintf("A%d", r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.SaveError("failed to write spreadsheet row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.SaveError("failed to save spreadsheet", err)
	}
	return nil
}

// writeJSON emits an array of row objects with keys in table column
// order, which encoding/json's map marshaling would not preserve.
func (w *Writer) writeJSON(tbl *table.Table, path string) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for r := 0; r < tbl.RowCount(); r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i := range tbl.Columns {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(tbl.Columns[i].Name)
			if err != nil {
				return errors.SaveError("failed to encode json key", err)
			}
			buf.Write(key)
			buf.WriteByte(':')

			v := tbl.Columns[i].Values[r]
			switch {
			case v.Missing:
				buf.WriteString("null")
			case tbl.Columns[i].DType == table.DTypeNumeric:
				num, err := json.Marshal(v.Num)
				if err != nil {
					return errors.SaveError(fmt.Sprintf("failed to encode value in column %q", tbl.Columns[i].Name), err)
				}
				buf.Write(num)
			default:
				str, err := json.Marshal(v.Str)
				if err != nil {
					return errors.SaveError(fmt.Sprintf("failed to encode value in column %q", tbl.Columns[i].Name), err)
				}
				buf.Write(str)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.SaveError("failed to write json file", err)
	}
	return nil
}
