package tabular

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"datamend/domain/table"
	"datamend/internal"
	"datamend/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Format identifies a supported tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat maps a file extension to its Format. Unrecognized
// extensions are rejected with UNSUPPORTED_FORMAT.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.UnsupportedFormat(filepath.Ext(path))
	}
}

// Reader loads a tabular file of a detected format into a table.Table.
type Reader struct {
	filePath string
	format   Format
	log      *internal.Logger
}

// NewReader creates a reader for the given path, detecting the format
// from the file extension.
func NewReader(filePath string, logger *internal.Logger) (*Reader, error) {
	format, err := DetectFormat(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{filePath: filePath, format: format, log: logger}, nil
}

// Format returns the detected file format.
func (r *Reader) Format() Format { return r.format }

// Read parses the file into a Table. The returned table has its numeric
// column list already computed.
func (r *Reader) Read() (*table.Table, error) {
	r.log.Debug("[Reader] reading %s file: %s", r.format, r.filePath)

	var (
		tbl *table.Table
		err error
	)
	switch r.format {
	case FormatCSV:
		tbl, err = r.readCSV()
	case FormatXLSX:
		tbl, err = r.readXLSX()
	case FormatJSON:
		tbl, err = r.readJSON()
	}
	if err != nil {
		return nil, err
	}

	numeric := tbl.NumericColumns()
	r.log.Info("[Reader] loaded %s (%d columns, %d rows, %d numeric)",
		filepath.Base(r.filePath), len(tbl.Columns), tbl.RowCount(), len(numeric))
	return tbl, nil
}

func (r *Reader) readCSV() (*table.Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.ParseError("csv", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.ParseError("csv", err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseError("csv", fmt.Errorf("file has no header row"))
	}
	return buildTable(rows[0], rows[1:]), nil
}

func (r *Reader) readXLSX() (*table.Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.ParseError("spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("spreadsheet", fmt.Errorf("workbook has no sheets"))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.ParseError("spreadsheet", err)
	}
	if len(rows) == 0 {
		return nil, errors.ParseError("spreadsheet", fmt.Errorf("sheet %q has no header row", sheets[0]))
	}
	return buildTable(rows[0], rows[1:]), nil
}

// readJSON parses an array of row objects, preserving the key order in
// which columns are first encountered.
func (r *Reader) readJSON() (*table.Table, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, errors.ParseError("json", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.ParseError("json", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errors.ParseError("json", fmt.Errorf("expected a top-level array of row objects"))
	}

	var headers []string
	seen := make(map[string]bool)
	var records []map[string]string

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.ParseError("json", err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '{' {
			return nil, errors.ParseError("json", fmt.Errorf("expected a row object"))
		}

		record := make(map[string]string)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, errors.ParseError("json", err)
			}
			key := keyTok.(string)
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}

			var raw interface{}
			if err := dec.Decode(&raw); err != nil {
				return nil, errors.ParseError("json", err)
			}
			cell, err := jsonCell(raw)
			if err != nil {
				return nil, errors.ParseError("json", fmt.Errorf("column %q: %w", key, err))
			}
			record[key] = cell
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, errors.ParseError("json", err)
		}
		records = append(records, record)
	}
	if _, err := dec.Token(); err != nil { // closing bracket
		return nil, errors.ParseError("json", err)
	}

	rows := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(headers))
		for j, header := range headers {
			row[j] = record[header] // absent keys stay empty, i.e. missing
		}
		rows[i] = row
	}
	return buildTable(headers, rows), nil
}

func jsonCell(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("unsupported nested value %T", raw)
	}
}

// buildTable converts raw string rows into a typed Table. A column is
// numeric when every non-empty cell parses as a float and at least one
// non-empty cell exists; empty cells are the missing marker.
func buildTable(headerRow []string, rows [][]string) *table.Table {
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	tbl := &table.Table{Columns: make([]table.Column, len(headers))}
	for j, header := range headers {
		cells := make([]string, len(rows))
		numericCount := 0
		presentCount := 0
		for i, row := range rows {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			cells[i] = cell
			if cell == "" {
				continue
			}
			presentCount++
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				numericCount++
			}
		}

		dtype := table.DTypeCategorical
		if presentCount > 0 && numericCount == presentCount {
			dtype = table.DTypeNumeric
		}

		values := make([]table.Value, len(cells))
		for i, cell := range cells {
			switch {
			case cell == "":
				values[i] = table.Missing()
			case dtype == table.DTypeNumeric:
				num, _ := strconv.ParseFloat(cell, 64)
				values[i] = table.Num(num)
			default:
				values[i] = table.Str(cell)
			}
		}
		tbl.Columns[j] = table.Column{Name: header, DType: dtype, Values: values}
	}
	return tbl
}
