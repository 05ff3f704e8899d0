package table

import "strconv"

// DType labels a column's declared value type.
type DType string

const (
	DTypeNumeric     DType = "numeric"
	DTypeCategorical DType = "categorical"
)

// Value is a single cell: either a concrete value or the missing marker.
// Numeric columns carry Num, categorical columns carry Str.
type Value struct {
	Num     float64
	Str     string
	Missing bool
}

// Num returns a numeric cell value.
func Num(v float64) Value { return Value{Num: v} }

// Str returns a categorical cell value.
func Str(s string) Value { return Value{Str: s} }

// Missing returns the missing marker.
func Missing() Value { return Value{Missing: true} }

// Render formats the cell for display or serialization. Missing cells
// render as the empty string.
func (v Value) Render(dtype DType) string {
	if v.Missing {
		return ""
	}
	if dtype == DTypeNumeric {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Str
}

// Column is a named, typed, ordered sequence of cells.
type Column struct {
	Name   string
	DType  DType
	Values []Value
}

// MissingCount counts cells holding the missing marker.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// Table is an ordered sequence of named columns with a uniform row count.
type Table struct {
	Columns []Column

	numericNames []string
}

// RowCount returns the number of rows. Columns are kept uniform, so the
// first column is authoritative.
func (t *Table) RowCount() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Column finds a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// NumericColumns returns the names of numeric columns in table order.
// The list is cached on first use; DropColumn invalidates it.
func (t *Table) NumericColumns() []string {
	if t.numericNames == nil {
		names := make([]string, 0, len(t.Columns))
		for i := range t.Columns {
			if t.Columns[i].DType == DTypeNumeric {
				names = append(names, t.Columns[i].Name)
			}
		}
		t.numericNames = names
	}
	return t.numericNames
}

// DropColumn removes a column by name. Unknown names are ignored.
func (t *Table) DropColumn(name string) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			t.Columns = append(t.Columns[:i], t.Columns[i+1:]...)
			t.numericNames = nil
			return
		}
	}
}

// FilterRows keeps only the rows for which keep returns true, across every
// column, preserving row order.
func (t *Table) FilterRows(keep func(row int) bool) {
	rows := t.RowCount()
	kept := make([]int, 0, rows)
	for r := 0; r < rows; r++ {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == rows {
		return
	}
	for i := range t.Columns {
		vals := make([]Value, len(kept))
		for j, r := range kept {
			vals[j] = t.Columns[i].Values[r]
		}
		t.Columns[i].Values = vals
	}
}

// Clone returns a deep, independent copy. Mutating the clone never affects
// the source.
func (t *Table) Clone() *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i := range t.Columns {
		vals := make([]Value, len(t.Columns[i].Values))
		copy(vals, t.Columns[i].Values)
		out.Columns[i] = Column{
			Name:   t.Columns[i].Name,
			DType:  t.Columns[i].DType,
			Values: vals,
		}
	}
	return out
}

// Rows materializes the table as row maps, with nil for missing cells.
// Numeric cells come out as float64, categorical as string.
func (t *Table) Rows(limit int) []map[string]interface{} {
	n := t.RowCount()
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]map[string]interface{}, n)
	for r := 0; r < n; r++ {
		row := make(map[string]interface{}, len(t.Columns))
		for i := range t.Columns {
			v := t.Columns[i].Values[r]
			switch {
			case v.Missing:
				row[t.Columns[i].Name] = nil
			case t.Columns[i].DType == DTypeNumeric:
				row[t.Columns[i].Name] = v.Num
			default:
				row[t.Columns[i].Name] = v.Str
			}
		}
		out[r] = row
	}
	return out
}
