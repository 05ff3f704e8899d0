package table

import "testing"

func sampleTable() *Table {
	return &Table{Columns: []Column{
		{Name: "age", DType: DTypeNumeric, Values: []Value{Num(30), Missing(), Num(40)}},
		{Name: "city", DType: DTypeCategorical, Values: []Value{Str("oslo"), Str("rome"), Missing()}},
	}}
}

func TestCloneIsDeep(t *testing.T) {
	src := sampleTable()
	clone := src.Clone()

	clone.Columns[0].Values[0] = Num(99)
	clone.Columns[1].Values[0] = Missing()
	clone.DropColumn("city")

	if src.Columns[0].Values[0].Num != 30 {
		t.Errorf("mutating clone changed source numeric cell: %v", src.Columns[0].Values[0])
	}
	if src.Columns[1].Values[0].Str != "oslo" {
		t.Errorf("mutating clone changed source categorical cell: %v", src.Columns[1].Values[0])
	}
	if len(src.Columns) != 2 {
		t.Errorf("dropping a clone column changed source column count: %d", len(src.Columns))
	}
}

func TestNumericColumnsCacheInvalidation(t *testing.T) {
	tbl := sampleTable()
	numeric := tbl.NumericColumns()
	if len(numeric) != 1 || numeric[0] != "age" {
		t.Fatalf("expected [age], got %v", numeric)
	}

	tbl.DropColumn("age")
	if got := tbl.NumericColumns(); len(got) != 0 {
		t.Errorf("expected no numeric columns after drop, got %v", got)
	}
}

func TestFilterRows(t *testing.T) {
	tbl := sampleTable()
	tbl.FilterRows(func(row int) bool { return row != 1 })

	if tbl.RowCount() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.RowCount())
	}
	if tbl.Columns[0].Values[1].Num != 40 {
		t.Errorf("row order broken after filter: %v", tbl.Columns[0].Values)
	}
	if !tbl.Columns[1].Values[1].Missing {
		t.Errorf("expected city row 1 to stay missing")
	}
}

func TestRowsRendersMissingAsNil(t *testing.T) {
	rows := sampleTable().Rows(2)
	if len(rows) != 2 {
		t.Fatalf("expected 2 preview rows, got %d", len(rows))
	}
	if rows[0]["age"] != 30.0 {
		t.Errorf("expected age 30, got %v", rows[0]["age"])
	}
	if rows[1]["age"] != nil {
		t.Errorf("expected missing age to be nil, got %v", rows[1]["age"])
	}
	if rows[1]["city"] != "rome" {
		t.Errorf("expected city rome, got %v", rows[1]["city"])
	}
}

func TestRenderFormatsNumbers(t *testing.T) {
	if got := Num(2.5).Render(DTypeNumeric); got != "2.5" {
		t.Errorf("expected 2.5, got %q", got)
	}
	if got := Num(3).Render(DTypeNumeric); got != "3" {
		t.Errorf("expected 3, got %q", got)
	}
	if got := Missing().Render(DTypeNumeric); got != "" {
		t.Errorf("expected empty render for missing, got %q", got)
	}
}
