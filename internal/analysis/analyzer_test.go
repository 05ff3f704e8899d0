package analysis

import (
	"math"
	"reflect"
	"testing"

	"datamend/domain/table"
)

func numericColumn(name string, values ...table.Value) table.Column {
	return table.Column{Name: name, DType: table.DTypeNumeric, Values: values}
}

func categoricalColumn(name string, values ...table.Value) table.Column {
	return table.Column{Name: name, DType: table.DTypeCategorical, Values: values}
}

func TestMissingReportIsPureAndIdempotent(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("a", table.Num(1), table.Missing(), table.Num(3)),
		categoricalColumn("b", table.Str("x"), table.Str("y"), table.Str("z")),
	}}

	first := MissingReport(tbl)
	second := MissingReport(tbl)

	want := map[string]int{"a": 1, "b": 0}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("unexpected report: %v", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("report not idempotent: %v vs %v", first, second)
	}
	if !tbl.Columns[0].Values[1].Missing {
		t.Error("analysis mutated the table")
	}
}

func TestColumnStatsNumeric(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("v", table.Num(1), table.Missing(), table.Num(3), table.Num(2)),
	}}

	cs := ColumnStats(tbl)["v"]
	if cs.DType != table.DTypeNumeric || cs.Missing != 1 || cs.Unique != 3 {
		t.Fatalf("unexpected stats: %+v", cs)
	}
	if cs.Numeric == nil {
		t.Fatal("expected numeric summary")
	}
	if cs.Numeric.Mean != 2 || cs.Numeric.Median != 2 || cs.Numeric.Min != 1 || cs.Numeric.Max != 3 {
		t.Errorf("unexpected summary: %+v", cs.Numeric)
	}
	// Sample standard deviation of {1, 3, 2}.
	if cs.Numeric.StdDev == nil {
		t.Fatal("expected a standard deviation")
	}
	if math.Abs(*cs.Numeric.StdDev-1) > 1e-12 {
		t.Errorf("expected std 1, got %v", *cs.Numeric.StdDev)
	}
}

func TestColumnStatsSingleObservationHasNoStdDev(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("v", table.Num(5), table.Missing(), table.Missing()),
	}}
	cs := ColumnStats(tbl)["v"]
	if cs.Numeric == nil {
		t.Fatal("expected a numeric summary for a single observation")
	}
	if cs.Numeric.Mean != 5 || cs.Numeric.Median != 5 || cs.Numeric.Min != 5 || cs.Numeric.Max != 5 {
		t.Errorf("unexpected summary: %+v", cs.Numeric)
	}
	if cs.Numeric.StdDev != nil {
		t.Errorf("std of one observation must be undefined, got %v", *cs.Numeric.StdDev)
	}
}

func TestColumnStatsAllMissingNumeric(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("v", table.Missing(), table.Missing()),
	}}
	cs := ColumnStats(tbl)["v"]
	if cs.Numeric != nil {
		t.Errorf("expected undefined summary for all-missing column, got %+v", cs.Numeric)
	}
	if cs.Missing != 2 || cs.Unique != 0 {
		t.Errorf("unexpected counts: %+v", cs)
	}
}

func TestColumnStatsModeFirstEncounteredTieBreak(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		categoricalColumn("c",
			table.Str("b"), table.Str("a"), table.Missing(), table.Str("a"), table.Str("b")),
	}}
	cs := ColumnStats(tbl)["c"]
	if cs.Mode != "b" {
		t.Errorf("tie must resolve to first-encountered value, got %q", cs.Mode)
	}
	if cs.Unique != 2 {
		t.Errorf("missing values must not count as unique, got %d", cs.Unique)
	}
}

func TestKnnRecommendationNoNumericColumns(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		categoricalColumn("c", table.Str("x"), table.Missing()),
	}}
	rec := KnnRecommendation(tbl)
	if rec.Recommended {
		t.Error("expected not recommended")
	}
	if rec.Reason != "no numeric columns found" {
		t.Errorf("unexpected reason: %q", rec.Reason)
	}
}

func TestKnnRecommendationNoMissingNumeric(t *testing.T) {
	tbl := &table.Table{Columns: []table.Column{
		numericColumn("v", table.Num(1), table.Num(2)),
		categoricalColumn("c", table.Missing(), table.Str("x")),
	}}
	rec := KnnRecommendation(tbl)
	if rec.Recommended {
		t.Error("missing categorical cells must not trigger a recommendation")
	}
	if rec.Reason != "no missing values in numeric columns" {
		t.Errorf("unexpected reason: %q", rec.Reason)
	}
}

func TestKnnRecommendationNeighborHeuristic(t *testing.T) {
	build := func(rows int) *table.Table {
		values := make([]table.Value, rows)
		for i := range values {
			values[i] = table.Num(float64(i))
		}
		values[0] = table.Missing()
		return &table.Table{Columns: []table.Column{numericColumn("v", values...)}}
	}

	// clamp(round(sqrt(100)), 3, 10) == 10
	rec := KnnRecommendation(build(100))
	if !rec.Recommended || rec.Neighbors != 10 {
		t.Errorf("100 rows: expected 10 neighbors, got %+v", rec)
	}
	if rec.MissingStats["v"] != 1 {
		t.Errorf("expected missing stats restricted to numeric columns: %v", rec.MissingStats)
	}

	// sqrt(4) == 2, clamped up to 3.
	rec = KnnRecommendation(build(4))
	if !rec.Recommended || rec.Neighbors != 3 {
		t.Errorf("4 rows: expected 3 neighbors, got %+v", rec)
	}

	// round(sqrt(25)) == 5, inside the clamp.
	rec = KnnRecommendation(build(25))
	if !rec.Recommended || rec.Neighbors != 5 {
		t.Errorf("25 rows: expected 5 neighbors, got %+v", rec)
	}
}
