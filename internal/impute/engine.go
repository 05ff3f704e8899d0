package impute

import (
	"datamend/domain/table"
	"datamend/internal"
	"datamend/internal/errors"

	"github.com/montanaflynn/stats"
)

// Engine applies an imputation method to a table. Every clean works on a
// deep copy; the source table is never mutated.
type Engine struct {
	log *internal.Logger
}

// NewEngine creates an imputation engine.
func NewEngine(logger *internal.Logger) *Engine {
	return &Engine{log: logger}
}

// Clean produces a cleaned copy of src. A nil or empty column selection
// means all columns; selected columns absent from the table are skipped.
// Per-column failures skip that column rather than aborting the call.
func (e *Engine) Clean(src *table.Table, method Method, columns []string, params Params) (*table.Table, error) {
	if src == nil {
		return nil, errors.NoDataLoaded()
	}
	params = params.withDefaults()
	out := src.Clone()

	switch method {
	case MethodKNN:
		e.knnImpute(out, params.Neighbors)
	case MethodIterative:
		e.iterativeImpute(out, columns, params)
	case MethodMean, MethodMedian, MethodMode, MethodFFill, MethodBFill, MethodDrop:
		targets := columns
		if len(targets) == 0 {
			targets = out.ColumnNames()
		}
		for _, name := range targets {
			col, ok := out.Column(name)
			if !ok {
				continue
			}
			e.cleanColumn(out, col, method, params)
		}
	default:
		return nil, errors.InvalidMethod(method.String())
	}

	e.log.Info("[Impute] applied %s (%d columns, %d rows remain)", method, len(out.Columns), out.RowCount())
	return out, nil
}

func (e *Engine) cleanColumn(tbl *table.Table, col *table.Column, method Method, params Params) {
	switch method {
	case MethodMean:
		if col.DType != table.DTypeNumeric {
			return
		}
		if fill, err := stats.Mean(col.Floats()); err == nil {
			fillMissing(col, table.Num(fill))
		}
	case MethodMedian:
		if col.DType != table.DTypeNumeric {
			return
		}
		if fill, err := stats.Median(col.Floats()); err == nil {
			fillMissing(col, table.Num(fill))
		}
	case MethodMode:
		if fill, ok := modeValue(col); ok {
			fillMissing(col, fill)
		}
	case MethodFFill:
		forwardFill(col)
	case MethodBFill:
		backwardFill(col)
	case MethodDrop:
		e.dropMissing(tbl, col, *params.Threshold)
	}
}

func fillMissing(col *table.Column, fill table.Value) {
	for i := range col.Values {
		if col.Values[i].Missing {
			col.Values[i] = fill
		}
	}
}

// modeValue finds the most frequent non-missing cell, breaking ties in
// first-encountered order.
func modeValue(col *table.Column) (table.Value, bool) {
	counts := make(map[string]int)
	first := make(map[string]table.Value)
	var order []string
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		key := v.Render(col.DType)
		if counts[key] == 0 {
			order = append(order, key)
			first[key] = v
		}
		counts[key]++
	}
	if len(order) == 0 {
		return table.Value{}, false
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return first[best], true
}

// forwardFill carries the nearest preceding observed value into missing
// cells; a leading missing run stays missing.
func forwardFill(col *table.Column) {
	last := table.Missing()
	for i := range col.Values {
		if col.Values[i].Missing {
			if !last.Missing {
				col.Values[i] = last
			}
		} else {
			last = col.Values[i]
		}
	}
}

// backwardFill mirrors forwardFill; a trailing missing run stays missing.
func backwardFill(col *table.Column) {
	next := table.Missing()
	for i := len(col.Values) - 1; i >= 0; i-- {
		if col.Values[i].Missing {
			if !next.Missing {
				col.Values[i] = next
			}
		} else {
			next = col.Values[i]
		}
	}
}

// dropMissing removes the whole column when its missing fraction exceeds
// the threshold, otherwise removes the rows missing in this column. Both
// shrink the table seen by later columns in the same call.
func (e *Engine) dropMissing(tbl *table.Table, col *table.Column, threshold float64) {
	rows := len(col.Values)
	if rows == 0 {
		return
	}
	missing := col.MissingCount()
	if missing == 0 {
		return
	}

	fraction := float64(missing) / float64(rows)
	if fraction > threshold {
		e.log.Debug("[Impute] dropping column %q (%.0f%% missing)", col.Name, fraction*100)
		tbl.DropColumn(col.Name)
		return
	}

	present := make([]bool, rows)
	for i, v := range col.Values {
		present[i] = !v.Missing
	}
	tbl.FilterRows(func(row int) bool { return present[row] })
}
