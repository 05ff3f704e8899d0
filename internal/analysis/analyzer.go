package analysis

import (
	"math"

	"datamend/domain/table"

	"github.com/montanaflynn/stats"
)

// NumericSummary holds descriptive statistics for a numeric column,
// computed over its non-missing values. StdDev needs at least two
// observations and is omitted otherwise.
type NumericSummary struct {
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	StdDev *float64 `json:"std,omitempty"`
}

// ColumnStatistics describes a single column. Numeric is nil for
// categorical columns and for numeric columns whose values are all
// missing; Mode is set for categorical columns only.
type ColumnStatistics struct {
	DType   table.DType     `json:"dtype"`
	Missing int             `json:"missing"`
	Unique  int             `json:"unique"`
	Numeric *NumericSummary `json:"numeric,omitempty"`
	Mode    string          `json:"mode,omitempty"`
}

// Recommendation advises whether neighbor-based imputation is worth
// running and with what neighbor count.
type Recommendation struct {
	Recommended    bool           `json:"recommended"`
	Reason         string         `json:"reason,omitempty"`
	Neighbors      int            `json:"n_neighbors,omitempty"`
	MissingStats   map[string]int `json:"missing_stats,omitempty"`
	NumericColumns []string       `json:"numeric_columns,omitempty"`
}

const (
	minNeighbors = 3
	maxNeighbors = 10
)

// MissingReport counts missing cells per column. Read-only: the table is
// never modified.
func MissingReport(tbl *table.Table) map[string]int {
	report := make(map[string]int, len(tbl.Columns))
	for i := range tbl.Columns {
		report[tbl.Columns[i].Name] = tbl.Columns[i].MissingCount()
	}
	return report
}

// ColumnStats computes per-column statistics for the whole table.
func ColumnStats(tbl *table.Table) map[string]ColumnStatistics {
	result := make(map[string]ColumnStatistics, len(tbl.Columns))
	for i := range tbl.Columns {
		col := &tbl.Columns[i]
		cs := ColumnStatistics{
			DType:   col.DType,
			Missing: col.MissingCount(),
			Unique:  uniqueCount(col),
		}
		if col.DType == table.DTypeNumeric {
			cs.Numeric = numericSummary(col)
		} else {
			cs.Mode, _ = Mode(col)
		}
		result[col.Name] = cs
	}
	return result
}

// KnnRecommendation applies a sample-size heuristic for the neighbor
// count: clamp(round(sqrt(rows)), 3, 10). Not recommended when the table
// has no numeric columns or its numeric columns are complete.
func KnnRecommendation(tbl *table.Table) Recommendation {
	numeric := tbl.NumericColumns()
	if len(numeric) == 0 {
		return Recommendation{Reason: "no numeric columns found"}
	}

	missing := make(map[string]int, len(numeric))
	total := 0
	for _, name := range numeric {
		col, _ := tbl.Column(name)
		count := col.MissingCount()
		missing[name] = count
		total += count
	}
	if total == 0 {
		return Recommendation{Reason: "no missing values in numeric columns"}
	}

	neighbors := int(math.Round(math.Sqrt(float64(tbl.RowCount()))))
	if neighbors < minNeighbors {
		neighbors = minNeighbors
	}
	if neighbors > maxNeighbors {
		neighbors = maxNeighbors
	}

	return Recommendation{
		Recommended:    true,
		Neighbors:      neighbors,
		MissingStats:   missing,
		NumericColumns: numeric,
	}
}

// Mode returns the most frequent non-missing value of a column, breaking
// ties in first-encountered order. The second result is false when every
// cell is missing.
func Mode(col *table.Column) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, v := range col.Values {
		if v.Missing {
			continue
		}
		key := v.Render(col.DType)
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	if len(order) == 0 {
		return "", false
	}

	best := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return best, true
}

func uniqueCount(col *table.Column) int {
	seen := make(map[string]bool)
	for _, v := range col.Values {
		if !v.Missing {
			seen[v.Render(col.DType)] = true
		}
	}
	return len(seen)
}

func numericSummary(col *table.Column) *NumericSummary {
	data := col.Floats()
	if len(data) == 0 {
		return nil
	}

	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	minVal, _ := stats.Min(data)
	maxVal, _ := stats.Max(data)

	summary := &NumericSummary{
		Mean:   mean,
		Median: median,
		Min:    minVal,
		Max:    maxVal,
	}
	if len(data) > 1 {
		if stdDev, err := stats.StandardDeviationSample(data); err == nil {
			summary.StdDev = &stdDev
		}
	}
	return summary
}
