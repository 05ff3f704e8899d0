package impute

import (
	"math"
	"sort"

	"datamend/domain/table"
)

// knnImpute fills missing numeric cells from the k most similar complete
// rows, measured by a missingness-aware euclidean distance over all
// numeric columns jointly. Tables without numeric columns pass through
// untouched, as do non-numeric columns.
func (e *Engine) knnImpute(tbl *table.Table, k int) {
	numeric := tbl.NumericColumns()
	if len(numeric) == 0 {
		return
	}

	rows := tbl.RowCount()
	features := len(numeric)
	matrix := make([][]float64, rows)
	for r := range matrix {
		matrix[r] = make([]float64, features)
	}
	cols := make([]*table.Column, features)
	for j, name := range numeric {
		cols[j], _ = tbl.Column(name)
		for r := 0; r < rows; r++ {
			if cols[j].Values[r].Missing {
				matrix[r][j] = math.NaN()
			} else {
				matrix[r][j] = cols[j].Values[r].Num
			}
		}
	}

	colMeans := make([]float64, features)
	colHasMean := make([]bool, features)
	for j := range numeric {
		sum, count := 0.0, 0
		for r := 0; r < rows; r++ {
			if !math.IsNaN(matrix[r][j]) {
				sum += matrix[r][j]
				count++
			}
		}
		if count > 0 {
			colMeans[j] = sum / float64(count)
			colHasMean[j] = true
		}
	}

	// Estimates are computed against the original matrix before any cell
	// is written back, so earlier fills never act as donors.
	type fill struct {
		row, col int
		value    float64
	}
	var fills []fill
	for r := 0; r < rows; r++ {
		for j := range numeric {
			if !math.IsNaN(matrix[r][j]) {
				continue
			}
			if estimate, ok := e.knnEstimate(matrix, r, j, k); ok {
				fills = append(fills, fill{r, j, estimate})
			} else if colHasMean[j] {
				fills = append(fills, fill{r, j, colMeans[j]})
			}
		}
	}

	for _, f := range fills {
		cols[f.col].Values[f.row] = table.Num(f.value)
	}
}

type neighbor struct {
	row      int
	distance float64
}

// knnEstimate averages column col over the k nearest donor rows. Donors
// must hold a value in col and share at least one observed coordinate
// with the target row; distances are scaled up for coordinates only one
// side observed, matching the usual nan-euclidean convention.
func (e *Engine) knnEstimate(matrix [][]float64, row, col, k int) (float64, bool) {
	features := len(matrix[row])
	var donors []neighbor
	for r := range matrix {
		if r == row || math.IsNaN(matrix[r][col]) {
			continue
		}
		sum, shared := 0.0, 0
		for j := 0; j < features; j++ {
			if math.IsNaN(matrix[row][j]) || math.IsNaN(matrix[r][j]) {
				continue
			}
			diff := matrix[row][j] - matrix[r][j]
			sum += diff * diff
			shared++
		}
		if shared == 0 {
			continue
		}
		distance := math.Sqrt(sum * float64(features) / float64(shared))
		donors = append(donors, neighbor{row: r, distance: distance})
	}
	if len(donors) == 0 {
		return 0, false
	}

	sort.Slice(donors, func(a, b int) bool {
		if donors[a].distance != donors[b].distance {
			return donors[a].distance < donors[b].distance
		}
		return donors[a].row < donors[b].row
	})
	if k > len(donors) {
		k = len(donors)
	}

	sum := 0.0
	for _, d := range donors[:k] {
		sum += matrix[d.row][col]
	}
	return sum / float64(k), true
}
