package impute

import (
	"math"
	"math/rand"

	"datamend/domain/table"

	"gonum.org/v1/gonum/mat"
)

const (
	// Convergence tolerance, relative to the observed value range.
	iterativeTol = 1e-3
	// Training matrices are subsampled past this many rows.
	maxTrainRows = 5000
)

// iterativeImpute estimates missing numeric cells by round-robin
// regression: each numeric column with missing values is predicted from
// the other numeric columns, starting from a mean fill and repeating
// until the estimates stabilize or the iteration cap is hit. Only
// columns in the requested subset (nil means all) receive values;
// observed cells and non-numeric columns are never written.
func (e *Engine) iterativeImpute(tbl *table.Table, requested []string, params Params) {
	numeric := tbl.NumericColumns()
	if len(numeric) == 0 {
		return
	}

	rows := tbl.RowCount()
	features := len(numeric)
	matrix := make([][]float64, rows)
	missing := make([][]bool, rows)
	for r := range matrix {
		matrix[r] = make([]float64, features)
		missing[r] = make([]bool, features)
	}

	cols := make([]*table.Column, features)
	usable := make([]bool, features)
	var targets []int
	lo, hi := math.Inf(1), math.Inf(-1)
	for j, name := range numeric {
		cols[j], _ = tbl.Column(name)
		sum, count := 0.0, 0
		for r := 0; r < rows; r++ {
			if cols[j].Values[r].Missing {
				missing[r][j] = true
				continue
			}
			v := cols[j].Values[r].Num
			matrix[r][j] = v
			sum += v
			count++
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		// Columns with no observed values have nothing to learn from and
		// stay missing.
		if count == 0 {
			continue
		}
		usable[j] = true
		mean := sum / float64(count)
		hasMissing := false
		for r := 0; r < rows; r++ {
			if missing[r][j] {
				matrix[r][j] = mean
				hasMissing = true
			}
		}
		if hasMissing {
			targets = append(targets, j)
		}
	}

	if len(targets) > 0 && features > 1 {
		tol := iterativeTol
		if hi > lo {
			tol *= hi - lo
		}
		rng := rand.New(rand.NewSource(params.Seed))
		for iter := 0; iter < params.MaxIter; iter++ {
			maxDelta := 0.0
			for _, j := range targets {
				delta := e.regressColumn(matrix, missing, usable, j, rng)
				if delta > maxDelta {
					maxDelta = delta
				}
			}
			if maxDelta <= tol {
				e.log.Debug("[Impute] iterative converged after %d passes", iter+1)
				break
			}
		}
	}

	writeAll := len(requested) == 0
	wanted := make(map[string]bool, len(requested))
	for _, name := range requested {
		wanted[name] = true
	}
	for j, name := range numeric {
		if !usable[j] || !(writeAll || wanted[name]) {
			continue
		}
		for r := 0; r < rows; r++ {
			if missing[r][j] {
				cols[j].Values[r] = table.Num(matrix[r][j])
			}
		}
	}
}

// regressColumn refits column j from the other usable columns via least
// squares over the rows where j was observed, then refreshes the
// estimates for its missing cells. Returns the largest estimate change.
func (e *Engine) regressColumn(matrix [][]float64, missing [][]bool, usable []bool, j int, rng *rand.Rand) float64 {
	var predictors []int
	for p := range usable {
		if p != j && usable[p] {
			predictors = append(predictors, p)
		}
	}
	if len(predictors) == 0 {
		return 0
	}

	var train []int
	for r := range matrix {
		if !missing[r][j] {
			train = append(train, r)
		}
	}
	if len(train) > maxTrainRows {
		rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
		train = train[:maxTrainRows]
	}
	// Underdetermined systems keep their current (mean) estimates.
	width := len(predictors) + 1
	if len(train) < width {
		return 0
	}

	design := mat.NewDense(len(train), width, nil)
	response := mat.NewVecDense(len(train), nil)
	for i, r := range train {
		design.Set(i, 0, 1)
		for c, p := range predictors {
			design.Set(i, c+1, matrix[r][p])
		}
		response.SetVec(i, matrix[r][j])
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, response); err != nil {
		return 0
	}

	maxDelta := 0.0
	for r := range matrix {
		if !missing[r][j] {
			continue
		}
		estimate := beta.AtVec(0)
		for c, p := range predictors {
			estimate += beta.AtVec(c+1) * matrix[r][p]
		}
		if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
			continue
		}
		if delta := math.Abs(estimate - matrix[r][j]); delta > maxDelta {
			maxDelta = delta
		}
		matrix[r][j] = estimate
	}
	return maxDelta
}
