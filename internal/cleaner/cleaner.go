// Package cleaner exposes the missing-data engine behind a single
// request-scoped facade: load a file, inspect its missingness, apply an
// imputation method, save the result. One Cleaner per file per request;
// it holds no locks and shares no state.
package cleaner

import (
	"datamend/adapters/tabular"
	"datamend/domain/table"
	"datamend/internal"
	"datamend/internal/analysis"
	"datamend/internal/errors"
	"datamend/internal/impute"
)

// Cleaner wires the loader, analyzer, imputation engine and writer for a
// single source file.
type Cleaner struct {
	filePath string
	log      *internal.Logger
	engine   *impute.Engine

	tbl     *table.Table
	cleaned *table.Table
}

// New creates a cleaner for the given file. Nothing is read until Load.
func New(filePath string, logger *internal.Logger) *Cleaner {
	return &Cleaner{
		filePath: filePath,
		log:      logger,
		engine:   impute.NewEngine(logger),
	}
}

// Load parses the source file into the working table.
func (c *Cleaner) Load() error {
	reader, err := tabular.NewReader(c.filePath, c.log)
	if err != nil {
		return err
	}
	tbl, err := reader.Read()
	if err != nil {
		return err
	}
	c.tbl = tbl
	return nil
}

// Table returns the loaded table, or nil before a successful Load.
func (c *Cleaner) Table() *table.Table { return c.tbl }

// Cleaned returns the result of the last Clean, or nil.
func (c *Cleaner) Cleaned() *table.Table { return c.cleaned }

// AnalyzeMissingData reports missing-cell counts per column. Returns an
// empty report when nothing is loaded.
func (c *Cleaner) AnalyzeMissingData() map[string]int {
	if c.tbl == nil {
		return map[string]int{}
	}
	return analysis.MissingReport(c.tbl)
}

// ColumnStats computes per-column statistics. Returns an empty map when
// nothing is loaded.
func (c *Cleaner) ColumnStats() map[string]analysis.ColumnStatistics {
	if c.tbl == nil {
		return map[string]analysis.ColumnStatistics{}
	}
	return analysis.ColumnStats(c.tbl)
}

// KnnRecommendation advises on neighbor-based imputation parameters.
func (c *Cleaner) KnnRecommendation() analysis.Recommendation {
	if c.tbl == nil {
		return analysis.Recommendation{Reason: "no data loaded"}
	}
	return analysis.KnnRecommendation(c.tbl)
}

// Clean applies the named method and keeps the result for Save. The
// loaded table is never mutated; unknown methods are rejected.
func (c *Cleaner) Clean(method string, columns []string, params impute.Params) (*table.Table, error) {
	if c.tbl == nil {
		return nil, errors.NoDataLoaded()
	}
	m, err := impute.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	cleaned, err := c.engine.Clean(c.tbl, m, columns, params)
	if err != nil {
		return nil, err
	}
	c.cleaned = cleaned
	return cleaned, nil
}

// Save writes the cleaned table. An empty outputPath derives one from
// the source path with a "_cleaned" suffix. Returns the resolved path.
func (c *Cleaner) Save(outputPath string) (string, error) {
	if c.cleaned == nil {
		return "", errors.New(errors.CodeNoDataLoaded, "no cleaned data available")
	}
	if outputPath == "" {
		outputPath = tabular.DerivedPath(c.filePath)
	}
	return tabular.NewWriter(c.log).Write(c.cleaned, outputPath)
}
