package csvinfer

import (
	"time"

	"github.com/nao1215/csvinfer/domain/model"
)

// Strategy names how the analyzed rows were chosen
type Strategy string

const (
	// StrategyFull means every data row was analyzed
	StrategyFull Strategy = "full"
	// StrategySampled means head, stride and tail rows were analyzed after a counting pass
	StrategySampled Strategy = "sampled"
	// StrategyReservoir means a random reservoir was kept in a single pass.
	// Results depend on the reservoir seed.
	StrategyReservoir Strategy = "reservoir"
)

// Result is the outcome of one analysis
type Result struct {
	// Source is the name of the analyzed input
	Source string `json:"source" yaml:"source"`
	// Format is the tabular format of the input
	Format string `json:"format" yaml:"format"`
	// Columns holds one entry per header column, in header order
	Columns []model.ColumnResult `json:"columns" yaml:"columns"`
	// TotalRows is the number of data rows in the input, header excluded
	TotalRows int64 `json:"totalRows" yaml:"total_rows"`
	// AnalyzedRows is the number of rows whose values were examined
	AnalyzedRows int64 `json:"analyzedRows" yaml:"analyzed_rows"`
	// MalformedRows is the number of rows skipped because they could not be tokenized
	MalformedRows int64 `json:"malformedRows" yaml:"malformed_rows"`
	// SamplingInterval is the stride between sampled rows; 1 without sampling, 0 for a reservoir
	SamplingInterval int64 `json:"samplingInterval" yaml:"sampling_interval"`
	// Strategy tells how the analyzed rows were chosen
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	// Duration is the wall time of the analysis
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Column returns the result of the named column
func (r *Result) Column(name string) (model.ColumnResult, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return model.ColumnResult{}, false
}
