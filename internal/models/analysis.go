package models

// DatasetProfile is a read-only structural summary of a time series, used as
// planner input. Columns are ordered as they appear in the tabular view of
// the series (timestamp first).
type DatasetProfile struct {
	RowCount        int               `json:"row_count"`
	ColumnCount     int               `json:"column_count"`
	Columns         []string          `json:"columns"`
	ColumnTypes     map[string]string `json:"column_types"`
	NumericColumns  []string          `json:"numeric_columns"`
	DatetimeColumns []string          `json:"datetime_columns"`
}

// HasColumn reports whether the profile contains the named column.
func (p *DatasetProfile) HasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ChartType enumerates the chart kinds the renderer supports.
type ChartType string

const (
	ChartLine      ChartType = "line"
	ChartHistogram ChartType = "histogram"
	ChartScatter   ChartType = "scatter"
	ChartBar       ChartType = "bar"
)

// ChartSpec is one planned visualization. Columns are referenced by name and
// validated against the profile before rendering; invalid specs are dropped,
// not fatal.
type ChartSpec struct {
	Type    ChartType `json:"type"`
	Columns []string  `json:"columns"`
	Title   string    `json:"title"`
}

// Chart is a rendered visualization: the spec it came from plus PNG bytes.
type Chart struct {
	Spec ChartSpec `json:"spec"`
	PNG  []byte    `json:"-"`
}

// SkippedChart records a plan entry the renderer dropped and why.
type SkippedChart struct {
	Spec   ChartSpec `json:"spec"`
	Reason string    `json:"reason"`
}

// AnalysisResult is the output of the analysis sub-pipeline.
type AnalysisResult struct {
	Insights       string         `json:"insights"` // newline-joined bulleted items
	Visualizations []ChartSpec    `json:"visualizations"`
	Charts         []Chart        `json:"charts"`
	Skipped        []SkippedChart `json:"skipped,omitempty"`
}

// IsEmpty reports whether the sub-pipeline produced nothing (scan mode or no
// data to analyze).
func (r *AnalysisResult) IsEmpty() bool {
	return r == nil || (r.Insights == "" && len(r.Charts) == 0)
}
