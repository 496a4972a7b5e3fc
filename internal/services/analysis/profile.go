package analysis

import (
	"strings"

	"github.com/bobmcallan/aegis/internal/models"
)

// Column names of the tabular view of a time series, in order. All chart
// planning and validation happens against these lower-case names.
var seriesColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

// Profile computes the read-only structural summary of a series that the
// planner prompt is built from.
func Profile(series *models.TimeSeries) *models.DatasetProfile {
	columnTypes := map[string]string{
		"timestamp": "datetime",
		"open":      "float64",
		"high":      "float64",
		"low":       "float64",
		"close":     "float64",
		"volume":    "int64",
	}

	return &models.DatasetProfile{
		RowCount:        len(series.Bars),
		ColumnCount:     len(seriesColumns),
		Columns:         append([]string(nil), seriesColumns...),
		ColumnTypes:     columnTypes,
		NumericColumns:  []string{"open", "high", "low", "close", "volume"},
		DatetimeColumns: []string{"timestamp"},
	}
}

// columnValues returns the numeric values of a named column. Timestamp is
// not a numeric column; callers handle it separately for time axes.
func columnValues(series *models.TimeSeries, column string) ([]float64, bool) {
	column = strings.ToLower(column)
	values := make([]float64, len(series.Bars))
	for i, bar := range series.Bars {
		switch column {
		case "open":
			values[i] = bar.Open
		case "high":
			values[i] = bar.High
		case "low":
			values[i] = bar.Low
		case "close":
			values[i] = bar.Close
		case "volume":
			values[i] = float64(bar.Volume)
		default:
			return nil, false
		}
	}
	return values, true
}
