package analysis

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/aegis/internal/common"
	"github.com/bobmcallan/aegis/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 400

	histogramBins = 10
	barChartBars  = 30
)

// renderCharts renders each planned chart, validating specs against the
// profile first. A bad spec or a failed render skips that chart only.
func renderCharts(series *models.TimeSeries, profile *models.DatasetProfile, specs []models.ChartSpec, logger *common.Logger) ([]models.Chart, []models.SkippedChart) {
	var charts []models.Chart
	var skipped []models.SkippedChart

	for _, spec := range specs {
		if reason := validateSpec(spec, profile); reason != "" {
			logger.Warn().Str("title", spec.Title).Str("reason", reason).Msg("Skipping planned chart")
			skipped = append(skipped, models.SkippedChart{Spec: spec, Reason: reason})
			continue
		}

		png, err := renderChart(series, spec)
		if err != nil {
			logger.Warn().Err(err).Str("title", spec.Title).Msg("Chart render failed")
			skipped = append(skipped, models.SkippedChart{Spec: spec, Reason: err.Error()})
			continue
		}

		charts = append(charts, models.Chart{Spec: spec, PNG: png})
	}

	return charts, skipped
}

// validateSpec checks the spec's type and columns against the dataset
// profile, returning a non-empty skip reason when the chart cannot render.
func validateSpec(spec models.ChartSpec, profile *models.DatasetProfile) string {
	for _, col := range spec.Columns {
		if !profile.HasColumn(strings.ToLower(col)) {
			return fmt.Sprintf("unknown column %q", col)
		}
	}

	switch spec.Type {
	case models.ChartLine, models.ChartBar:
		if len(spec.Columns) != 2 {
			return fmt.Sprintf("%s chart requires 2 columns, got %d", spec.Type, len(spec.Columns))
		}
		if !strings.EqualFold(spec.Columns[0], "timestamp") {
			return fmt.Sprintf("%s chart requires timestamp as the first column", spec.Type)
		}
		if !isNumeric(profile, spec.Columns[1]) {
			return fmt.Sprintf("column %q is not numeric", spec.Columns[1])
		}
	case models.ChartHistogram:
		if len(spec.Columns) != 1 {
			return fmt.Sprintf("histogram requires 1 column, got %d", len(spec.Columns))
		}
		if !isNumeric(profile, spec.Columns[0]) {
			return fmt.Sprintf("column %q is not numeric", spec.Columns[0])
		}
	case models.ChartScatter:
		if len(spec.Columns) != 2 {
			return fmt.Sprintf("scatter chart requires 2 columns, got %d", len(spec.Columns))
		}
		for _, col := range spec.Columns {
			if !isNumeric(profile, col) {
				return fmt.Sprintf("column %q is not numeric", col)
			}
		}
	default:
		return fmt.Sprintf("unsupported chart type %q", spec.Type)
	}

	return ""
}

func isNumeric(profile *models.DatasetProfile, column string) bool {
	column = strings.ToLower(column)
	for _, col := range profile.NumericColumns {
		if col == column {
			return true
		}
	}
	return false
}

func renderChart(series *models.TimeSeries, spec models.ChartSpec) ([]byte, error) {
	switch spec.Type {
	case models.ChartLine:
		return renderLine(series, spec)
	case models.ChartHistogram:
		return renderHistogram(series, spec)
	case models.ChartScatter:
		return renderScatter(series, spec)
	case models.ChartBar:
		return renderBar(series, spec)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", spec.Type)
	}
}

func renderLine(series *models.TimeSeries, spec models.ChartSpec) ([]byte, error) {
	values, _ := columnValues(series, spec.Columns[1])
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(values))
	}

	xValues := make([]time.Time, len(series.Bars))
	for i, bar := range series.Bars {
		xValues[i] = bar.Timestamp
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02 15:04")
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: spec.Columns[1],
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
					StrokeWidth: 2.5,
				},
				XValues: xValues,
				YValues: values,
			},
		},
	}

	return renderPNG(&graph)
}

func renderHistogram(series *models.TimeSeries, spec models.ChartSpec) ([]byte, error) {
	values, _ := columnValues(series, spec.Columns[0])
	if isPriceColumn(spec.Columns[0]) {
		// Raw price levels make a one-bar histogram; bucket the
		// period-over-period returns instead.
		values = pctReturns(values)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(values))
	}

	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	width := (max - min) / float64(histogramBins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, histogramBins)
	for _, v := range values {
		bin := int((v - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}

	bars := make([]chart.Value, histogramBins)
	for i, count := range counts {
		bars[i] = chart.Value{
			Value: float64(count),
			Label: formatBinLabel(min + width*float64(i)),
		}
	}

	graph := chart.BarChart{
		Title:    spec.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func renderScatter(series *models.TimeSeries, spec models.ChartSpec) ([]byte, error) {
	xValues, _ := columnValues(series, spec.Columns[0])
	yValues, _ := columnValues(series, spec.Columns[1])
	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(xValues))
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: fmt.Sprintf("%s vs %s", spec.Columns[0], spec.Columns[1]),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    drawing.ColorFromHex("2563eb"),
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	return renderPNG(&graph)
}

// renderBar draws the most recent values of a column as labeled bars,
// sampling down to barChartBars when the window is larger.
func renderBar(series *models.TimeSeries, spec models.ChartSpec) ([]byte, error) {
	values, _ := columnValues(series, spec.Columns[1])
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(values))
	}

	start := 0
	if len(values) > barChartBars {
		start = len(values) - barChartBars
	}

	bars := make([]chart.Value, 0, len(values)-start)
	for i := start; i < len(values); i++ {
		bars = append(bars, chart.Value{
			Value: values[i],
			Label: series.Bars[i].Timestamp.Format("01-02"),
		})
	}

	graph := chart.BarChart{
		Title:    spec.Title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 20,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPNG(graph *chart.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func isPriceColumn(column string) bool {
	switch strings.ToLower(column) {
	case "open", "high", "low", "close":
		return true
	}
	return false
}

// pctReturns converts a price series into period-over-period percent
// changes. Zero prices are skipped to avoid division blowups.
func pctReturns(prices []float64) []float64 {
	returns := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	return returns
}

func formatBinLabel(v float64) string {
	if math.Abs(v) >= 1000 {
		return fmt.Sprintf("%.0fk", v/1000)
	}
	return fmt.Sprintf("%.1f", v)
}
