package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/samuelfneumann/tabular/experiment"
)

// Series is a named sequence of values, plotted against their index
// starting from 1
type Series struct {
	Name string
	Data []float64
}

// NewLineChart returns an HTML line chart of each series
func NewLineChart(title, xName, yName string, series ...Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true),
			Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Scale: opts.Bool(true)}),
	)

	var length int
	for _, s := range series {
		length = max(length, len(s.Data))
	}
	x := make([]int, length)
	for i := range x {
		x[i] = i + 1
	}
	line.SetXAxis(x)

	for _, s := range series {
		data := make([]opts.LineData, len(s.Data))
		for i, value := range s.Data {
			data[i] = opts.LineData{Value: value}
		}
		line.AddSeries(s.Name, data)
	}
	return line
}

// LearningCurve renders the episodic returns of the training and
// evaluation episodes of an experiment to w as an HTML page
func LearningCurve(w io.Writer, r experiment.Result) error {
	page := components.NewPage()
	page.AddCharts(
		NewLineChart("Training", "episode", "return",
			Series{"return", r.TrainReturns},
			Series{"length", r.TrainLengths},
		),
		NewLineChart("Evaluation", "episode", "return",
			Series{"return", r.EvalReturns},
			Series{"length", r.EvalLengths},
		),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("learningCurve: %w", err)
	}
	return nil
}

// ConvergenceChart renders the largest value change of each sweep of
// one or more dynamic programming runs to w as an HTML page
func ConvergenceChart(w io.Writer, series ...Series) error {
	line := NewLineChart("Convergence", "sweep", "delta", series...)
	if err := line.Render(w); err != nil {
		return fmt.Errorf("convergenceChart: %w", err)
	}
	return nil
}
