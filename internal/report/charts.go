package report

import (
	"os"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"

	"go-solar-inspector/pkg/models"
)

// RenderMetricsChart writes a bar chart of the computer-vision metrics to
// path as a PNG. Values are on a shared 0..1 scale; brightness is
// normalized from 0..255.
func RenderMetricsChart(record models.ReportRecord, path string) error {
	graph := chart.BarChart{
		Title:    "Computer Vision Analysis Metrics",
		Height:   512,
		BarWidth: 80,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{
			{Value: record.Features.EdgeDensity, Label: "Edge Density"},
			{Value: record.Features.BlueRatio, Label: "Blue/Metallic"},
			{Value: record.Features.Brightness / 255.0, Label: "Brightness"},
			{Value: record.Confidence, Label: "Confidence"},
		},
	}
	return renderPNG(graph, path)
}

// RenderScoresChart writes a bar chart of the derived scores to path.
func RenderScoresChart(record models.ReportRecord, path string) error {
	graph := chart.BarChart{
		Title:    "Progress and Site Scores",
		Height:   512,
		BarWidth: 80,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: []chart.Value{
			{Value: record.ProgressPct, Label: "Progress %"},
			{Value: record.QualityScore, Label: "Quality"},
			{Value: record.SafetyScore, Label: "Safety"},
		},
	}
	return renderPNG(graph, path)
}

func renderPNG(graph chart.BarChart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create chart file")
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return errors.Wrap(err, "render chart")
	}
	return nil
}
