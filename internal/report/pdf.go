package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"go-solar-inspector/pkg/models"
)

// PDFRenderer writes report records as PDF files with embedded charts.
type PDFRenderer struct {
	reportsDir string
	chartsDir  string
	seq        atomic.Uint64
}

// NewPDFRenderer creates a renderer writing under the given directories.
func NewPDFRenderer(reportsDir, chartsDir string) *PDFRenderer {
	return &PDFRenderer{reportsDir: reportsDir, chartsDir: chartsDir}
}

// Render produces the chart PNGs and the PDF for a report record and
// returns the written file paths.
func (r *PDFRenderer) Render(record models.ReportRecord) (*models.RenderedReport, error) {
	if err := os.MkdirAll(r.reportsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create reports directory")
	}
	if err := os.MkdirAll(r.chartsDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create charts directory")
	}

	// Concurrent batch renders can share a one-second timestamp, so every
	// output name also carries the image slug and a per-renderer sequence
	// number.
	stamp := fmt.Sprintf("%s_%s_%04d",
		refSlug(record.ImageRef), record.GeneratedAt.Format("20060102_150405"), r.seq.Add(1))
	metricsChart := filepath.Join(r.chartsDir, fmt.Sprintf("analysis_metrics_%s.png", stamp))
	scoresChart := filepath.Join(r.chartsDir, fmt.Sprintf("site_scores_%s.png", stamp))

	if err := RenderMetricsChart(record, metricsChart); err != nil {
		return nil, err
	}
	if err := RenderScoresChart(record, scoresChart); err != nil {
		return nil, err
	}

	pdfPath := filepath.Join(r.reportsDir,
		fmt.Sprintf("site_analysis_report_%s_%s.pdf", record.Stage.String(), stamp))
	if err := r.writePDF(record, metricsChart, scoresChart, pdfPath); err != nil {
		return nil, err
	}

	return &models.RenderedReport{
		PDFPath:    pdfPath,
		ChartPaths: []string{metricsChart, scoresChart},
	}, nil
}

func (r *PDFRenderer) writePDF(record models.ReportRecord, metricsChart, scoresChart, pdfPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 15, fmt.Sprintf("AI Analysis Report - %s Phase Detected", record.Stage.Display()),
		"", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Generated: "+record.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "Image: "+filepath.Base(record.ImageRef), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// Detection banner, tinted per stage.
	pdf.SetFont("Arial", "B", 14)
	switch record.Stage {
	case models.StageFoundation:
		pdf.SetFillColor(255, 200, 200)
	case models.StageMounting:
		pdf.SetFillColor(255, 230, 200)
	default:
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.CellFormat(0, 10, fmt.Sprintf("DETECTED: %s PHASE", record.Stage.Display()), "", 1, "C", true, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Progress: %.0f%% | Panels: %d | AI Confidence: %.1f%%",
			record.ProgressPct, record.PanelCount, record.Confidence*100),
		"", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Computer Vision Analysis Results", "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{
		fmt.Sprintf("- Edge Density: %.3f (structural complexity)", record.Features.EdgeDensity),
		fmt.Sprintf("- Material Detection: %.3f (metallic/panel surfaces)", record.Features.BlueRatio),
		fmt.Sprintf("- Image Brightness: %.1f/255", record.Features.Brightness),
		fmt.Sprintf("- Structures Detected: %d", record.Features.ContourCount),
		fmt.Sprintf("- Image Quality: %.0f%%", record.QualityScore),
		fmt.Sprintf("- Safety Assessment: %.0f%%", record.SafetyScore),
	} {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Technical Analysis Metrics", "", 1, "L", false, 0, "")
	pdf.Ln(5)
	pdf.ImageOptions(metricsChart, 10, -1, 190, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Progress and Site Scores", "", 1, "L", false, 0, "")
	pdf.Ln(5)
	pdf.ImageOptions(scoresChart, 10, -1, 190, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "AI-Detected Issues:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, issue := range record.Issues {
		pdf.CellFormat(0, 6, "- "+issue, "", 1, "L", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "AI Recommendations:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, step := range record.NextSteps {
		pdf.CellFormat(0, 6, "- "+step, "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Analysis Summary:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, record.Narrative, "", "L", false)

	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return errors.Wrap(err, "write pdf report")
	}
	return nil
}

// refSlug reduces an image reference to a short filename-safe token.
func refSlug(imageRef string) string {
	base := filepath.Base(imageRef)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
		if b.Len() >= 40 {
			break
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
