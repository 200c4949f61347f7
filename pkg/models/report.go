package models

import "time"

// ReportRecord is the structured report handed to the PDF/chart renderer.
// It carries no business logic beyond field mapping and defaulting.
type ReportRecord struct {
	ImageRef     string    `json:"image_ref"`
	Stage        Stage     `json:"stage"`
	ProgressPct  float64   `json:"progress_pct"`
	PanelCount   int       `json:"panel_count"`
	Confidence   float64   `json:"confidence"`
	QualityScore float64   `json:"quality_score"`
	SafetyScore  float64   `json:"safety_score"`
	GeneratedAt  time.Time `json:"generated_at"`

	Features FeatureVector `json:"features"`

	// Narrative is the optional AI commentary. When enrichment is
	// unavailable it is defaulted to a locally generated stage summary.
	Narrative       string   `json:"narrative"`
	NarrativeSource string   `json:"narrative_source"` // "ai" or "rule_based"
	Issues          []string `json:"issues"`
	NextSteps       []string `json:"next_steps"`
}

// RenderedReport describes the files produced for a ReportRecord.
type RenderedReport struct {
	PDFPath    string   `json:"pdf_path"`
	ChartPaths []string `json:"chart_paths"`
	ArchiveURL string   `json:"archive_url,omitempty"`
}
