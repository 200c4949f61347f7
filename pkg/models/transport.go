package models

// InspectionRequest is the transport payload for a single image analysis.
type InspectionRequest struct {
	// ImageRef is an http(s) URL, a local file path, or an
	// azblob://container/blob reference.
	ImageRef string `json:"image_ref" binding:"required"`

	// Enrich requests optional AI commentary. Best effort: failure or
	// timeout never fails the analysis.
	Enrich bool `json:"enrich,omitempty"`

	// RenderPDF requests a PDF report with charts.
	RenderPDF bool `json:"render_pdf,omitempty"`

	// CustomThresholds overrides the configured classification thresholds
	// for this request only.
	CustomThresholds *ThresholdOverrides `json:"custom_thresholds,omitempty"`
}

// ThresholdOverrides carries optional per-request threshold values.
type ThresholdOverrides struct {
	EdgeInstall *float64 `json:"edge_install,omitempty"`
	BlueInstall *float64 `json:"blue_install,omitempty"`
	EdgeMount   *float64 `json:"edge_mount,omitempty"`
	BlueMount   *float64 `json:"blue_mount,omitempty"`
}

// InspectionResponse is the transport representation of a completed analysis.
type InspectionResponse struct {
	Result AnalysisResult  `json:"result"`
	Report *ReportRecord   `json:"report,omitempty"`
	Files  *RenderedReport `json:"files,omitempty"`
}

// FeedbackRequest records a supervisor verdict on a prediction.
type FeedbackRequest struct {
	ImageRef       string  `json:"image_ref" binding:"required"`
	PredictedStage string  `json:"predicted_stage" binding:"required"`
	Correct        bool    `json:"correct"`
	CorrectedStage string  `json:"corrected_stage,omitempty"`
	Comments       string  `json:"comments,omitempty"`
	EdgeDensity    float64 `json:"edge_density"`
	BlueRatio      float64 `json:"blue_ratio"`
}
