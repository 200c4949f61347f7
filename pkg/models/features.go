package models

import "time"

// FeatureVector is the numeric summary of a site image used for stage
// classification. It is computed once per image and never mutated.
type FeatureVector struct {
	// EdgeDensity is the fraction of pixels flagged as edges, in [0,1].
	EdgeDensity float64 `json:"edge_density"`
	// BlueRatio is the fraction of pixels whose hue falls in the
	// panel-blue band, in [0,1].
	BlueRatio float64 `json:"blue_ratio"`
	// ContourCount is the number of edge regions above the minimum area,
	// used as a panel-count proxy.
	ContourCount int `json:"contour_count"`
	// Brightness is the mean grayscale level, in [0,255].
	Brightness float64 `json:"brightness"`
	// Contrast is the grayscale standard deviation.
	Contrast float64 `json:"contrast"`
	// Sharpness is the Laplacian variance of the grayscale image.
	Sharpness float64 `json:"sharpness"`

	Width  int `json:"width"`
	Height int `json:"height"`
}

// Scores holds the derived progress, quality and safety values for a
// classified image. All fields stay within their documented closed ranges.
type Scores struct {
	ProgressPct  float64 `json:"progress_pct"`  // [0,100]
	PanelCount   int     `json:"panel_count"`   // >= 0
	Confidence   float64 `json:"confidence"`    // [0,1]
	QualityScore float64 `json:"quality_score"` // [0,100]
	SafetyScore  float64 `json:"safety_score"`  // [0,100]
}

// AnalysisResult is the immutable outcome of a single image analysis.
type AnalysisResult struct {
	ImageRef          string        `json:"image_ref"`
	Stage             Stage         `json:"stage"`
	Features          FeatureVector `json:"features"`
	Scores            Scores        `json:"scores"`
	Timestamp         time.Time     `json:"timestamp"`
	ProcessingTimeSec float64       `json:"processing_time_sec"`
}
