package scorer

import (
	"math"
	"testing"

	"go-solar-inspector/internal/classifier"
	"go-solar-inspector/pkg/models"
)

// wellLit returns a feature vector with brightness and contrast inside the
// normalcy bands so no penalties apply.
func wellLit(edge, blue float64, contours int) models.FeatureVector {
	return models.FeatureVector{
		EdgeDensity:  edge,
		BlueRatio:    blue,
		ContourCount: contours,
		Brightness:   128,
		Contrast:     30,
		Sharpness:    500,
	}
}

func TestScore_Installation(t *testing.T) {
	s := New(classifier.DefaultThresholds())
	fv := wellLit(0.20, 0.25, 14)

	scores := s.Score(fv, models.StageInstallation)

	// progress = min(95, 70 + 0.25*50)
	if math.Abs(scores.ProgressPct-82.5) > 0.01 {
		t.Errorf("Expected progress 82.5, got %f", scores.ProgressPct)
	}
	// confidence = min(0.95, 0.70 + 0.25*0.5 + 0.20*0.3)
	if math.Abs(scores.Confidence-0.885) > 0.001 {
		t.Errorf("Expected confidence 0.885, got %f", scores.Confidence)
	}
	if scores.PanelCount != 14 {
		t.Errorf("Expected panel count 14, got %d", scores.PanelCount)
	}
}

func TestScore_Mounting(t *testing.T) {
	s := New(classifier.DefaultThresholds())
	fv := wellLit(0.10, 0.08, 9)

	scores := s.Score(fv, models.StageMounting)

	// progress = min(75, 40 + 0.10*100)
	if math.Abs(scores.ProgressPct-50) > 0.01 {
		t.Errorf("Expected progress 50, got %f", scores.ProgressPct)
	}
	// Panels are halved during mounting.
	if scores.PanelCount != 4 {
		t.Errorf("Expected panel count 4, got %d", scores.PanelCount)
	}
}

func TestScore_MountingPanelFloor(t *testing.T) {
	s := New(classifier.DefaultThresholds())
	fv := wellLit(0.10, 0.08, 0)

	scores := s.Score(fv, models.StageMounting)
	if scores.PanelCount != 1 {
		t.Errorf("Expected panel floor of 1 during mounting, got %d", scores.PanelCount)
	}
}

func TestScore_Foundation(t *testing.T) {
	s := New(classifier.DefaultThresholds())
	fv := wellLit(0.02, 0.01, 3)

	scores := s.Score(fv, models.StageFoundation)

	// progress = min(50, 20 + 0.02*100)
	if math.Abs(scores.ProgressPct-22) > 0.01 {
		t.Errorf("Expected progress 22, got %f", scores.ProgressPct)
	}
	// confidence = min(0.85, 0.50 + 0.02*0.3)
	if math.Abs(scores.Confidence-0.506) > 0.001 {
		t.Errorf("Expected confidence 0.506, got %f", scores.Confidence)
	}
	if scores.PanelCount != 0 {
		t.Errorf("Expected zero panels during foundation, got %d", scores.PanelCount)
	}
}

func TestScore_ProgressCaps(t *testing.T) {
	s := New(classifier.DefaultThresholds())

	scores := s.Score(wellLit(0.55, 0.90, 30), models.StageInstallation)
	if scores.ProgressPct != 95 {
		t.Errorf("Expected installation progress capped at 95, got %f", scores.ProgressPct)
	}
	if scores.Confidence != 0.95 {
		t.Errorf("Expected confidence capped at 0.95, got %f", scores.Confidence)
	}

	scores = s.Score(wellLit(0.40, 0.30, 30), models.StageMounting)
	if scores.ProgressPct != 75 {
		t.Errorf("Expected mounting progress capped at 75, got %f", scores.ProgressPct)
	}

	scores = s.Score(wellLit(0.09, 0.01, 0), models.StageFoundation)
	if scores.ProgressPct > 50 {
		t.Errorf("Expected foundation progress at most 50, got %f", scores.ProgressPct)
	}
}

func TestScore_SafetyAndQuality(t *testing.T) {
	s := New(classifier.DefaultThresholds())
	fv := wellLit(0.20, 0.25, 10)

	scores := s.Score(fv, models.StageInstallation)

	// safety = min(95, 60 + 30/3 + 20), no penalties
	if math.Abs(scores.SafetyScore-90) > 0.01 {
		t.Errorf("Expected safety 90, got %f", scores.SafetyScore)
	}
	// quality = min(98, 70 + 500/100 + 15), no penalties
	if math.Abs(scores.QualityScore-90) > 0.01 {
		t.Errorf("Expected quality 90, got %f", scores.QualityScore)
	}
}

func TestScore_DarkImagePenalized(t *testing.T) {
	s := New(classifier.DefaultThresholds())

	lit := wellLit(0.20, 0.25, 10)
	dark := lit
	dark.Brightness = 10

	litScores := s.Score(lit, models.StageInstallation)
	darkScores := s.Score(dark, models.StageInstallation)

	if darkScores.QualityScore >= litScores.QualityScore {
		t.Errorf("Expected dark image to score lower quality: %f vs %f",
			darkScores.QualityScore, litScores.QualityScore)
	}
	if darkScores.SafetyScore >= litScores.SafetyScore {
		t.Errorf("Expected dark image to score lower safety: %f vs %f",
			darkScores.SafetyScore, litScores.SafetyScore)
	}
}

func TestScore_BoundaryAttenuatesConfidence(t *testing.T) {
	s := New(classifier.DefaultThresholds())

	clear := wellLit(0.30, 0.40, 10)
	nearBoundary := wellLit(0.151, 0.40, 10)

	clearScores := s.Score(clear, models.StageInstallation)
	nearScores := s.Score(nearBoundary, models.StageInstallation)

	if nearScores.Confidence >= clearScores.Confidence {
		t.Errorf("Expected attenuated confidence near boundary: %f vs %f",
			nearScores.Confidence, clearScores.Confidence)
	}
	if nearScores.Confidence >= 0.80 {
		t.Errorf("Expected strong attenuation at distance 0.001, got %f", nearScores.Confidence)
	}
}

func TestScore_RangesAlwaysHold(t *testing.T) {
	s := New(classifier.DefaultThresholds())

	extremes := []models.FeatureVector{
		{},
		{EdgeDensity: 1, BlueRatio: 1, ContourCount: 1000, Brightness: 255, Contrast: 255, Sharpness: 1e6},
		{EdgeDensity: 0.5, BlueRatio: 0, Brightness: 0, Contrast: 0, Sharpness: 0},
	}
	stages := []models.Stage{models.StageFoundation, models.StageMounting, models.StageInstallation}

	for _, fv := range extremes {
		for _, stage := range stages {
			scores := s.Score(fv, stage)
			if scores.ProgressPct < 0 || scores.ProgressPct > 100 {
				t.Errorf("Progress out of range for %+v/%s: %f", fv, stage, scores.ProgressPct)
			}
			if scores.Confidence < 0 || scores.Confidence > 1 {
				t.Errorf("Confidence out of range for %+v/%s: %f", fv, stage, scores.Confidence)
			}
			if scores.QualityScore < 0 || scores.QualityScore > 100 {
				t.Errorf("Quality out of range for %+v/%s: %f", fv, stage, scores.QualityScore)
			}
			if scores.SafetyScore < 0 || scores.SafetyScore > 100 {
				t.Errorf("Safety out of range for %+v/%s: %f", fv, stage, scores.SafetyScore)
			}
		}
	}
}
