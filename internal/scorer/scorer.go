package scorer

import (
	"go-solar-inspector/internal/classifier"
	"go-solar-inspector/pkg/models"
	"go-solar-inspector/pkg/validation"
)

// boundaryMargin is the feature distance below which a classification is
// considered ambiguous and confidence gets attenuated.
const boundaryMargin = 0.02

// Scorer derives progress, quality, safety and confidence values from a
// feature vector and its detected stage. All outputs are clamped to their
// documented ranges; the mapping is deterministic.
type Scorer struct {
	thresholds classifier.Thresholds
	validator  *validation.StageValidator
}

// New creates a scorer against the given classification thresholds.
func New(thresholds classifier.Thresholds) *Scorer {
	return &Scorer{
		thresholds: thresholds,
		validator:  validation.NewStageValidator(),
	}
}

// Score computes the stage-dependent scores for a feature vector.
func (s *Scorer) Score(fv models.FeatureVector, stage models.Stage) models.Scores {
	var progress, confidence float64
	var panels int

	switch stage {
	case models.StageInstallation:
		progress = min(95, 70+fv.BlueRatio*50)
		confidence = min(0.95, 0.70+fv.BlueRatio*0.5+fv.EdgeDensity*0.3)
		panels = fv.ContourCount
	case models.StageMounting:
		progress = min(75, 40+fv.EdgeDensity*100)
		confidence = min(0.90, 0.60+fv.EdgeDensity*0.4+fv.BlueRatio*0.3)
		panels = fv.ContourCount / 2
		if panels < 1 {
			panels = 1
		}
	default:
		progress = min(50, 20+fv.EdgeDensity*100)
		confidence = min(0.85, 0.50+fv.EdgeDensity*0.3)
		panels = 0
	}

	// Feature vectors near a decision boundary classify less reliably.
	if d := classifier.BoundaryDistance(s.thresholds, fv); d < boundaryMargin {
		confidence *= 0.8 + 0.2*(d/boundaryMargin)
	}

	brightnessPenalty, edgePenalty := s.validator.Penalties(fv, stage)

	safety := min(95, 60+fv.Contrast/3+edgeBonus(fv.EdgeDensity, 20))
	safety -= brightnessPenalty*0.5 + edgePenalty*1.5

	quality := min(98, 70+fv.Sharpness/100+blueBonus(fv.BlueRatio, 15))
	quality -= brightnessPenalty + edgePenalty

	return models.Scores{
		ProgressPct:  clamp(progress, 0, 100),
		PanelCount:   panels,
		Confidence:   clamp(confidence, 0, 1),
		QualityScore: clamp(quality, 0, 100),
		SafetyScore:  clamp(safety, 0, 100),
	}
}

func edgeBonus(edgeDensity, bonus float64) float64 {
	if edgeDensity > 0.1 {
		return bonus
	}
	return 0
}

func blueBonus(blueRatio, bonus float64) float64 {
	if blueRatio > 0.1 {
		return bonus
	}
	return 0
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
