package validation

import (
	"go-solar-inspector/pkg/models"
)

// StageExpectations defines the feature ranges a stage normally exhibits.
// Values outside the band reduce the quality and safety scores.
type StageExpectations struct {
	MinBrightness  float64
	MaxBrightness  float64
	MinEdgeDensity float64
	MaxEdgeDensity float64
}

// DefaultExpectations returns the per-stage normalcy bands. Brightness
// bands are shared; edge bands follow the stage's structural complexity.
func DefaultExpectations() map[models.Stage]StageExpectations {
	return map[models.Stage]StageExpectations{
		models.StageFoundation: {
			MinBrightness:  60,
			MaxBrightness:  220,
			MinEdgeDensity: 0.0,
			MaxEdgeDensity: 0.10,
		},
		models.StageMounting: {
			MinBrightness:  60,
			MaxBrightness:  220,
			MinEdgeDensity: 0.05,
			MaxEdgeDensity: 0.25,
		},
		models.StageInstallation: {
			MinBrightness:  60,
			MaxBrightness:  220,
			MinEdgeDensity: 0.10,
			MaxEdgeDensity: 0.60,
		},
	}
}

// StageValidator scores how far a feature vector sits outside the normalcy
// band of its detected stage.
type StageValidator struct {
	expectations map[models.Stage]StageExpectations
}

// NewStageValidator creates a validator with the default bands.
func NewStageValidator() *StageValidator {
	return &StageValidator{expectations: DefaultExpectations()}
}

// NewStageValidatorWithExpectations creates a validator with custom bands.
func NewStageValidatorWithExpectations(expectations map[models.Stage]StageExpectations) *StageValidator {
	return &StageValidator{expectations: expectations}
}

// Penalties returns the brightness and edge-consistency penalties for the
// feature vector under the detected stage. Brightness penalty is capped at
// 20 points, edge penalty at 10.
func (v *StageValidator) Penalties(fv models.FeatureVector, stage models.Stage) (brightnessPenalty, edgePenalty float64) {
	exp, ok := v.expectations[stage]
	if !ok {
		return 0, 0
	}

	if fv.Brightness < exp.MinBrightness {
		brightnessPenalty = (exp.MinBrightness - fv.Brightness) / 8
	} else if fv.Brightness > exp.MaxBrightness {
		brightnessPenalty = (fv.Brightness - exp.MaxBrightness) / 8
	}
	if brightnessPenalty > 20 {
		brightnessPenalty = 20
	}

	if fv.EdgeDensity < exp.MinEdgeDensity {
		edgePenalty = (exp.MinEdgeDensity - fv.EdgeDensity) * 100
	} else if fv.EdgeDensity > exp.MaxEdgeDensity {
		edgePenalty = (fv.EdgeDensity - exp.MaxEdgeDensity) * 100
	}
	if edgePenalty > 10 {
		edgePenalty = 10
	}

	return brightnessPenalty, edgePenalty
}
