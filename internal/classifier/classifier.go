package classifier

import (
	"fmt"

	"go-solar-inspector/pkg/models"
)

// Thresholds holds the decision boundaries for stage classification.
// They are configuration, not constants, so feedback tuning can adjust them.
type Thresholds struct {
	EdgeInstall float64 `json:"edge_install"`
	BlueInstall float64 `json:"blue_install"`
	EdgeMount   float64 `json:"edge_mount"`
	BlueMount   float64 `json:"blue_mount"`
}

// DefaultThresholds returns the baseline decision boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EdgeInstall: 0.15,
		BlueInstall: 0.20,
		EdgeMount:   0.08,
		BlueMount:   0.05,
	}
}

// Validate checks that the thresholds form a usable decision policy.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"edge_install": t.EdgeInstall,
		"blue_install": t.BlueInstall,
		"edge_mount":   t.EdgeMount,
		"blue_mount":   t.BlueMount,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s out of range [0,1]: %f", name, v)
		}
	}
	if t.EdgeMount >= t.EdgeInstall {
		return fmt.Errorf("edge_mount (%f) must be below edge_install (%f)", t.EdgeMount, t.EdgeInstall)
	}
	if t.BlueMount >= t.BlueInstall {
		return fmt.Errorf("blue_mount (%f) must be below blue_install (%f)", t.BlueMount, t.BlueInstall)
	}
	return nil
}

// Apply returns a copy of the thresholds with the given overrides set.
func (t Thresholds) Apply(o *models.ThresholdOverrides) Thresholds {
	if o == nil {
		return t
	}
	if o.EdgeInstall != nil {
		t.EdgeInstall = *o.EdgeInstall
	}
	if o.BlueInstall != nil {
		t.BlueInstall = *o.BlueInstall
	}
	if o.EdgeMount != nil {
		t.EdgeMount = *o.EdgeMount
	}
	if o.BlueMount != nil {
		t.BlueMount = *o.BlueMount
	}
	return t
}

// StageClassifier maps a feature vector to a construction stage.
type StageClassifier struct {
	thresholds Thresholds
}

// New creates a classifier with the given thresholds.
func New(thresholds Thresholds) *StageClassifier {
	return &StageClassifier{thresholds: thresholds}
}

// Thresholds returns the classifier's decision boundaries.
func (c *StageClassifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify maps a feature vector to a stage. It is a pure function of the
// input: no hidden state, no randomness. Comparisons are strict so values
// exactly on a boundary fall to the earlier stage.
func (c *StageClassifier) Classify(fv models.FeatureVector) models.Stage {
	return ClassifyWith(c.thresholds, fv)
}

// ClassifyWith runs the fixed decision policy against explicit thresholds.
func ClassifyWith(t Thresholds, fv models.FeatureVector) models.Stage {
	switch {
	case fv.EdgeDensity > t.EdgeInstall && fv.BlueRatio > t.BlueInstall:
		return models.StageInstallation
	case fv.EdgeDensity > t.EdgeMount && fv.BlueRatio > t.BlueMount:
		return models.StageMounting
	default:
		return models.StageFoundation
	}
}

// BoundaryDistance returns the smallest absolute distance between the edge
// and blue features and any decision boundary. Feature vectors close to a
// boundary classify with lower confidence.
func BoundaryDistance(t Thresholds, fv models.FeatureVector) float64 {
	min := 1.0
	for _, d := range []float64{
		abs(fv.EdgeDensity - t.EdgeInstall),
		abs(fv.EdgeDensity - t.EdgeMount),
		abs(fv.BlueRatio - t.BlueInstall),
		abs(fv.BlueRatio - t.BlueMount),
	} {
		if d < min {
			min = d
		}
	}
	return min
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
