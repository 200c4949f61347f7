package feedback

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"go-solar-inspector/internal/classifier"
	"go-solar-inspector/pkg/models"
)

// minSamples is the number of confirmed examples a stage needs before its
// statistics may move a decision boundary.
const minSamples = 3

// StageStats summarizes the confirmed feature distribution of one stage.
type StageStats struct {
	Stage          models.Stage `json:"stage"`
	SampleCount    int          `json:"sample_count"`
	EdgeMean       float64      `json:"edge_mean"`
	EdgeStdDev     float64      `json:"edge_std_dev"`
	BlueMean       float64      `json:"blue_mean"`
	BlueStdDev     float64      `json:"blue_std_dev"`
	RecommendedMin float64      `json:"recommended_min"`
	RecommendedMax float64      `json:"recommended_max"`
}

// Recalculate derives updated classification thresholds from the feedback
// log. A boundary moves to the midpoint between the mean edge (or blue)
// densities of its two adjacent stages, but only when both stages have
// enough confirmed samples. The result is validated against the base
// thresholds; an inconsistent update is discarded.
func (s *Store) Recalculate(ctx context.Context, base classifier.Thresholds) (classifier.Thresholds, []StageStats, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return base, nil, err
	}

	edgeByStage := map[models.Stage][]float64{}
	blueByStage := map[models.Stage][]float64{}
	for _, e := range entries {
		stage := e.TrueStage()
		edgeByStage[stage] = append(edgeByStage[stage], e.EdgeDensity)
		blueByStage[stage] = append(blueByStage[stage], e.BlueRatio)
	}

	stats := make([]StageStats, 0, 3)
	for _, stage := range []models.Stage{models.StageFoundation, models.StageMounting, models.StageInstallation} {
		edges := edgeByStage[stage]
		if len(edges) == 0 {
			continue
		}
		edgeMean, edgeStd := meanStd(edges)
		blueMean, blueStd := meanStd(blueByStage[stage])
		stats = append(stats, StageStats{
			Stage:          stage,
			SampleCount:    len(edges),
			EdgeMean:       edgeMean,
			EdgeStdDev:     edgeStd,
			BlueMean:       blueMean,
			BlueStdDev:     blueStd,
			RecommendedMin: edgeMean - edgeStd,
			RecommendedMax: edgeMean + edgeStd,
		})
	}

	updated := base
	if enough(edgeByStage, models.StageFoundation) && enough(edgeByStage, models.StageMounting) {
		updated.EdgeMount = midpoint(stat.Mean(edgeByStage[models.StageFoundation], nil),
			stat.Mean(edgeByStage[models.StageMounting], nil))
		updated.BlueMount = midpoint(stat.Mean(blueByStage[models.StageFoundation], nil),
			stat.Mean(blueByStage[models.StageMounting], nil))
	}
	if enough(edgeByStage, models.StageMounting) && enough(edgeByStage, models.StageInstallation) {
		updated.EdgeInstall = midpoint(stat.Mean(edgeByStage[models.StageMounting], nil),
			stat.Mean(edgeByStage[models.StageInstallation], nil))
		updated.BlueInstall = midpoint(stat.Mean(blueByStage[models.StageMounting], nil),
			stat.Mean(blueByStage[models.StageInstallation], nil))
	}

	if err := updated.Validate(); err != nil {
		// Feedback distribution is inconsistent with the stage ordering.
		// Keep the existing policy rather than adopt a broken one.
		return base, stats, nil
	}
	return updated, stats, nil
}

func enough(byStage map[models.Stage][]float64, stage models.Stage) bool {
	return len(byStage[stage]) >= minSamples
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := stat.Mean(values, nil)
	if len(values) < 2 {
		return mean, 0
	}
	return mean, stat.StdDev(values, nil)
}

func midpoint(a, b float64) float64 {
	m := (a + b) / 2
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}
