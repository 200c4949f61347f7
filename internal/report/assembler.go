package report

import (
	"fmt"
	"time"

	"go-solar-inspector/pkg/models"
)

// Assembler packages an analysis result into a report record. It performs
// field mapping and defaulting only; scoring happened upstream.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates a report assembler.
func NewAssembler() *Assembler {
	return &Assembler{now: time.Now}
}

// Assemble builds a report record from an analysis result and optional AI
// narrative. An empty narrative is defaulted to a rule-based stage summary
// so the report is always complete.
func (a *Assembler) Assemble(result models.AnalysisResult, narrative string) models.ReportRecord {
	record := models.ReportRecord{
		ImageRef:        result.ImageRef,
		Stage:           result.Stage,
		ProgressPct:     result.Scores.ProgressPct,
		PanelCount:      result.Scores.PanelCount,
		Confidence:      result.Scores.Confidence,
		QualityScore:    result.Scores.QualityScore,
		SafetyScore:     result.Scores.SafetyScore,
		GeneratedAt:     a.now(),
		Features:        result.Features,
		Narrative:       narrative,
		NarrativeSource: "ai",
		Issues:          stageIssues(result.Stage),
		NextSteps:       stageNextSteps(result.Stage),
	}

	if record.Narrative == "" {
		record.Narrative = defaultNarrative(result)
		record.NarrativeSource = "rule_based"
	}
	return record
}

func stageIssues(stage models.Stage) []string {
	switch stage {
	case models.StageInstallation:
		return []string{"Verify panel alignment", "Check electrical connections"}
	case models.StageMounting:
		return []string{"Mounting structure visible", "Panel placement in progress"}
	default:
		return []string{"Site preparation phase", "Foundation work detected"}
	}
}

func stageNextSteps(stage models.Stage) []string {
	switch stage {
	case models.StageInstallation:
		return []string{"Complete wiring", "Final system testing"}
	case models.StageMounting:
		return []string{"Complete rail installation", "Begin panel mounting"}
	default:
		return []string{"Complete ground leveling", "Install mounting rails"}
	}
}

// defaultNarrative is the local fallback when AI enrichment is unavailable.
func defaultNarrative(result models.AnalysisResult) string {
	fv := result.Features
	switch result.Stage {
	case models.StageInstallation:
		return fmt.Sprintf(
			"INSTALLATION PHASE ANALYSIS (%.0f%% Complete)\n\n"+
				"Solar panels are being installed on the mounting structures. "+
				"High structural complexity (edge density: %.3f) combined with a significant "+
				"panel-surface ratio (%.3f) indicates active panel placement. "+
				"Approximately %d panel structures were detected.",
			result.Scores.ProgressPct, fv.EdgeDensity, fv.BlueRatio, result.Scores.PanelCount)
	case models.StageMounting:
		return fmt.Sprintf(
			"MOUNTING PHASE ANALYSIS (%.0f%% Complete)\n\n"+
				"Mounting structures are visible on site. Medium structural complexity "+
				"(edge density: %.3f) with partial panel-surface coverage (%.3f) indicates "+
				"rail installation and early panel placement.",
			result.Scores.ProgressPct, fv.EdgeDensity, fv.BlueRatio)
	default:
		return fmt.Sprintf(
			"FOUNDATION PHASE ANALYSIS (%.0f%% Complete)\n\n"+
				"The construction site is in the early foundation phase. Low structural "+
				"complexity (edge density: %.3f) indicates site preparation and ground "+
				"work are underway.",
			result.Scores.ProgressPct, fv.EdgeDensity)
	}
}
