package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-solar-inspector/internal/analyzer"
	"go-solar-inspector/internal/classifier"
	"go-solar-inspector/internal/enrichment"
	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/feedback"
	"go-solar-inspector/internal/logger"
	"go-solar-inspector/internal/observer"
	"go-solar-inspector/internal/report"
	"go-solar-inspector/internal/repository"
	"go-solar-inspector/internal/scorer"
	"go-solar-inspector/pkg/models"
)

// InspectionService runs the full analysis pipeline for a site image and
// manages the feedback-driven threshold state.
type InspectionService interface {
	Inspect(ctx context.Context, req models.InspectionRequest) (*models.InspectionResponse, error)
	SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error
	RecalculateThresholds(ctx context.Context) (classifier.Thresholds, []feedback.StageStats, error)
	CurrentThresholds() classifier.Thresholds
}

// Options configures optional pipeline behavior.
type Options struct {
	// EnrichmentTimeout bounds the AI commentary call. The analysis result
	// is never blocked past this deadline.
	EnrichmentTimeout time.Duration

	// ArchiveContainer, when set together with an Archiver, receives a copy
	// of every rendered PDF.
	ArchiveContainer string
}

// Archiver stores rendered report bytes remotely and returns their URL.
type Archiver interface {
	UploadReport(ctx context.Context, container, blobName string, data []byte) (string, error)
}

type inspectionService struct {
	images    repository.ImageRepository
	extractor analyzer.FeatureExtractor
	assembler *report.Assembler
	renderer  *report.PDFRenderer
	describer enrichment.Describer // nil when enrichment is not configured
	feedback  *feedback.Store
	archiver  Archiver // nil when archiving is not configured
	publisher observer.Subject
	opts      Options

	// mu guards thresholds, the only mutable classification state.
	// Feedback recalculation replaces it; inspections read it.
	mu         sync.RWMutex
	thresholds classifier.Thresholds
}

// NewInspectionService wires the pipeline. describer and archiver may be nil.
func NewInspectionService(
	images repository.ImageRepository,
	extractor analyzer.FeatureExtractor,
	renderer *report.PDFRenderer,
	describer enrichment.Describer,
	feedbackStore *feedback.Store,
	archiver Archiver,
	publisher observer.Subject,
	thresholds classifier.Thresholds,
	opts Options,
) InspectionService {
	return &inspectionService{
		images:     images,
		extractor:  extractor,
		assembler:  report.NewAssembler(),
		renderer:   renderer,
		describer:  describer,
		feedback:   feedbackStore,
		archiver:   archiver,
		publisher:  publisher,
		opts:       opts,
		thresholds: thresholds,
	}
}

func (s *inspectionService) CurrentThresholds() classifier.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thresholds
}

func (s *inspectionService) Inspect(ctx context.Context, req models.InspectionRequest) (*models.InspectionResponse, error) {
	startTime := time.Now()
	s.notify(ctx, observer.InspectionEvent{
		EventType: observer.InspectionStarted,
		Timestamp: startTime,
		ImageRef:  req.ImageRef,
	})

	thresholds := s.CurrentThresholds().Apply(req.CustomThresholds)
	if err := thresholds.Validate(); err != nil {
		verr := apperrors.NewValidationError("invalid custom thresholds", err)
		s.notifyFailure(ctx, req.ImageRef, startTime, verr)
		return nil, verr
	}

	img, err := s.images.LoadImage(ctx, req.ImageRef)
	if err != nil {
		s.notifyFailure(ctx, req.ImageRef, startTime, err)
		return nil, err
	}

	features, err := s.extractor.Extract(img)
	if err != nil {
		s.notifyFailure(ctx, req.ImageRef, startTime, err)
		return nil, err
	}

	stage := classifier.ClassifyWith(thresholds, features)
	scores := scorer.New(thresholds).Score(features, stage)

	result := models.AnalysisResult{
		ImageRef:          req.ImageRef,
		Stage:             stage,
		Features:          features,
		Scores:            scores,
		Timestamp:         startTime.UTC(),
		ProcessingTimeSec: time.Since(startTime).Seconds(),
	}

	var narrative string
	if req.Enrich && s.describer != nil {
		narrative = s.enrich(ctx, img, result)
	}

	response := &models.InspectionResponse{Result: result}

	if req.RenderPDF || req.Enrich {
		record := s.assembler.Assemble(result, narrative)
		response.Report = &record

		if req.RenderPDF {
			rendered, err := s.renderer.Render(record)
			if err != nil {
				s.notifyFailure(ctx, req.ImageRef, startTime, err)
				return nil, apperrors.NewProcessingError("report rendering failed", err)
			}
			s.archive(ctx, rendered)
			response.Files = rendered

			s.notify(ctx, observer.InspectionEvent{
				EventType: observer.ReportRendered,
				Timestamp: time.Now(),
				ImageRef:  req.ImageRef,
				Stage:     stage.String(),
				Success:   true,
				Metadata:  map[string]interface{}{"pdf_path": rendered.PDFPath},
			})
		}
	}

	response.Result.ProcessingTimeSec = time.Since(startTime).Seconds()
	s.notify(ctx, observer.InspectionEvent{
		EventType:      observer.InspectionCompleted,
		Timestamp:      time.Now(),
		ImageRef:       req.ImageRef,
		Stage:          stage.String(),
		ProcessingTime: time.Since(startTime),
		Success:        true,
		Metadata: map[string]interface{}{
			"progress_pct": scores.ProgressPct,
			"confidence":   scores.Confidence,
			"panel_count":  scores.PanelCount,
		},
	})
	return response, nil
}

// enrich requests AI commentary under its own deadline. Any failure is
// logged and reported as an event; the caller falls back to the rule-based
// narrative.
func (s *inspectionService) enrich(ctx context.Context, img image.Image, result models.AnalysisResult) string {
	enrichCtx := ctx
	if s.opts.EnrichmentTimeout > 0 {
		var cancel context.CancelFunc
		enrichCtx, cancel = context.WithTimeout(ctx, s.opts.EnrichmentTimeout)
		defer cancel()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		logger.WithError(err).WithField("image_ref", result.ImageRef).
			Warn("Failed to encode image for enrichment")
		return ""
	}

	narrative, err := s.describer.Describe(enrichCtx, buf.Bytes(), result)
	if err != nil {
		logger.WithError(err).WithField("image_ref", result.ImageRef).
			Warn("AI enrichment unavailable")
		s.notify(ctx, observer.InspectionEvent{
			EventType:    observer.EnrichmentFailed,
			Timestamp:    time.Now(),
			ImageRef:     result.ImageRef,
			Stage:        result.Stage.String(),
			ErrorMessage: err.Error(),
		})
		return ""
	}
	return narrative
}

func (s *inspectionService) archive(ctx context.Context, rendered *models.RenderedReport) {
	if s.archiver == nil || s.opts.ArchiveContainer == "" {
		return
	}

	data, err := os.ReadFile(rendered.PDFPath)
	if err != nil {
		logger.WithError(err).WithField("pdf_path", rendered.PDFPath).
			Warn("Failed to read rendered report for archiving")
		return
	}

	url, err := s.archiver.UploadReport(ctx, s.opts.ArchiveContainer, filepath.Base(rendered.PDFPath), data)
	if err != nil {
		logger.WithError(err).WithField("pdf_path", rendered.PDFPath).
			Warn("Failed to archive report")
		return
	}
	rendered.ArchiveURL = url
}

func (s *inspectionService) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	predicted, err := models.ParseStage(req.PredictedStage)
	if err != nil {
		return apperrors.NewValidationError("invalid predicted_stage", err)
	}

	entry := feedback.Entry{
		ImageRef:       req.ImageRef,
		PredictedStage: predicted,
		Correct:        req.Correct,
		Comments:       req.Comments,
		EdgeDensity:    req.EdgeDensity,
		BlueRatio:      req.BlueRatio,
	}

	if !req.Correct {
		if req.CorrectedStage == "" {
			return apperrors.NewValidationError("corrected_stage is required when correct is false", nil)
		}
		corrected, err := models.ParseStage(req.CorrectedStage)
		if err != nil {
			return apperrors.NewValidationError("invalid corrected_stage", err)
		}
		entry.CorrectedStage = &corrected
	}

	if err := s.feedback.Add(ctx, entry); err != nil {
		return apperrors.NewProcessingError("failed to store feedback", err)
	}

	s.notify(ctx, observer.InspectionEvent{
		EventType: observer.FeedbackRecorded,
		Timestamp: time.Now(),
		ImageRef:  req.ImageRef,
		Stage:     entry.TrueStage().String(),
		Success:   true,
		Metadata:  map[string]interface{}{"correct": req.Correct},
	})
	return nil
}

func (s *inspectionService) RecalculateThresholds(ctx context.Context) (classifier.Thresholds, []feedback.StageStats, error) {
	current := s.CurrentThresholds()
	updated, stats, err := s.feedback.Recalculate(ctx, current)
	if err != nil {
		return current, nil, apperrors.NewProcessingError("threshold recalculation failed", err)
	}

	if updated != current {
		s.mu.Lock()
		s.thresholds = updated
		s.mu.Unlock()

		s.notify(ctx, observer.InspectionEvent{
			EventType: observer.ThresholdsUpdated,
			Timestamp: time.Now(),
			Success:   true,
			Metadata: map[string]interface{}{
				"edge_install": updated.EdgeInstall,
				"blue_install": updated.BlueInstall,
				"edge_mount":   updated.EdgeMount,
				"blue_mount":   updated.BlueMount,
			},
		})
	}
	return updated, stats, nil
}

func (s *inspectionService) notify(ctx context.Context, event observer.InspectionEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *inspectionService) notifyFailure(ctx context.Context, imageRef string, startTime time.Time, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"image_ref": imageRef,
	}).Error("Inspection failed")
	s.notify(ctx, observer.InspectionEvent{
		EventType:      observer.InspectionFailed,
		Timestamp:      time.Now(),
		ImageRef:       imageRef,
		ProcessingTime: time.Since(startTime),
		ErrorMessage:   err.Error(),
	})
}
