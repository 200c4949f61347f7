package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// InspectionEvent represents one step of an inspection pipeline run.
type InspectionEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	ImageRef       string                 `json:"image_ref"`
	Stage          string                 `json:"stage,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of inspection event
type EventType string

const (
	// InspectionStarted when an image analysis begins
	InspectionStarted EventType = "inspection_started"
	// InspectionCompleted when analysis finishes successfully
	InspectionCompleted EventType = "inspection_completed"
	// InspectionFailed when analysis fails
	InspectionFailed EventType = "inspection_failed"
	// EnrichmentFailed when the AI commentary call fails; the inspection
	// itself still succeeds
	EnrichmentFailed EventType = "enrichment_failed"
	// ReportRendered when a PDF report has been written
	ReportRendered EventType = "report_rendered"
	// FeedbackRecorded when a supervisor verdict is stored
	FeedbackRecorded EventType = "feedback_recorded"
	// ThresholdsUpdated when feedback recalculation changed the thresholds
	ThresholdsUpdated EventType = "thresholds_updated"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event InspectionEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event InspectionEvent)
}

// LoggingObserver logs inspection events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles inspection events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event InspectionEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"image_ref":       event.ImageRef,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.Stage != "" {
		fields["stage"] = event.Stage
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case InspectionStarted:
		o.logger.WithFields(fields).Info("Site inspection started")
	case InspectionCompleted:
		o.logger.WithFields(fields).Info("Site inspection completed")
	case InspectionFailed:
		o.logger.WithFields(fields).Error("Site inspection failed")
	case EnrichmentFailed:
		o.logger.WithFields(fields).Warn("AI enrichment unavailable, report proceeds without narrative")
	case ReportRendered:
		o.logger.WithFields(fields).Info("Report rendered")
	case FeedbackRecorded:
		o.logger.WithFields(fields).Info("Supervisor feedback recorded")
	case ThresholdsUpdated:
		o.logger.WithFields(fields).Info("Classification thresholds updated from feedback")
	default:
		o.logger.WithFields(fields).Info("Inspection event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from inspection events
type MetricsObserver struct {
	mu                    sync.RWMutex
	totalInspections      int64
	successfulInspections int64
	failedInspections     int64
	enrichmentFailures    int64
	reportsRendered       int64
	inspectionsByStage    map[string]int64
	totalProcessingTime   time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		inspectionsByStage: make(map[string]int64),
	}
}

// OnEvent handles inspection events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event InspectionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case InspectionStarted:
		o.totalInspections++
	case InspectionCompleted:
		o.successfulInspections++
		o.totalProcessingTime += event.ProcessingTime
		if event.Stage != "" {
			o.inspectionsByStage[event.Stage]++
		}
	case InspectionFailed:
		o.failedInspections++
	case EnrichmentFailed:
		o.enrichmentFailures++
	case ReportRendered:
		o.reportsRendered++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulInspections > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulInspections)
	}

	byStage := make(map[string]int64, len(o.inspectionsByStage))
	for k, v := range o.inspectionsByStage {
		byStage[k] = v
	}

	return map[string]interface{}{
		"total_inspections":      o.totalInspections,
		"successful_inspections": o.successfulInspections,
		"failed_inspections":     o.failedInspections,
		"enrichment_failures":    o.enrichmentFailures,
		"reports_rendered":       o.reportsRendered,
		"inspections_by_stage":   byStage,
		"avg_processing_time":    avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event InspectionEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
