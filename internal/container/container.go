package container

import (
	"fmt"
	"net/http"

	"go-solar-inspector/internal/analyzer"
	"go-solar-inspector/internal/config"
	"go-solar-inspector/internal/enrichment"
	"go-solar-inspector/internal/feedback"
	"go-solar-inspector/internal/logger"
	"go-solar-inspector/internal/observer"
	"go-solar-inspector/internal/report"
	"go-solar-inspector/internal/repository"
	"go-solar-inspector/internal/service"
	"go-solar-inspector/internal/storage"
	"go-solar-inspector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	feedbackStore *feedback.Store
	metrics       *observer.MetricsObserver
	service       service.InspectionService
	handler       http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	feedbackStore, err := feedback.Open(cfg.FeedbackDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback store: %w", err)
	}

	var blobStorage storage.BlobStorage
	if cfg.ArchiveEnabled() {
		blobStorage, err = storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			_ = feedbackStore.Close()
			return nil, fmt.Errorf("failed to initialize azure storage: %w", err)
		}
	}

	imageRepository := repository.NewImageRepository(
		storage.NewHTTPImageFetcher(),
		storage.NewFileImageLoader(),
		blobStorage,
	)

	var describer enrichment.Describer
	if cfg.EnrichmentEnabled() {
		describer = enrichment.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.EnrichmentTimeout)
	}

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	var archiver service.Archiver
	if blobStorage != nil {
		archiver = blobStorage
	}

	svc := service.NewInspectionService(
		imageRepository,
		analyzer.NewFeatureExtractor(),
		report.NewPDFRenderer(cfg.ReportsDir, cfg.ChartsDir),
		describer,
		feedbackStore,
		archiver,
		publisher,
		cfg.Thresholds,
		service.Options{
			EnrichmentTimeout: cfg.EnrichmentTimeout,
			ArchiveContainer:  cfg.AzureContainer,
		},
	)

	return &Container{
		config:        cfg,
		feedbackStore: feedbackStore,
		metrics:       metrics,
		service:       svc,
		handler:       transport.NewHandler(svc, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the inspection service
func (c *Container) Service() service.InspectionService {
	return c.service
}

// Close releases held resources.
func (c *Container) Close() error {
	return c.feedbackStore.Close()
}
