package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-solar-inspector/internal/config"
	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/logger"
	"go-solar-inspector/internal/observer"
	"go-solar-inspector/internal/service"
	"go-solar-inspector/pkg/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP API over the inspection service.
func NewHandler(svc service.InspectionService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", showMetrics(metrics))
	r.POST("/analyze", analyzeImage(svc, cfg))
	r.POST("/feedback", submitFeedback(svc))
	r.GET("/feedback/thresholds", showThresholds(svc))
	r.POST("/feedback/recalculate", recalculateThresholds(svc))

	return r
}

func analyzeImage(svc service.InspectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing site analysis request")

		var req models.InspectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		// Enrich may also be toggled by query parameter (takes precedence
		// over the JSON body).
		if enrichQuery := c.Query("enrich"); enrichQuery != "" {
			req.Enrich = enrichQuery == "true"
		}

		response, err := svc.Inspect(ctx, req)
		if err != nil {
			statusCode := determineStatusCode(err)
			logger.WithError(err).WithFields(logrus.Fields{
				"image_ref": req.ImageRef,
				"ip":        c.ClientIP(),
			}).Error("Site analysis failed")
			respondError(c, statusCode, "analysis failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"image_ref":          req.ImageRef,
			"stage":              response.Result.Stage.String(),
			"progress_pct":       response.Result.Scores.ProgressPct,
			"confidence":         response.Result.Scores.Confidence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Site analysis completed successfully")

		c.JSON(http.StatusOK, response)
	}
}

func submitFeedback(svc service.InspectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		if err := svc.SubmitFeedback(c.Request.Context(), req); err != nil {
			respondError(c, determineStatusCode(err), "failed to record feedback", err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
	}
}

func showThresholds(svc service.InspectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.CurrentThresholds())
	}
}

func recalculateThresholds(svc service.InspectionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		thresholds, stats, err := svc.RecalculateThresholds(c.Request.Context())
		if err != nil {
			respondError(c, determineStatusCode(err), "threshold recalculation failed", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"thresholds":  thresholds,
			"stage_stats": stats,
		})
	}
}

func showMetrics(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, metrics.GetMetrics())
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
