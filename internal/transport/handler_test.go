package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-solar-inspector/internal/classifier"
	"go-solar-inspector/internal/config"
	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/feedback"
	"go-solar-inspector/internal/observer"
	"go-solar-inspector/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	inspectResp *models.InspectionResponse
	inspectErr  error
	feedbackErr error
	thresholds  classifier.Thresholds

	lastRequest models.InspectionRequest
}

func (f *fakeService) Inspect(ctx context.Context, req models.InspectionRequest) (*models.InspectionResponse, error) {
	f.lastRequest = req
	return f.inspectResp, f.inspectErr
}

func (f *fakeService) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	return f.feedbackErr
}

func (f *fakeService) RecalculateThresholds(ctx context.Context) (classifier.Thresholds, []feedback.StageStats, error) {
	return f.thresholds, nil, nil
}

func (f *fakeService) CurrentThresholds() classifier.Thresholds {
	return f.thresholds
}

func testConfig() *config.Config {
	return &config.Config{
		MaxRequestBodySize: 1 << 20,
		RequestTimeout:     5 * time.Second,
	}
}

func doRequest(handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	handler := NewHandler(&fakeService{}, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("Expected status available, got %v", body["status"])
	}
}

func TestAnalyze_Success(t *testing.T) {
	svc := &fakeService{
		inspectResp: &models.InspectionResponse{
			Result: models.AnalysisResult{
				ImageRef: "https://example.com/site.jpg",
				Stage:    models.StageInstallation,
				Scores:   models.Scores{ProgressPct: 82.5, PanelCount: 14, Confidence: 0.885},
			},
		},
		thresholds: classifier.DefaultThresholds(),
	}
	handler := NewHandler(svc, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodPost, "/analyze", models.InspectionRequest{
		ImageRef: "https://example.com/site.jpg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.InspectionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if resp.Result.Stage != models.StageInstallation {
		t.Errorf("Expected installation stage, got %s", resp.Result.Stage)
	}
}

func TestAnalyze_MissingImageRef(t *testing.T) {
	handler := NewHandler(&fakeService{}, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodPost, "/analyze", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing image_ref, got %d", w.Code)
	}
}

func TestAnalyze_ServiceErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation error", apperrors.NewValidationError("bad ref", nil), http.StatusBadRequest},
		{"invalid image", apperrors.NewInvalidImageError("empty image", nil), http.StatusBadRequest},
		{"network error", apperrors.NewNetworkError("fetch failed", nil), http.StatusBadGateway},
		{"processing error", apperrors.NewProcessingError("render failed", nil), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&fakeService{inspectErr: tt.err}, observer.NewMetricsObserver(), testConfig())

			w := doRequest(handler, http.MethodPost, "/analyze", models.InspectionRequest{
				ImageRef: "https://example.com/site.jpg",
			})
			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestAnalyze_EnrichQueryParameter(t *testing.T) {
	svc := &fakeService{
		inspectResp: &models.InspectionResponse{},
		thresholds:  classifier.DefaultThresholds(),
	}
	handler := NewHandler(svc, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodPost, "/analyze?enrich=true", models.InspectionRequest{
		ImageRef: "https://example.com/site.jpg",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !svc.lastRequest.Enrich {
		t.Error("Expected enrich query parameter to override the body")
	}
}

func TestSubmitFeedback(t *testing.T) {
	handler := NewHandler(&fakeService{}, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodPost, "/feedback", models.FeedbackRequest{
		ImageRef:       "site.jpg",
		PredictedStage: "mounting",
		Correct:        true,
	})
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmitFeedback_ValidationError(t *testing.T) {
	svc := &fakeService{feedbackErr: apperrors.NewValidationError("invalid predicted_stage", nil)}
	handler := NewHandler(svc, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodPost, "/feedback", models.FeedbackRequest{
		ImageRef:       "site.jpg",
		PredictedStage: "demolition",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestShowThresholds(t *testing.T) {
	svc := &fakeService{thresholds: classifier.DefaultThresholds()}
	handler := NewHandler(svc, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodGet, "/feedback/thresholds", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got classifier.Thresholds
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if got != classifier.DefaultThresholds() {
		t.Errorf("Unexpected thresholds: %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(&fakeService{}, observer.NewMetricsObserver(), testConfig())

	w := doRequest(handler, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if _, ok := body["total_inspections"]; !ok {
		t.Error("Expected total_inspections in metrics")
	}
}
