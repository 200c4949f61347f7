package enrichment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/logger"
	"go-solar-inspector/pkg/models"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Describer produces free-text commentary for an analysis result. Best
// effort: callers must treat failures as recoverable.
type Describer interface {
	Describe(ctx context.Context, imageJPEG []byte, result models.AnalysisResult) (string, error)
}

// Engine calls the OpenAI chat-completions API with the site image and the
// computer-vision results.
type Engine struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// New creates an enrichment engine. The timeout bounds each attempt.
func New(apiKey, model string, timeout time.Duration) *Engine {
	return &Engine{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// NewWithBaseURL creates an engine against a custom endpoint. Used in tests.
func NewWithBaseURL(apiKey, model, baseURL string, timeout time.Duration) *Engine {
	e := New(apiKey, model, timeout)
	e.baseURL = strings.TrimRight(baseURL, "/")
	return e
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Describe requests narrative commentary for the analyzed image. The call
// is retried once on transient failure; any remaining error is returned as
// enrichment_unavailable so the report pipeline can degrade gracefully.
func (e *Engine) Describe(ctx context.Context, imageJPEG []byte, result models.AnalysisResult) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			logger.WithError(lastErr).Warn("Enrichment attempt failed, retrying once")
		}
		text, err := e.describeOnce(ctx, imageJPEG, result)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", apperrors.NewEnrichmentError("AI commentary unavailable", lastErr)
}

func (e *Engine) describeOnce(ctx context.Context, imageJPEG []byte, result models.AnalysisResult) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(imageJPEG)

	body := chatRequest{
		Model:     e.model,
		MaxTokens: 1000,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are an expert solar plant construction analyst providing detailed technical assessments.",
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: buildPrompt(result)},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/jpeg;base64," + encoded,
					}},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("openai error (%s): %s", parsed.Error.Type, parsed.Error.Message)
		}
		return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, truncateBytes(raw, 200))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("openai returned no content")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func buildPrompt(result models.AnalysisResult) string {
	return fmt.Sprintf(`You are an expert solar plant construction analyst. Analyze this construction site image and provide detailed insights.

Computer Vision detected:
- Stage: %s
- Progress: %.0f%%
- Panel Count: %d
- Edge Density: %.3f (structural complexity)
- Blue/Metallic Ratio: %.3f (panel surfaces)

Please provide:
1. Detailed explanation of current construction progress
2. Specific observations about what you see in the image
3. Quality assessment and potential issues
4. Detailed next steps and recommendations
5. Timeline estimation for completion

Be specific and professional, as this is for construction management.`,
		result.Stage.Display(),
		result.Scores.ProgressPct,
		result.Scores.PanelCount,
		result.Features.EdgeDensity,
		result.Features.BlueRatio,
	)
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
