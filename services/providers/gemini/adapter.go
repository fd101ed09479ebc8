package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/assistant-proxy/services/providers"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

// GeminiAdapter implements the Provider interface against the
// generative-language REST endpoint. The API key travels as a query
// parameter on the request URL and must never appear in logs.
type GeminiAdapter struct {
	config     providers.ProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeminiAdapter creates a new Gemini adapter
func NewGeminiAdapter(config providers.ProviderConfig, logger *zap.Logger) *GeminiAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &GeminiAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Name returns the provider name
func (a *GeminiAdapter) Name() string {
	return "gemini"
}

// GenerateContent performs a single generateContent request. No retries:
// one inbound request maps to exactly one outbound call.
func (a *GeminiAdapter) GenerateContent(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	callID := uuid.New().String()

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeMarshal, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(), bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeRequest, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		a.logger.Error("gemini request failed",
			zap.String("call_id", callID),
			zap.String("model", a.config.Model),
			zap.Error(err))
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeHTTP, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeRead, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		// Raw provider error text stays server-side; callers see a
		// generic upstream failure.
		a.logger.Error("gemini returned non-success status",
			zap.String("call_id", callID),
			zap.String("model", a.config.Model),
			zap.Int("status", httpResp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeUpstreamStatus,
			fmt.Sprintf("provider returned status %d", httpResp.StatusCode), httpResp.StatusCode, nil)
	}

	var genResp providers.GenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, providers.NewProviderError(a.Name(), providers.ErrCodeUnmarshal, "failed to unmarshal response", httpResp.StatusCode, err)
	}

	a.logger.Debug("gemini call completed",
		zap.String("call_id", callID),
		zap.String("model", a.config.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("candidates", len(genResp.Candidates)))

	return &genResp, nil
}

// endpoint builds the generateContent URL with the key as a query parameter
func (a *GeminiAdapter) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		a.config.BaseURL, a.config.Model, url.QueryEscape(a.config.APIKey))
}
