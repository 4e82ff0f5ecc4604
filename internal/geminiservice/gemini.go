package geminiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"PantauSiKecil_AI/internal/config"
	"PantauSiKecil_AI/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const structuredMimeType = "application/json"

// --- Structs for Gemini API Request/Response ---

type GeminiPayload struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
}

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// Request is one generation: a single text prompt and, for structured use
// cases, the schema the reply should follow.
type Request struct {
	UseCase UseCase
	Prompt  string
	Schema  *GeminiSchema
}

// APIError is a non-200 answer from the Gemini API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Gemini API returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Gemini generateContent endpoint. It never retries.
type Client struct {
	apiKey     string
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a Client from the service configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:   cfg.GeminiAPIKey,
		endpoint: fmt.Sprintf("%s/models/%s:generateContent", cfg.GeminiBaseURL, cfg.GeminiModel),
		timeout:  cfg.GeminiTimeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Generate sends the prompt and returns the model's raw text.
func (c *Client) Generate(ctx context.Context, req Request) (text string, err error) {
	logger := zerolog.Ctx(ctx)
	started := time.Now()
	defer func() { metrics.ObserveModel(string(req.UseCase), started, err) }()

	payload := GeminiPayload{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: req.Prompt}}},
		},
	}
	if req.Schema != nil {
		payload.GenerationConfig = &GenerationConfig{
			ResponseMimeType: structuredMimeType,
			ResponseSchema:   req.Schema,
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	logger.Info().Str("use_case", string(req.UseCase)).Int("prompt_chars", len(req.Prompt)).Msg("Calling Gemini API...")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		logger.Warn().Err(apiErr).Msg("Gemini API call failed")
		return "", apiErr
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode Gemini response: %w", err)
	}

	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked by Gemini: %s", geminiResp.PromptFeedback.BlockReason)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content found in Gemini response")
	}

	var sb strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	logger.Info().
		Str("use_case", string(req.UseCase)).
		Str("finish_reason", geminiResp.Candidates[0].FinishReason).
		Dur("latency", time.Since(started)).
		Msg("Gemini API call succeeded")

	return sb.String(), nil
}
