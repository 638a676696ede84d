package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAuthFailed means the upstream rejected our API key. Surfaced, never
	// retried.
	ErrAuthFailed = errors.New("generative service rejected API key")

	// ErrQuotaExceeded means the upstream rate limit or quota was hit.
	// Surfaced, never retried; retrying is the caller's decision.
	ErrQuotaExceeded = errors.New("generative service quota exceeded")
)

// Generator produces text from a prompt. Implementations must map upstream
// authentication and quota failures to ErrAuthFailed and ErrQuotaExceeded.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Generative Language REST API.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewGeminiClient(baseURL, model, apiKey string) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.NewString()

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: calling generative service: %w", requestID, err)
	}
	defer resp.Body.Close()

	slog.Debug("generative service call",
		"request_id", requestID,
		"model", c.model,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("request %s: %w", requestID, ErrAuthFailed)
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("request %s: %w", requestID, ErrQuotaExceeded)
	default:
		return "", fmt.Errorf("request %s: generative service returned status %d", requestID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("request %s: reading generate response: %w", requestID, err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("request %s: decoding generate response: %w", requestID, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("request %s: generative service returned no candidates", requestID)
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("request %s: generative service returned empty text", requestID)
	}

	return text, nil
}
