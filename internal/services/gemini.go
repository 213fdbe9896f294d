package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/skill-analyzer/internal/logger"
)

// maxResponseBody caps how much of an upstream body is read and retained.
const maxResponseBody = 4 << 20

// ReasoningClient sends one prompt and returns the raw upstream body.
type ReasoningClient interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
}

type geminiClient struct {
	httpClient *http.Client
	cfg        GeminiConfig
	log        *zap.Logger
}

type generationConfig struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
}

type generateContentRequest struct {
	Contents         []*genai.Content `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// NewGeminiClient talks to the generateContent REST endpoint directly so
// the caller gets the status code and untouched body.
func NewGeminiClient(cfg GeminiConfig, log *zap.Logger) (ReasoningClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrInvalidInput)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &geminiClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		log:        logger.OrNop(log),
	}, nil
}

func (g *geminiClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model)
}

// Generate implements ReasoningClient. It does not retry.
func (g *geminiClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	temperature := g.cfg.Temperature
	payload := generateContentRequest{
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		GenerationConfig: generationConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.log.Warn("gemini transport failure", zap.String(logger.FieldModel, g.cfg.Model), zap.Error(err))
		return nil, &UpstreamFailure{Kind: TransportFailure, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		g.log.Warn("gemini body read failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, &UpstreamFailure{Kind: TransportFailure, StatusCode: resp.StatusCode, Body: raw, Err: err}
	}

	g.log.Debug("gemini response received",
		zap.String(logger.FieldModel, g.cfg.Model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("body_preview", logger.TruncateForLog(string(raw), 200)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamFailure{
			Kind:       UpstreamError,
			StatusCode: resp.StatusCode,
			Body:       raw,
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, logger.TruncateForLog(string(raw), 200)),
		}
	}

	return raw, nil
}
