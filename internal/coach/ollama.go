package coach

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

	"golang.org/x/time/rate"
)

// ErrUnavailable wraps every failure to obtain text from the model server.
var ErrUnavailable = errors.New("language model unavailable")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "mistral:7b-instruct"
	DefaultTimeout     = 15 * time.Second
)

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaSuccessResponse struct {
	Response string `json:"response"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

// OllamaClient talks to a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type OllamaOption func(*OllamaClient)

// WithRateLimit caps outgoing requests. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) OllamaOption {
	return func(c *OllamaClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithHTTPClient(hc *http.Client) OllamaOption {
	return func(c *OllamaClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithOllamaLogger(l *slog.Logger) OllamaOption {
	return func(c *OllamaClient) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewOllamaClient(baseURL, model string, timeout time.Duration, opts ...OllamaOption) *OllamaClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOllamaURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OllamaClient) Model() string { return c.model }

// Generate returns the trimmed, non-empty model output. All failures wrap ErrUnavailable.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limit: %v", ErrUnavailable, err)
		}
	}

	reqBody, err := json.Marshal(ollamaRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("ollama_request_failed", "model", c.model, "error", err)
		return "", fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	c.logger.Debug("ollama_response", "model", c.model, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("%w: ollama API error: %s", ErrUnavailable, apiErr.Error)
		}
		return "", fmt.Errorf("%w: ollama API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var out ollamaSuccessResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return text, nil
}

// ExtractJSONBlock decodes the JSON object embedded in model output. Code
// fence lines are dropped and the outermost {...} span is used when present.
func ExtractJSONBlock(text string) (any, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		var kept []string
		for _, line := range strings.Split(cleaned, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		cleaned = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	if open := strings.Index(cleaned, "{"); open >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > open {
			cleaned = cleaned[open : end+1]
		}
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, fmt.Errorf("parse json block: %w", err)
	}
	return v, nil
}
