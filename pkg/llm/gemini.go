package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Gemini REST API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// retryBaseDelay is the base for exponential backoff between attempts.
const retryBaseDelay = time.Second

// GeminiClient implements Gateway over the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// GeminiOption customises a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(url string) GeminiOption {
	return func(c *GeminiClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) { c.httpClient = hc }
}

// NewGeminiClient creates a gateway client for the given API key and model.
func NewGeminiClient(apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	c := &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		// Per-call deadlines come from CallOptions.Timeout via context.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Invoke runs one catalogue task. Transport and malformed-output failures
// are retried up to opts.MaxRetries times with exponential backoff plus
// jitter; the final retry runs at temperature 0.0. After a malformed-output
// failure the temperature is forced to 0.0 for all remaining attempts.
func (c *GeminiClient) Invoke(ctx context.Context, kind TaskKind, prompt string, opts CallOptions, out any) error {
	spec, err := specFor(kind)
	if err != nil {
		return &Error{Kind: KindMalformedOutput, Task: kind, Err: err}
	}

	temperature := opts.Temperature
	if temperature == UseTaskTemperature {
		temperature = spec.temperature
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	attempts := opts.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && attempt == attempts-1 {
			temperature = 0.0
		}

		raw, genErr := c.generate(ctx, kind, spec.system, prompt, temperature, opts.MaxTokens, timeout)
		switch {
		case genErr != nil:
			lastErr = genErr
		default:
			decErr := decodeInto(raw, out)
			if decErr == nil {
				return nil
			}
			lastErr = &Error{Kind: KindMalformedOutput, Task: kind, Err: decErr}
		}

		if IsCancelled(lastErr) || !retryable(lastErr) {
			return lastErr
		}
		if IsMalformed(lastErr) {
			temperature = 0.0
		}
		if attempt == attempts-1 {
			break
		}

		delay := backoffDelay(attempt)
		slog.Warn("LLM call failed, retrying",
			"task", kind, "attempt", attempt+1, "delay", delay, "error", lastErr)
		select {
		case <-ctx.Done():
			return &Error{Kind: KindCancelled, Task: kind, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return lastErr
}

// backoffDelay computes base·2^attempt plus random jitter in [0, 1s).
func backoffDelay(attempt int) time.Duration {
	return retryBaseDelay*(1<<attempt) + time.Duration(rand.Float64()*float64(time.Second))
}

// generate performs one generateContent round-trip and returns the raw
// concatenated candidate text.
func (c *GeminiClient) generate(ctx context.Context, kind TaskKind, system, prompt string, temperature float64, maxTokens int, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: "application/json",
		},
	}
	if system != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindTransport, Task: kind, Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindTransport, Task: kind, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.transportError(ctx, kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.transportError(ctx, kind, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil {
			msg = apiErr.Error.Message
		}
		return "", &Error{Kind: KindTransport, Task: kind,
			Err: fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, msg)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindMalformedOutput, Task: kind, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(parsed.Candidates) == 0 {
		return "", &Error{Kind: KindMalformedOutput, Task: kind, Err: fmt.Errorf("response has no candidates")}
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", &Error{Kind: KindMalformedOutput, Task: kind, Err: fmt.Errorf("candidate has no text parts")}
	}
	return sb.String(), nil
}

// transportError distinguishes caller cancellation, per-call timeout, and
// genuine transport failures.
func (c *GeminiClient) transportError(ctx context.Context, kind TaskKind, err error) error {
	if ctx.Err() != nil {
		return &Error{Kind: KindCancelled, Task: kind, Err: ctx.Err()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Task: kind, Err: err}
	}
	return &Error{Kind: KindTransport, Task: kind, Err: err}
}
