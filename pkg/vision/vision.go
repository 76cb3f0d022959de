// Package vision wraps the external vision/language model backends used to
// read scorecard images and documents. Callers hand over document bytes and a
// prompt; the backend returns JSON text shaped by the prompt's schema.
package vision

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrMissingAPIKey indicates the selected provider has no credentials configured.
var ErrMissingAPIKey = eris.New("vision: missing API key")

// Document is an image or PDF to send to the model.
type Document struct {
	Data     []byte
	MIMEType string
}

// Client defines the single model operation the extraction pipeline uses.
type Client interface {
	ExtractJSON(ctx context.Context, doc Document, prompt string) (json.RawMessage, error)
}

// Config selects and configures a model backend.
type Config struct {
	Provider          string // "anthropic" (default) or "gemini"
	AnthropicKey      string
	AnthropicModel    string
	GeminiKey         string
	GeminiModel       string
	MaxTokens         int64
	RequestsPerSecond float64
}

// NewClient creates a Client for the configured provider. A positive
// RequestsPerSecond wraps the client in a rate limiter.
func NewClient(cfg Config) (Client, error) {
	var (
		client Client
		err    error
	)
	switch cfg.Provider {
	case "anthropic", "":
		client, err = newAnthropicClient(cfg)
	case "gemini":
		client, err = newGeminiClient(cfg)
	default:
		return nil, eris.Errorf("vision: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond > 0 {
		client = &limitedClient{inner: client, limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)}
	}
	return client, nil
}

// limitedClient applies a client-side rate limit around model calls.
type limitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

func (c *limitedClient) ExtractJSON(ctx context.Context, doc Document, prompt string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "vision: rate limit wait")
	}
	return c.inner.ExtractJSON(ctx, doc, prompt)
}

// cleanJSON strips markdown code fences and surrounding prose the model may
// wrap around its JSON object despite instructions.
func cleanJSON(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	return strings.TrimSpace(s)
}
