package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/whereismy/whereismy/internal/model"
	"github.com/whereismy/whereismy/internal/vector"
)

// Config holds the embedding endpoint configuration.
type Config struct {
	// BaseURL of an OpenAI-compatible embeddings endpoint, typically a local
	// inference server hosting the sentence-embedding model.
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Client generates embeddings through an OpenAI-compatible API.
type Client struct {
	client *openai.Client
	config Config
}

// NewClient creates an embedding client. Call Probe before serving traffic to
// verify the endpoint is reachable and produces vectors of the right width.
func NewClient(cfg Config) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// Dimension returns the embedding width.
func (c *Client) Dimension() int {
	return vector.Dim
}

// Embed generates an embedding vector for the given text. Transient failures
// are retried with exponential backoff; the final failure wraps
// model.ErrEmbedding so callers can refuse to persist a partial item.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var result []float32

	err := c.doWithRetry(ctx, func(callCtx context.Context) error {
		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.config.Model),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty embedding response")
		}
		result = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}

	if len(result) != vector.Dim {
		return nil, fmt.Errorf("%w: endpoint returned %d dimensions, want %d",
			model.ErrEmbedding, len(result), vector.Dim)
	}
	return result, nil
}

// Probe embeds a fixed string to verify the endpoint at startup. A failure
// here is fatal to the process: the registry cannot match without the model.
func (c *Client) Probe(ctx context.Context) error {
	if _, err := c.Embed(ctx, "startup probe"); err != nil {
		return fmt.Errorf("embedding endpoint unavailable: %w", err)
	}
	slog.Info("embedding endpoint ready", "model", c.config.Model, "dimension", vector.Dim)
	return nil
}

// doWithRetry runs fn with a per-call timeout, retrying transient failures
// with exponential backoff. Context cancellation stops the retry loop.
func (c *Client) doWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying embedding call", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		lastErr = fn(callCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}
