// Package ai talks to the Gemini API for feedback text and embeddings and
// provides the local and cached embedders used when it is unavailable.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultModel          = "gemini-1.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// modelsAPI is the subset of *genai.Models the client relies on.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Options struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	// MaxRetries is the number of extra attempts on transient API errors.
	MaxRetries int
	// Timeout bounds every single API call. Zero disables it.
	Timeout time.Duration
}

// Client is a Gemini API client shared by the feedback generator and the
// embedder.
type Client struct {
	models         modelsAPI
	model          string
	embeddingModel string
	maxRetries     int
	timeout        time.Duration
	logger         *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, opts, logger), nil
}

func newClient(models modelsAPI, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	embeddingModel := strings.TrimSpace(opts.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		models:         models,
		model:          model,
		embeddingModel: embeddingModel,
		maxRetries:     opts.MaxRetries,
		timeout:        opts.Timeout,
		logger:         logger.With(zap.String("ai_provider", "gemini")),
		sleep:          sleepCtx,
	}
}

func (c *Client) Model() string          { return c.model }
func (c *Client) EmbeddingModel() string { return c.embeddingModel }

// GenerateContent sends prompt to the text model and returns the joined
// text of every candidate part.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var resp *genai.GenerateContentResponse
	err := c.withRetry(ctx, "generate", func(ctx context.Context) error {
		var err error
		resp, err = c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(builder.String()) == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return builder.String(), nil
}

// withRetry runs call up to maxRetries+1 times, backing off exponentially
// between attempts. Only transient API errors are retried.
func (c *Client) withRetry(ctx context.Context, op string, call func(context.Context) error) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		err := call(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || i == c.maxRetries {
			break
		}

		backoff := time.Duration(1<<i) * time.Second
		c.logger.Warn("gemini call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
	}
	return lastErr
}

func retryable(err error) bool {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	default:
		return errors.Is(err, context.DeadlineExceeded)
	}
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
