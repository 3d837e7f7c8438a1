// Package llm talks to an OpenAI-compatible chat-completion endpoint and
// turns its loosely structured replies into role assessments.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Options configures the inference client.
type Options struct {
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Logger        *zap.Logger
}

type Option func(*Options)

func WithBaseURL(url string) Option {
	return func(o *Options) { o.BaseURL = url }
}

func WithAPIKey(key string) Option {
	return func(o *Options) { o.APIKey = key }
}

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Client is a thin blocking wrapper around the chat-completion API.
// Ollama's OpenAI-compatible /v1 endpoint is the default target, so the
// same client serves local and hosted models.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration

	attempts int
	delay    time.Duration
	logger   *zap.Logger
}

func NewClient(opts ...Option) (*Client, error) {
	options := &Options{
		BaseURL:       "http://localhost:11434/v1",
		APIKey:        "ollama",
		Timeout:       120 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Second,
		Logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Model == "" {
		return nil, fmt.Errorf("model must not be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}

	conf := openai.DefaultConfig(options.APIKey)
	conf.BaseURL = options.BaseURL

	return &Client{
		api:      openai.NewClientWithConfig(conf),
		model:    options.Model,
		timeout:  options.Timeout,
		attempts: options.RetryAttempts,
		delay:    options.RetryDelay,
		logger:   options.Logger,
	}, nil
}

// Complete sends one prompt and returns the raw model text. Retries are
// bounded; after the last attempt the error surfaces as ErrInference so a
// persistent failure is never masked.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		text, err := c.completeOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		c.logger.Warn("inference attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.attempts),
			zap.Error(err))

		if attempt < c.attempts {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrInference, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.delay):
			}
		}
	}

	return "", fmt.Errorf("%w: %v", ErrInference, lastErr)
}

func (c *Client) completeOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
