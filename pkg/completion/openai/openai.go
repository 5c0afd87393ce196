package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/completion/ratelimit"
	"github.com/medassist/medassist/pkg/log"
)

var (
	// ErrInvalidConfig is returned when the client configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrEmptyAPIKey is returned when the API key is missing.
	ErrEmptyAPIKey = errors.New("API key cannot be empty")
)

// Config holds the configuration for the OpenAI completion client.
type Config struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// EmbeddingModel is the model to use for embeddings, e.g., "text-embedding-3-small".
	EmbeddingModel string
	// ChatModel is the model to use for chat completions, e.g., "gpt-4".
	ChatModel string
	// BaseURL is the base URL for the OpenAI API (for testing).
	BaseURL string
}

// Client implements the completion.Client interface using the OpenAI API.
// Every upstream call passes through the shared rate limiter first.
type Client struct {
	client         *openai.Client
	limiter        *ratelimit.Limiter
	embeddingModel string
	chatModel      string
}

// NewClient creates a new OpenAI completion client. The limiter may be nil,
// in which case calls are not throttled.
func NewClient(config Config, limiter *ratelimit.Limiter) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	// Set default models if not specified
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if config.ChatModel == "" {
		config.ChatModel = "gpt-4"
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if limiter == nil {
		limiter = ratelimit.New(0)
	}

	return &Client{
		client:         openai.NewClientWithConfig(clientConfig),
		limiter:        limiter,
		embeddingModel: config.EmbeddingModel,
		chatModel:      config.ChatModel,
	}, nil
}

// GenerateEmbeddings generates embeddings for the given texts using the OpenAI API.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	log.Debug("Generating embeddings", "count", len(texts), "model", c.embeddingModel)

	request := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	}

	response, err := c.client.CreateEmbeddings(ctx, request)
	if err != nil {
		log.Error("Failed to generate embeddings", "error", err)
		return nil, err
	}

	embeddings := make([][]float32, len(response.Data))
	for i, data := range response.Data {
		embeddings[i] = data.Embedding
	}

	log.Debug("Successfully generated embeddings",
		"count", len(embeddings),
		"model", c.embeddingModel)

	return embeddings, nil
}

// Complete implements the completion.Client interface.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...completion.Option) (string, error) {
	// Apply options
	options := completion.DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	// Override model if specified in options
	model := c.chatModel
	if options.Model != "" {
		model = options.Model
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	log.Debug("Processing completion request", "model", model, "prompt_length", len(prompt))

	request := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		log.Error("Failed to generate chat completion", "error", err)
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)

	log.Debug("Successfully generated response",
		"tokens", response.Usage.TotalTokens,
		"model", model)

	return content, nil
}
