package completion

import (
	"context"
)

// Option is a function that configures a completion request.
type Option func(*Options)

// Options holds configuration for a completion request.
type Options struct {
	// Temperature controls randomness in generation (0.0-1.0)
	Temperature float64

	// MaxTokens limits the length of the generated response
	MaxTokens int

	// Model specifies which model variant to use
	Model string
}

// DefaultOptions returns default completion options.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.7,
		MaxTokens:   1024,
		Model:       "", // Empty means use the client's default
	}
}

// WithTemperature sets the temperature option.
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// WithMaxTokens sets the max tokens option.
func WithMaxTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxTokens = tokens
	}
}

// WithModel sets the model option.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Client is the interface for completion service clients (LLMs).
type Client interface {
	// Complete sends a prompt to the completion service and returns the text result.
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)

	// GenerateEmbeddings creates vector embeddings for the provided texts.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}
