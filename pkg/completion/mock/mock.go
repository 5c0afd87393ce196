package mock

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/medassist/medassist/pkg/completion"
)

// Call represents a recorded method call on the mock client.
type Call struct {
	// Method is the name of the method that was called.
	Method string

	// Prompt is the prompt passed to Complete (empty for embedding calls).
	Prompt string

	// Texts are the inputs passed to GenerateEmbeddings.
	Texts []string
}

// Client implements the completion.Client interface with canned responses.
type Client struct {
	// cannedResponses maps prompt fragments to predetermined responses
	cannedResponses map[string]string

	// defaultResponse is returned when no matching canned response is found
	defaultResponse string

	// cannedEmbeddings maps text fragments to predetermined embeddings
	cannedEmbeddings map[string][]float32

	// defaultEmbedding is returned when no matching canned embedding is found
	defaultEmbedding []float32

	// exactMatch determines if prompt matching is exact or uses Contains
	exactMatch bool

	// shouldError indicates if the client should return errors
	shouldError bool

	// mutex protects the maps from concurrent access
	mutex sync.RWMutex

	// callHistory records all calls to Complete and GenerateEmbeddings
	callHistory []Call
}

// Option is a function that configures a mock Client.
type Option func(*Client)

// WithDefaultResponse sets the default response for the mock client.
func WithDefaultResponse(resp string) Option {
	return func(c *Client) {
		c.defaultResponse = resp
	}
}

// WithDefaultEmbedding sets the default embedding for the mock client.
func WithDefaultEmbedding(embedding []float32) Option {
	return func(c *Client) {
		c.defaultEmbedding = embedding
	}
}

// WithExactMatch configures whether the mock client uses exact matching.
func WithExactMatch(exact bool) Option {
	return func(c *Client) {
		c.exactMatch = exact
	}
}

// WithShouldError configures whether the mock client returns errors.
func WithShouldError(shouldErr bool) Option {
	return func(c *Client) {
		c.shouldError = shouldErr
	}
}

// NewClient creates a new mock completion client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		cannedResponses:  make(map[string]string),
		defaultResponse:  "This is a mock response",
		cannedEmbeddings: make(map[string][]float32),
		defaultEmbedding: []float32{0.1, 0.2, 0.3},
		exactMatch:       false, // Default to substring matching
		callHistory:      make([]Call, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete implements the completion.Client interface.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...completion.Option) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.callHistory = append(c.callHistory, Call{Method: "Complete", Prompt: prompt})

	if c.shouldError {
		return "", errors.New("mock completion client error")
	}

	if c.exactMatch {
		if response, ok := c.cannedResponses[prompt]; ok {
			return response, nil
		}
	} else {
		for key, response := range c.cannedResponses {
			if strings.Contains(prompt, key) {
				return response, nil
			}
		}
	}

	return c.defaultResponse, nil
}

// GenerateEmbeddings implements the completion.Client interface.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.callHistory = append(c.callHistory, Call{Method: "GenerateEmbeddings", Texts: texts})

	if c.shouldError {
		return nil, errors.New("mock completion client error")
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = c.defaultEmbedding
		if c.exactMatch {
			if embedding, ok := c.cannedEmbeddings[text]; ok {
				embeddings[i] = embedding
			}
			continue
		}
		for key, embedding := range c.cannedEmbeddings {
			if strings.Contains(text, key) {
				embeddings[i] = embedding
				break
			}
		}
	}

	return embeddings, nil
}

// AddResponse adds a canned response for a specific prompt fragment.
func (c *Client) AddResponse(prompt, response string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cannedResponses[prompt] = response
}

// SetDefaultResponse sets the default response.
func (c *Client) SetDefaultResponse(response string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.defaultResponse = response
}

// AddEmbedding adds a canned embedding for a specific text fragment.
func (c *Client) AddEmbedding(text string, embedding []float32) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cannedEmbeddings[text] = embedding
}

// SetShouldError configures whether the client returns errors.
func (c *Client) SetShouldError(shouldErr bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.shouldError = shouldErr
}

// CallHistory returns a copy of the call history.
func (c *Client) CallHistory() []Call {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	history := make([]Call, len(c.callHistory))
	copy(history, c.callHistory)

	return history
}

// CompleteCalls returns the number of recorded Complete calls.
func (c *Client) CompleteCalls() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	n := 0
	for _, call := range c.callHistory {
		if call.Method == "Complete" {
			n++
		}
	}
	return n
}

// ClearHistory clears the call history.
func (c *Client) ClearHistory() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.callHistory = make([]Call, 0)
}
