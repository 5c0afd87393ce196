package config

// Config represents the top-level configuration for the assistant.
type Config struct {
	// Completion configures the completion service client (LLM)
	Completion CompletionConfig `yaml:"completion"`

	// Memory configures the vector memory store
	Memory MemoryConfig `yaml:"memory"`

	// EHR configures the patient record store
	EHR EHRConfig `yaml:"ehr"`

	// Search configures the medical search aggregator
	Search SearchConfig `yaml:"search"`

	// Logging configures the logging behavior
	Logging LoggingConfig `yaml:"logging"`
}

// CompletionConfig configures the completion service client.
type CompletionConfig struct {
	// Provider is the completion provider ("openai", "mock")
	Provider string `yaml:"provider"`

	// OpenAI configures OpenAI integration
	OpenAI OpenAIConfig `yaml:"openai"`

	// MinRequestInterval is the minimum number of seconds between
	// consecutive completion calls (the global throttle)
	MinRequestInterval float64 `yaml:"min_request_interval"`
}

// OpenAIConfig configures OpenAI integration.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key
	APIKey string `yaml:"api_key"`

	// Model is the model to use for chat/completion
	Model string `yaml:"model"`

	// EmbeddingModel is the model to use for generating embeddings
	EmbeddingModel string `yaml:"embedding_model"`

	// MaxTokens is the maximum number of tokens to generate
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls randomness in generation (0.0-1.0)
	Temperature float64 `yaml:"temperature"`
}

// MemoryConfig configures the vector memory store.
type MemoryConfig struct {
	// Path is the directory for on-disk persistence (empty means in-memory)
	Path string `yaml:"path"`

	// Collection is the vector collection name
	Collection string `yaml:"collection"`

	// ChunkSize is the chunk size in characters for long-text records
	ChunkSize int `yaml:"chunk_size"`

	// ChunkOverlap is the overlap in characters between adjacent chunks
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EHRConfig configures the patient record store.
type EHRConfig struct {
	// Driver is the SQL driver ("sqlite", "postgres")
	Driver string `yaml:"driver"`

	// DSN is the data source name (connection string)
	DSN string `yaml:"dsn"`

	// Seed determines whether the example patients are inserted at startup
	Seed bool `yaml:"seed"`
}

// SearchConfig configures the medical search aggregator.
type SearchConfig struct {
	// Web configures the general web search source
	Web WebSearchConfig `yaml:"web"`

	// Literature configures the biomedical literature source
	Literature LiteratureConfig `yaml:"literature"`

	// MaxPerSource is the maximum results requested from each source
	MaxPerSource int `yaml:"max_per_source"`
}

// WebSearchConfig configures the general web search source.
type WebSearchConfig struct {
	// APIKey is the web search API key
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the search API endpoint (for testing)
	Endpoint string `yaml:"endpoint"`
}

// LiteratureConfig configures the biomedical literature source.
type LiteratureConfig struct {
	// APIKey is the NCBI E-utilities API key
	APIKey string `yaml:"api_key"`

	// Email is the contact email sent with E-utilities requests
	Email string `yaml:"email"`

	// Endpoint overrides the E-utilities base URL (for testing)
	Endpoint string `yaml:"endpoint"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level is the logging level ("debug", "info", "warn", "error")
	Level string `yaml:"level"`

	// Format is the log output format ("text", "json")
	Format string `yaml:"format"`
}
