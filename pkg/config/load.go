package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default returns a configuration with every default applied and
// environment overrides honored.
func Default() (*Config, error) {
	return LoadFromBytes([]byte("{}"))
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from a byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvironmentOverrides(&config)

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func applyEnvironmentOverrides(config *Config) {
	// OpenAI API key override
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Completion.OpenAI.APIKey = apiKey
	}

	// EHR DSN override
	if dsn := os.Getenv("MEDASSIST_EHR_DSN"); dsn != "" {
		config.EHR.DSN = dsn
	}

	// Memory path override
	if path := os.Getenv("MEDASSIST_MEMORY_PATH"); path != "" {
		config.Memory.Path = path
	}

	// Web search API key override
	if apiKey := os.Getenv("WEB_SEARCH_API_KEY"); apiKey != "" {
		config.Search.Web.APIKey = apiKey
	}

	// NCBI credentials override
	if apiKey := os.Getenv("NCBI_API_KEY"); apiKey != "" {
		config.Search.Literature.APIKey = apiKey
	}
	if email := os.Getenv("NCBI_EMAIL"); email != "" {
		config.Search.Literature.Email = email
	}
}

// validateConfig validates the configuration and applies defaults.
func validateConfig(config *Config) error {
	// Validate completion configuration
	switch strings.ToLower(config.Completion.Provider) {
	case "openai", "":
		// API key can be provided via environment variable, so we don't
		// explicitly check for it here. Validate model settings.
		if config.Completion.OpenAI.Model == "" {
			config.Completion.OpenAI.Model = "gpt-4"
		}
		if config.Completion.OpenAI.EmbeddingModel == "" {
			config.Completion.OpenAI.EmbeddingModel = "text-embedding-3-small"
		}
	case "mock":
		// Mock provider doesn't require additional validation
	default:
		return fmt.Errorf("unsupported completion provider: %s", config.Completion.Provider)
	}

	if config.Completion.MinRequestInterval < 0 {
		return fmt.Errorf("min_request_interval must not be negative")
	}
	if config.Completion.MinRequestInterval == 0 {
		config.Completion.MinRequestInterval = 4.0 // 15 requests per minute
	}

	// Validate memory configuration
	if config.Memory.Collection == "" {
		config.Memory.Collection = "patient_memories"
	}
	if config.Memory.ChunkSize <= 0 {
		config.Memory.ChunkSize = 1000
	}
	if config.Memory.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative")
	}
	if config.Memory.ChunkOverlap == 0 {
		config.Memory.ChunkOverlap = 200
	}
	if config.Memory.ChunkOverlap >= config.Memory.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}

	// Validate EHR configuration
	switch strings.ToLower(config.EHR.Driver) {
	case "sqlite", "":
		config.EHR.Driver = "sqlite"
		if config.EHR.DSN == "" {
			config.EHR.DSN = "./data/patients.db"
		}
	case "postgres":
		if config.EHR.DSN == "" {
			return fmt.Errorf("DSN is required for postgres EHR driver")
		}
	default:
		return fmt.Errorf("unsupported EHR driver: %s", config.EHR.Driver)
	}

	// Validate search configuration
	if config.Search.MaxPerSource <= 0 {
		config.Search.MaxPerSource = 5
	}

	return nil
}
