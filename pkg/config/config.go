package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for hugdata-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// LLM holds the language model endpoint configuration.
	LLM LLMConfig `yaml:"llm"`

	// Embedding holds the embedding provider configuration.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Qdrant holds the vector index connection settings.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Engine holds pipeline tuning knobs.
	Engine EngineConfig `yaml:"engine"`
}

// LLMConfig holds language model settings. Exactly one backend is selected:
// Anthropic when AnthropicAPIKey is set, otherwise the OpenAI-compatible
// endpoint. With neither configured the engine wires a NotConfigured client
// that fails loudly on first use.
type LLMConfig struct {
	Endpoint        string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model           string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o-mini"`
	APIKey          string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
	AnthropicModel  string `yaml:"anthropic_model" env:"ANTHROPIC_MODEL" env-default:""`
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Model     string `yaml:"model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	Dimension int    `yaml:"dimension" env:"EMBEDDING_DIMENSION" env-default:"1536"`
	APIKey    string `yaml:"-" env:"EMBEDDING_API_KEY"` // Secret - falls back to OPENAI_API_KEY
}

// QdrantConfig holds vector index connection settings.
type QdrantConfig struct {
	Host   string `yaml:"host" env:"QDRANT_HOST" env-default:"localhost"`
	Port   int    `yaml:"port" env:"QDRANT_PORT" env-default:"6334"`
	APIKey string `yaml:"-" env:"QDRANT_API_KEY"` // Secret - not in YAML
}

// EngineConfig holds pipeline tuning knobs.
type EngineConfig struct {
	// MaxResultRows caps the row-limit clause appended to generated SQL.
	MaxResultRows int `yaml:"max_result_rows" env:"MAX_RESULT_ROWS" env-default:"1000"`

	// CollaboratorTimeoutSeconds bounds each external call (LLM, embedding,
	// vector index). No automatic retry on timeout.
	CollaboratorTimeoutSeconds int `yaml:"collaborator_timeout_seconds" env:"COLLABORATOR_TIMEOUT_SECONDS" env-default:"30"`

	// EventRetentionHours is the age threshold for bulk cleanup of finished
	// correction events and recommendations.
	EventRetentionHours int `yaml:"event_retention_hours" env:"EVENT_RETENTION_HOURS" env-default:"24"`

	// RetrievalLimit is the top-K document count for generation context.
	RetrievalLimit int `yaml:"retrieval_limit" env:"RETRIEVAL_LIMIT" env-default:"10"`

	// SQLPairsPath points at the curated question/SQL pair library, a JSON
	// file keyed by boilerplate name. A missing file means an empty library.
	SQLPairsPath string `yaml:"sql_pairs_path" env:"SQL_PAIRS_PATH" env-default:"sql_pairs.json"`
}

// CollaboratorTimeout returns the per-call timeout as a duration.
func (c *EngineConfig) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutSeconds) * time.Second
}

// EventRetention returns the cleanup age threshold as a duration.
func (c *EngineConfig) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionHours) * time.Hour
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv reads configuration from environment variables only, without
// requiring a config.yaml. Used by tests and containerized deployments.
func LoadFromEnv(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Engine.MaxResultRows <= 0 {
		return fmt.Errorf("max_result_rows must be positive, got %d", c.Engine.MaxResultRows)
	}
	if c.Engine.CollaboratorTimeoutSeconds <= 0 {
		return fmt.Errorf("collaborator_timeout_seconds must be positive, got %d", c.Engine.CollaboratorTimeoutSeconds)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension)
	}
	if c.Engine.RetrievalLimit <= 0 {
		return fmt.Errorf("retrieval_limit must be positive, got %d", c.Engine.RetrievalLimit)
	}
	return nil
}

// EmbeddingAPIKey returns the embedding key, falling back to the LLM key so a
// single OPENAI_API_KEY configures both collaborators.
func (c *Config) EmbeddingAPIKey() string {
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey
	}
	return c.LLM.APIKey
}
