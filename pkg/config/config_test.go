package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, 1000, cfg.Engine.MaxResultRows)
	assert.Equal(t, 10, cfg.Engine.RetrievalLimit)
	assert.Equal(t, 1536, cfg.Embedding.Dimension)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("MAX_RESULT_ROWS", "500")
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	t.Setenv("LLM_MODEL", "gpt-4o")

	cfg, err := LoadFromEnv("dev")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Engine.MaxResultRows)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max rows",
			mutate:  func(c *Config) { c.Engine.MaxResultRows = 0 },
			wantErr: "max_result_rows",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Engine.CollaboratorTimeoutSeconds = -1 },
			wantErr: "collaborator_timeout_seconds",
		},
		{
			name:    "zero embedding dimension",
			mutate:  func(c *Config) { c.Embedding.Dimension = 0 },
			wantErr: "embedding dimension",
		},
		{
			name:    "zero retrieval limit",
			mutate:  func(c *Config) { c.Engine.RetrievalLimit = 0 },
			wantErr: "retrieval_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv("test")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmbeddingAPIKeyFallback(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.APIKey = "llm-key"
	assert.Equal(t, "llm-key", cfg.EmbeddingAPIKey())

	cfg.Embedding.APIKey = "embed-key"
	assert.Equal(t, "embed-key", cfg.EmbeddingAPIKey())
}
