package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hugdata-inc/hugdata-engine/pkg/config"
	"github.com/hugdata-inc/hugdata-engine/pkg/embeddings"
	"github.com/hugdata-inc/hugdata-engine/pkg/llm"
	"github.com/hugdata-inc/hugdata-engine/pkg/services"
	"github.com/hugdata-inc/hugdata-engine/pkg/vectorstore"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		// No config.yaml is fine; environment variables carry everything.
		cfg, err = config.LoadFromEnv(Version)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting hugdata-engine",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("llm_model", cfg.LLM.Model),
		zap.String("embedding_model", cfg.Embedding.Model))

	client := buildLLMClient(cfg, logger)
	embedder := buildEmbedder(cfg, logger)
	store := buildVectorStore(cfg, logger)

	library, err := services.LoadSQLPairLibrary(cfg.Engine.SQLPairsPath)
	if err != nil {
		logger.Warn("failed to load SQL pair library",
			zap.String("path", cfg.Engine.SQLPairsPath),
			zap.Error(err))
	}

	engine := services.NewEngine(store, embedder, client, services.EngineOptions{
		MaxResultRows:       cfg.Engine.MaxResultRows,
		RetrievalLimit:      cfg.Engine.RetrievalLimit,
		CollaboratorTimeout: cfg.Engine.CollaboratorTimeout(),
		SQLPairLibrary:      library,
	}, logger)

	// Age out terminal correction events on a fixed schedule.
	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()
	go func() {
		for range cleanupTicker.C {
			engine.Correction.Cleanup(cfg.Engine.EventRetention())
		}
	}()

	logger.Info("engine ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildLLMClient wires the configured model backend. With no API key, a
// not-configured client is wired that fails loudly on first use; mock data
// is never substituted.
func buildLLMClient(cfg *config.Config, logger *zap.Logger) llm.Client {
	if cfg.LLM.AnthropicAPIKey != "" && cfg.LLM.AnthropicModel != "" {
		client, err := llm.NewAnthropicClient(cfg.LLM.AnthropicAPIKey, cfg.LLM.AnthropicModel, logger)
		if err != nil {
			logger.Fatal("failed to create anthropic client", zap.Error(err))
		}
		return client
	}

	if cfg.LLM.APIKey != "" {
		client, err := llm.NewOpenAIClient(&llm.OpenAIConfig{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("failed to create openai client", zap.Error(err))
		}
		return client
	}

	logger.Warn("no LLM API key configured; generation calls will fail")
	return llm.NewNotConfiguredClient("no LLM API key is set")
}

func buildEmbedder(cfg *config.Config, logger *zap.Logger) embeddings.Provider {
	apiKey := cfg.EmbeddingAPIKey()
	if apiKey == "" {
		logger.Warn("no embedding API key configured; retrieval calls will fail")
		return embeddings.NewNotConfiguredProvider("no embedding API key is set")
	}

	provider, err := embeddings.NewOpenAIProvider(apiKey, cfg.Embedding.Model, cfg.Embedding.Dimension, logger)
	if err != nil {
		logger.Fatal("failed to create embedding provider", zap.Error(err))
	}
	return provider
}

func buildVectorStore(cfg *config.Config, logger *zap.Logger) vectorstore.Store {
	store, err := vectorstore.NewQdrant(&vectorstore.QdrantConfig{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to qdrant", zap.Error(err))
	}
	return store
}
