// Package app wires configuration, adapters, and services into a runnable
// application.
package app

import (
	"context"
	"fmt"

	rediscache "github.com/paperquery/paperquery/internal/adapters/driven/cache/redis"
	"github.com/paperquery/paperquery/internal/adapters/driven/extractor/pdftotext"
	"github.com/paperquery/paperquery/internal/adapters/driven/llm/anthropic"
	"github.com/paperquery/paperquery/internal/adapters/driven/llm/deepseek"
	"github.com/paperquery/paperquery/internal/adapters/driven/llm/gemini"
	"github.com/paperquery/paperquery/internal/adapters/driven/llm/ollama"
	"github.com/paperquery/paperquery/internal/adapters/driven/llm/openai"
	"github.com/paperquery/paperquery/internal/adapters/driven/objectstore/s3"
	"github.com/paperquery/paperquery/internal/adapters/driven/storage/sqlite"
	redisstream "github.com/paperquery/paperquery/internal/adapters/driven/stream/redis"
	"github.com/paperquery/paperquery/internal/config"
	"github.com/paperquery/paperquery/internal/core/ports/driving"
	"github.com/paperquery/paperquery/internal/core/services"
	"github.com/paperquery/paperquery/internal/logger"

	goredis "github.com/redis/go-redis/v9"
)

// fallbackPriority is the fixed provider fallback order. The requested
// model, when registered, is always tried first; this order breaks ties
// among the rest.
var fallbackPriority = []string{"gpt-4", "gemini-pro", "claude-3", "deepseek-chat"}

// App holds the wired services and the resources they own.
type App struct {
	Content     driving.ContentResolver
	Catalog     driving.CatalogService
	Completions driving.CompletionService
	Consumer    driving.ConsumerControl

	redis     *goredis.Client
	analytics *sqlite.AnalyticsStore
}

// New builds the application from configuration, connecting to Redis and
// the object store and registering every provider with a configured
// credential.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	redisClient, err := rediscache.NewClient(ctx, rediscache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	objects, err := s3.NewObjectStore(ctx, s3.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	analytics, err := sqlite.NewAnalyticsStore(cfg.DataDir)
	if err != nil {
		redisClient.Close()
		return nil, err
	}

	cache := rediscache.NewCacheStore(redisClient)
	broker := redisstream.NewStreamBroker(redisClient)
	extractor := pdftotext.New()

	content := services.NewContentService(cache, objects, extractor, services.ContentConfig{
		UploadDir: cfg.UploadDir,
		ChunkSize: cfg.ChunkSize,
	})
	catalog := services.NewCatalogRegistry(objects, cfg.UploadDir, 0)

	router := services.NewFallbackRouter(fallbackPriority)
	if err := registerProviders(router, cfg.Providers); err != nil {
		redisClient.Close()
		analytics.Close()
		return nil, err
	}

	completions := services.NewCompletionOrchestrator(content, router, broker, cfg.Stream.Name)
	consumer := services.NewStreamConsumer(broker, analytics, services.ConsumerConfig{
		Stream: cfg.Stream.Name,
		Group:  cfg.Stream.Group,
	})

	logger.Debug("app: wired with providers %v", router.Models())

	return &App{
		Content:     content,
		Catalog:     catalog,
		Completions: completions,
		Consumer:    consumer,
		redis:       redisClient,
		analytics:   analytics,
	}, nil
}

// registerProviders registers every provider with a configured credential.
// Having no provider at all is an error: every completion would fail.
func registerProviders(router *services.FallbackRouter, cfg config.ProvidersConfig) error {
	if cfg.OpenAIKey != "" {
		p, err := openai.NewProvider(openai.Config{APIKey: cfg.OpenAIKey})
		if err != nil {
			return err
		}
		router.Register(p)
	}
	if cfg.GoogleKey != "" {
		p, err := gemini.NewProvider(gemini.Config{APIKey: cfg.GoogleKey})
		if err != nil {
			return err
		}
		router.Register(p)
	}
	if cfg.AnthropicKey != "" {
		p, err := anthropic.NewProvider(anthropic.Config{APIKey: cfg.AnthropicKey})
		if err != nil {
			return err
		}
		router.Register(p)
	}
	if cfg.DeepSeekKey != "" {
		p, err := deepseek.NewProvider(deepseek.Config{APIKey: cfg.DeepSeekKey})
		if err != nil {
			return err
		}
		router.Register(p)
	}
	if cfg.OllamaURL != "" {
		router.Register(ollama.NewProvider(ollama.Config{BaseURL: cfg.OllamaURL}))
	}

	if len(router.Models()) == 0 {
		return fmt.Errorf("no completion providers configured")
	}
	return nil
}

// Close releases the connections the app owns.
func (a *App) Close() error {
	var firstErr error
	if err := a.redis.Close(); err != nil {
		firstErr = err
	}
	if err := a.analytics.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
