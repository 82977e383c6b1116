// Package bootstrap khởi tạo các dependency dùng chung cho API server,
// seed command và reprocessing worker.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/recipe-parser/app/config"
	"github.com/recipe-parser/app/services"
	"github.com/recipe-parser/internal/openai"
	"github.com/recipe-parser/internal/parser"
	"github.com/recipe-parser/internal/queryfilter"
	"github.com/recipe-parser/internal/search"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Container các service đã được nối dây
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Mongo    *mongo.Client
	Store    *services.VocabularyStore
	Cache    services.IVocabularyCache
	Searcher *search.VocabularySearcher // nil khi Meilisearch tắt
	Compiler *queryfilter.Compiler

	Vocabulary *services.VocabularyService
	Ingredient *services.IngredientService
	Admin      *services.AdminService

	redis *services.RedisCacheService
}

// InitLogger production config khi env = production
func InitLogger(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

// New kết nối MongoDB, cache, Meilisearch rồi dựng các service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Compiler: queryfilter.NewCompiler(nil),
	}

	// 1. Kết nối MongoDB
	client, err := connectMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		return nil, err
	}
	c.Mongo = client
	c.Store = services.NewVocabularyStore(client.Database(cfg.Mongo.Database), logger)

	// 2. Cache L2: Redis, fallback bộ nhớ
	c.Cache = c.initCache(cfg.Redis)

	// 3. Meilisearch
	if cfg.Meili.Enabled {
		searcher, err := search.NewVocabularySearcher(search.SearchConfig{
			Host:          cfg.Meili.URL,
			APIKey:        cfg.Meili.MasterKey,
			FoodIndex:     cfg.Meili.FoodIndex,
			UnitIndex:     cfg.Meili.UnitIndex,
			Timeout:       cfg.Meili.Timeout,
			MaxCandidates: cfg.Meili.MaxCandidates,
		}, logger)
		if err != nil {
			logger.Warn("Meilisearch không khả dụng, tắt search", zap.Error(err))
		} else {
			c.Searcher = searcher
			logger.Info("Meilisearch config",
				zap.String("host", cfg.Meili.URL),
				zap.String("key", config.MaskAPIKey(cfg.Meili.MasterKey)))
		}
	}

	// 4. Services
	var index services.VocabularyIndex
	var indexAdmin services.IndexAdmin
	if c.Searcher != nil {
		index, indexAdmin = c.Searcher, c.Searcher
	}

	c.Vocabulary, err = services.NewVocabularyService(c.Store, c.Cache, index, c.Compiler, cfg.Parser.VocabularyCacheSize, logger)
	if err != nil {
		_ = c.Close(context.Background())
		return nil, err
	}
	c.Ingredient = services.NewIngredientService(c.Vocabulary, c.completer(), services.IngredientServiceConfig{
		DefaultParser: parser.RegisteredParser(cfg.Parser.Default),
		DefaultPolicy: cfg.Parser.DefaultPluralPolicy(),
		Matcher:       cfg.Parser.Matcher,
		LLM:           cfg.OpenAI.LLMConfig(),
	}, logger)
	c.Admin = services.NewAdminService(c.Store, indexAdmin, c.Vocabulary, logger)

	return c, nil
}

func connectMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

func (c *Container) initCache(cfg config.RedisConfig) services.IVocabularyCache {
	if cfg.Enabled {
		redisCache, err := services.NewRedisCacheService(cfg.URL, cfg.TTL, c.Logger)
		if err == nil {
			c.redis = redisCache
			c.Logger.Info("Vocabulary cache: Redis", zap.Duration("ttl", cfg.TTL))
			return redisCache
		}
		c.Logger.Warn("Redis không khả dụng, dùng cache bộ nhớ", zap.Error(err))
	}
	return services.NewCacheService(cfg.TTL, nil)
}

// completer nil interface khi openai tắt
func (c *Container) completer() parser.Completer {
	cfg := c.Config.OpenAI
	if !cfg.Enabled {
		return nil
	}
	c.Logger.Info("OpenAI parser enabled",
		zap.String("model", cfg.Model),
		zap.String("api_key", config.MaskAPIKey(cfg.APIKey)),
		zap.Int("workers", cfg.Workers))
	return openai.NewService(cfg.APIKey, c.Logger,
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithTimeout(cfg.Timeout),
		openai.WithHeaders(cfg.Headers),
		openai.WithQueryParams(cfg.QueryParams),
		openai.WithCustomPromptDir(cfg.CustomPromptDir),
	)
}

// Checks health check cho từng dependency đang bật
func (c *Container) Checks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"database": func(ctx context.Context) error { return c.Mongo.Ping(ctx, nil) },
	}
	if c.redis != nil {
		checks["cache"] = c.redis.Ping
	}
	if c.Searcher != nil {
		checks["search"] = c.Searcher.Ping
	}
	return checks
}

// Close đóng cache và ngắt kết nối MongoDB
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		errs = append(errs, c.Mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}
