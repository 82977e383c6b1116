package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/recipe-parser/app/models"
	"github.com/recipe-parser/internal/parser"
	"github.com/spf13/viper"
)

// Config cấu hình toàn bộ service
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Meili  MeiliConfig  `mapstructure:"meilisearch"`
	Parser ParserConfig `mapstructure:"parser"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// AppConfig cấu hình HTTP server
type AppConfig struct {
	Env            string        `mapstructure:"env"`
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
}

// MongoConfig kết nối MongoDB
type MongoConfig struct {
	URL      string        `mapstructure:"url"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig cache L2 cho vocabulary snapshot
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// MeiliConfig cấu hình Meilisearch
type MeiliConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	MasterKey     string        `mapstructure:"master_key"`
	FoodIndex     string        `mapstructure:"food_index"`
	UnitIndex     string        `mapstructure:"unit_index"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxCandidates int           `mapstructure:"max_candidates"`
}

// ParserConfig cấu hình ingredient parser
type ParserConfig struct {
	Default             string                `mapstructure:"default"`
	PluralPolicy        string                `mapstructure:"plural_policy"`
	VocabularyCacheSize int                   `mapstructure:"vocabulary_cache_size"`
	Matcher             parser.MatcherOptions `mapstructure:"matcher"`
}

// OpenAIConfig cấu hình LLM parser
type OpenAIConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	APIKey           string            `mapstructure:"api_key"`
	BaseURL          string            `mapstructure:"base_url"`
	Model            string            `mapstructure:"model"`
	Timeout          time.Duration     `mapstructure:"timeout"`
	Workers          int               `mapstructure:"workers"`
	SendDatabaseData bool              `mapstructure:"send_database_data"`
	CustomPromptDir  string            `mapstructure:"custom_prompt_dir"`
	Headers          map[string]string `mapstructure:"headers"`
	QueryParams      map[string]string `mapstructure:"query_params"`
}

// Load đọc .env (nếu có), file yaml và env vars. path rỗng thì tìm config/app.yaml
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.request_timeout", "30s")
	v.SetDefault("app.cors_origins", []string{"*"})

	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "recipe_parser")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.ttl", "1h")

	v.SetDefault("meilisearch.enabled", true)
	v.SetDefault("meilisearch.url", "http://localhost:7700")
	v.SetDefault("meilisearch.master_key", "")
	v.SetDefault("meilisearch.food_index", "ingredient_foods")
	v.SetDefault("meilisearch.unit_index", "ingredient_units")
	v.SetDefault("meilisearch.timeout", "5s")
	v.SetDefault("meilisearch.max_candidates", 20)

	matcher := parser.DefaultMatcherOptions()
	v.SetDefault("parser.default", string(parser.ParserBrute))
	v.SetDefault("parser.plural_policy", string(models.PluralAlways))
	v.SetDefault("parser.vocabulary_cache_size", 256)
	v.SetDefault("parser.matcher.food_similarity_threshold", matcher.FoodSimilarityThreshold)
	v.SetDefault("parser.matcher.unit_similarity_threshold", matcher.UnitSimilarityThreshold)
	v.SetDefault("parser.matcher.min_containment_length", matcher.MinContainmentLength)

	v.SetDefault("openai.enabled", false)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.timeout", "60s")
	v.SetDefault("openai.workers", 1)
	v.SetDefault("openai.send_database_data", true)
	v.SetDefault("openai.custom_prompt_dir", "")
	v.SetDefault("openai.headers", map[string]string{})
	v.SetDefault("openai.query_params", map[string]string{})
}

// Validate kiểm tra các giá trị bắt buộc
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return errors.New("app port is required")
	}
	if _, err := parser.ParseRegisteredParser(c.Parser.Default); err != nil {
		return fmt.Errorf("parser.default: %w", err)
	}
	if !models.PluralPolicy(c.Parser.PluralPolicy).IsValid() {
		return fmt.Errorf("parser.plural_policy: unknown policy %q", c.Parser.PluralPolicy)
	}
	if c.Parser.VocabularyCacheSize < 1 {
		return errors.New("parser.vocabulary_cache_size must be at least 1")
	}
	if c.OpenAI.Enabled {
		if c.OpenAI.APIKey == "" {
			return errors.New("openai.api_key is required when openai is enabled")
		}
		if c.OpenAI.Workers < 1 {
			return errors.New("openai.workers must be at least 1")
		}
	}
	return nil
}

// LLMConfig cấu hình truyền vào LLM parser
func (c OpenAIConfig) LLMConfig() parser.LLMConfig {
	return parser.LLMConfig{
		Enabled:          c.Enabled,
		Workers:          c.Workers,
		SendDatabaseData: c.SendDatabaseData,
	}
}

// DefaultPluralPolicy policy dùng khi request không chỉ định
func (c ParserConfig) DefaultPluralPolicy() models.PluralPolicy {
	return models.PluralPolicy(c.PluralPolicy)
}

// MaskAPIKey chỉ giữ 4 ký tự đầu và cuối
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
