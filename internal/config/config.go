// Package config loads application configuration from a TOML file with
// environment variable overrides for credentials and endpoints.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultUploadDir  = "uploads"
	DefaultChunkSize  = 1000
	DefaultRedisAddr  = "localhost:6379"
	DefaultS3Bucket   = "documents"
	DefaultStreamName = "llm_events"
	DefaultGroupName  = "analytics_group"
	defaultConfigFile = "config.toml"
	defaultConfigDir  = ".paperquery"
)

// Config is the full application configuration.
type Config struct {
	// UploadDir is the local directory scanned for documents.
	UploadDir string `toml:"upload_dir"`

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// DataDir is where the analytics database lives.
	DataDir string `toml:"data_dir"`

	Redis     RedisConfig     `toml:"redis"`
	S3        S3Config        `toml:"s3"`
	Stream    StreamConfig    `toml:"stream"`
	Providers ProvidersConfig `toml:"providers"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// S3Config holds object store settings.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// StreamConfig holds event stream settings.
type StreamConfig struct {
	Name  string `toml:"name"`
	Group string `toml:"group"`
}

// ProvidersConfig holds per-provider credentials. Keys left empty disable
// the provider; the fallback router simply never sees it.
type ProvidersConfig struct {
	OpenAIKey    string `toml:"openai_key"`
	AnthropicKey string `toml:"anthropic_key"`
	GoogleKey    string `toml:"google_key"`
	DeepSeekKey  string `toml:"deepseek_key"`
	OllamaURL    string `toml:"ollama_url"`
}

// Load reads configuration from path, fills defaults, and applies
// environment overrides. If path is empty, ~/.paperquery/config.toml is
// used when present; a missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, defaultConfigDir, defaultConfigFile)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// No config file is fine: defaults plus environment apply.
		default:
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = DefaultUploadDir
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.S3.Bucket == "" {
		c.S3.Bucket = DefaultS3Bucket
	}
	if c.Stream.Name == "" {
		c.Stream.Name = DefaultStreamName
	}
	if c.Stream.Group == "" {
		c.Stream.Group = DefaultGroupName
	}
}

// applyEnv overlays environment variables on the loaded file, so deploy
// environments can inject credentials without editing config.toml.
func (c *Config) applyEnv() {
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")
	setString(&c.S3.Endpoint, "S3_ENDPOINT")
	setString(&c.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.S3.SecretKey, "S3_SECRET_KEY")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setBool(&c.S3.UseSSL, "S3_USE_SSL")
	setString(&c.Providers.OpenAIKey, "OPENAI_API_KEY")
	setString(&c.Providers.AnthropicKey, "ANTHROPIC_API_KEY")
	setString(&c.Providers.GoogleKey, "GOOGLE_API_KEY")
	setString(&c.Providers.DeepSeekKey, "DEEPSEEK_API_KEY")
	setString(&c.Providers.OllamaURL, "OLLAMA_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
