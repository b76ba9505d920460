package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Host        string   `toml:"host" env:"HOST"`
	Port        string   `toml:"port" env:"PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

type DataConfig struct {
	// Backend is "json" or "memgraph".
	Backend string `toml:"backend" env:"DATA_BACKEND"`
	Path    string `toml:"path" env:"DATA_FILE"`
	Watch   bool   `toml:"watch" env:"DATA_WATCH"`
}

type MatchingConfig struct {
	Iterations         int      `toml:"iterations" env:"MATCH_ITERATIONS"`
	Seed               uint64   `toml:"seed" env:"MATCH_SEED"`
	DefaultConstraints []string `toml:"default_constraints" env:"MATCH_CONSTRAINTS" envSeparator:","`
}

type LLMConfig struct {
	Provider string `toml:"provider" env:"LLM_PROVIDER"`
	Model    string `toml:"model" env:"LLM_MODEL"`
	// EmbeddingModel is only used by the health check.
	EmbeddingModel string  `toml:"embedding_model" env:"LLM_EMBEDDING_MODEL"`
	APIKey         string  `toml:"api_key" env:"LLM_API_KEY"`
	BaseURL        string  `toml:"base_url" env:"LLM_ENDPOINT"`
	Temperature    float32 `toml:"temperature" env:"LLM_TEMPERATURE"`
	MaxTokens      int     `toml:"max_tokens" env:"LLM_MAX_TOKENS"`
	TimeoutSecs    int     `toml:"timeout_secs" env:"LLM_TIMEOUT_SECS"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" env:"MEMGRAPH_URI"`
	User     string `toml:"user" env:"MEMGRAPH_USER"`
	Password string `toml:"password" env:"MEMGRAPH_PASSWORD"`
}

type RedisConfig struct {
	Addr     string `toml:"addr" env:"REDIS_ADDR"`
	Password string `toml:"password" env:"REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"REDIS_DB"`
	TTLHours int    `toml:"ttl_hours" env:"GIFT_CACHE_TTL_HOURS"`
}

type ConcurrencyConfig struct {
	GiftRequests int `toml:"gift_requests" env:"GIFT_CONCURRENCY"`
}

type LogConfig struct {
	Level string `toml:"level" env:"LOG_LEVEL"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Data        DataConfig        `toml:"data"`
	Matching    MatchingConfig    `toml:"matching"`
	LLM         LLMConfig         `toml:"llm"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Redis       RedisConfig       `toml:"redis"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Log         LogConfig         `toml:"log"`
}

// Default returns a configuration that runs against a local JSON data file
// and an LM Studio style OpenAI-compatible endpoint.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        "8000",
			CORSOrigins: []string{"*"},
		},
		Data: DataConfig{
			Backend: "json",
			Path:    "data/enriched_characters.json",
		},
		Matching: MatchingConfig{
			Iterations: 20,
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "deepseek-r1-0528-qwen3-8b",
			EmbeddingModel: "text-embedding-nomic-embed-text-v1.5",
			APIKey:         "lm-studio",
			BaseURL:        "http://127.0.0.1:1234/v1",
			Temperature:    0.8,
			MaxTokens:      500,
			TimeoutSecs:    60,
		},
		Redis: RedisConfig{
			TTLHours: 24,
		},
		Concurrency: ConcurrencyConfig{
			GiftRequests: 4,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads path when it exists, falls back to defaults when it does
// not, and applies environment overrides last.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
