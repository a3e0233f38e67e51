package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	Port     string `env:"PORT" envDefault:"8080"`
	Currency string `env:"CURRENCY" envDefault:"CAD"`

	// Valuation strategy selection
	Model struct {
		// Active strategy: mock | ml | llm | anthropic
		Provider string `env:"MODEL_PROVIDER" envDefault:"mock"`

		// Trained model artifact for the ml strategy
		Path string `env:"MODEL_PATH" envDefault:"./model/estimator.json"`
	}

	// Hosted interpreter (anthropic strategy + address disambiguation)
	Anthropic struct {
		APIKey string `env:"ANTHROPIC_API_KEY"`
		Model  string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku-4-5-20251001"`
	}

	// Data providers: mock | http (comps additionally: db)
	Geo struct {
		Provider string `env:"GEO_PROVIDER" envDefault:"mock"`
		BaseURL  string `env:"GEO_BASE_URL"`
	}
	Comps struct {
		Provider string `env:"COMPS_PROVIDER" envDefault:"mock"`
		BaseURL  string `env:"COMPS_BASE_URL"`
		DBPath   string `env:"COMPS_DB_PATH" envDefault:"./database/sales.db"`
	}
	Trends struct {
		Provider string `env:"TRENDS_PROVIDER" envDefault:"mock"`
		BaseURL  string `env:"TRENDS_BASE_URL"`
	}

	// Security
	APIKey       string `env:"API_KEY"`
	RateLimitRPM int    `env:"RATE_LIMIT_RPM" envDefault:"60"`

	// CORS
	AllowOrigins []string `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	// Cache
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"43200"`
	CacheMaxEntries int    `env:"CACHE_MAX_ENTRIES" envDefault:"4096"`
	UseRedis        bool   `env:"USE_REDIS" envDefault:"false"`
	RedisURL        string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
