// Package config loads the scanner configuration from YAML with sane
// defaults, and credentials from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// SentimentTokenEnv names the environment variable carrying the sentiment
// provider credential. An unset variable is a supported degraded mode.
const SentimentTokenEnv = "COINSCOUT_SENTIMENT_TOKEN"

// Upstream configures one external HTTP provider.
type Upstream struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the full scanner configuration.
type Config struct {
	QuoteAsset string   `yaml:"quote_asset"`
	Exchange   Upstream `yaml:"exchange"`
	MarketCap  Upstream `yaml:"market_cap"`
	Sentiment  Upstream `yaml:"sentiment"`
	Monitor    struct {
		Addr string `yaml:"addr"`
	} `yaml:"monitor"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var c Config
	c.QuoteAsset = "USDT"
	c.Exchange = Upstream{Timeout: 10 * time.Second}
	c.MarketCap = Upstream{Timeout: 10 * time.Second}
	c.Sentiment = Upstream{Timeout: 10 * time.Second}
	c.Monitor.Addr = ":9180"
	return c
}

// Load reads a YAML config file, falling back to defaults when path is
// empty or the file does not exist. A present-but-broken file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("config file not found, using defaults")
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = "USDT"
	}
	return cfg, nil
}

// SentimentToken resolves the sentiment credential: .env first (when
// present), then the process environment. Empty means degraded mode.
func SentimentToken() string {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()
	return os.Getenv(SentimentTokenEnv)
}
