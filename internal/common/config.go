package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Aegis
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Monitor     MonitorConfig `toml:"monitor"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds paths for the storage areas.
type StorageConfig struct {
	// Data is the directory holding the watchlist and alert log JSON files.
	Data AreaConfig `toml:"data"`
	// Reports is the BadgerHold database directory for report history.
	Reports AreaConfig `toml:"reports"`
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Tavily       TavilyConfig       `toml:"tavily"`
	Portfolio    PortfolioConfig    `toml:"portfolio"`
	Gemini       GeminiConfig       `toml:"gemini"`
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout, 30*time.Second)
}

// TavilyConfig holds Tavily search API configuration
type TavilyConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Depth   string `toml:"depth"` // "basic" or "advanced"
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TavilyConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout, 30*time.Second)
}

// PortfolioConfig holds the portfolio gateway configuration.
// The gateway translates natural-language questions to SQL, which can involve
// a slow local model, hence the long default timeout.
type PortfolioConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PortfolioConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout, 180*time.Second)
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *GeminiConfig) GetTimeout() time.Duration {
	return parseTimeout(c.Timeout, 60*time.Second)
}

// MonitorConfig holds watchlist monitor configuration
type MonitorConfig struct {
	Interval          string  `toml:"interval"`            // cron "@every" cadence, e.g. "30s"
	PriceThresholdPct float64 `toml:"price_threshold_pct"` // absolute % move that triggers a MARKET alert
	Workers           int     `toml:"workers"`             // bounded fan-out size per cycle
}

// GetInterval parses and returns the poll interval
func (c *MonitorConfig) GetInterval() time.Duration {
	return parseTimeout(c.Interval, 30*time.Second)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func parseTimeout(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Data:    AreaConfig{Path: "data"},
			Reports: AreaConfig{Path: "data/reports"},
		},
		Clients: ClientsConfig{
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Tavily: TavilyConfig{
				BaseURL: "https://api.tavily.com",
				Depth:   "basic",
				Timeout: "30s",
			},
			Portfolio: PortfolioConfig{
				BaseURL: "http://127.0.0.1:8003",
				Timeout: "180s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "60s",
			},
		},
		Monitor: MonitorConfig{
			Interval:          "30s",
			PriceThresholdPct: 0.5,
			Workers:           4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AEGIS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("AEGIS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("AEGIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("AEGIS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("AEGIS_DATA_PATH"); path != "" {
		config.Storage.Data.Path = path
		config.Storage.Reports.Path = filepath.Join(path, "reports")
	}

	if interval := os.Getenv("AEGIS_MONITOR_INTERVAL"); interval != "" {
		config.Monitor.Interval = interval
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment variables or the
// configured fallback value.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"alphavantage_api_key": {"ALPHA_VANTAGE_API_KEY", "AEGIS_ALPHAVANTAGE_API_KEY"},
		"tavily_api_key":       {"TAVILY_API_KEY", "AEGIS_TAVILY_API_KEY"},
		"gemini_api_key":       {"GEMINI_API_KEY", "AEGIS_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
