package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8080 {
		t.Errorf("default port = %d", config.Server.Port)
	}
	if config.Monitor.PriceThresholdPct != 0.5 {
		t.Errorf("default threshold = %v", config.Monitor.PriceThresholdPct)
	}
	if config.Clients.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("default model = %q", config.Clients.Gemini.Model)
	}
	if config.Clients.Portfolio.GetTimeout() != 180*time.Second {
		t.Errorf("portfolio timeout = %v", config.Clients.Portfolio.GetTimeout())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/aegis.toml")
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("port = %d", config.Server.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aegis.toml")
	content := `
environment = "production"

[server]
port = 9090

[monitor]
interval = "15s"
price_threshold_pct = 1.5

[clients.alphavantage]
api_key = "test-key"
timeout = "10s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !config.IsProduction() {
		t.Error("environment override not applied")
	}
	if config.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", config.Server.Port)
	}
	if config.Monitor.GetInterval() != 15*time.Second {
		t.Errorf("interval = %v", config.Monitor.GetInterval())
	}
	if config.Monitor.PriceThresholdPct != 1.5 {
		t.Errorf("threshold = %v", config.Monitor.PriceThresholdPct)
	}
	if config.Clients.AlphaVantage.GetTimeout() != 10*time.Second {
		t.Errorf("alphavantage timeout = %v", config.Clients.AlphaVantage.GetTimeout())
	}
	// Untouched sections keep their defaults.
	if config.Clients.Tavily.BaseURL != "https://api.tavily.com" {
		t.Errorf("tavily base URL = %q", config.Clients.Tavily.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AEGIS_PORT", "7070")
	t.Setenv("AEGIS_LOG_LEVEL", "debug")
	t.Setenv("AEGIS_MONITOR_INTERVAL", "5s")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", config.Server.Port)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("log level = %q", config.Logging.Level)
	}
	if config.Monitor.GetInterval() != 5*time.Second {
		t.Errorf("interval = %v", config.Monitor.GetInterval())
	}
}

func TestGetTimeoutFallback(t *testing.T) {
	c := AlphaVantageConfig{Timeout: "not-a-duration"}
	if c.GetTimeout() != 30*time.Second {
		t.Errorf("fallback timeout = %v", c.GetTimeout())
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "env-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("AEGIS_GEMINI_API_KEY", "")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "")
	t.Setenv("AEGIS_ALPHAVANTAGE_API_KEY", "")

	key, err := ResolveAPIKey("tavily_api_key", "config-key")
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "env-key" {
		t.Errorf("key = %q, want env value to win", key)
	}

	key, err = ResolveAPIKey("gemini_api_key", "fallback")
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "fallback" {
		t.Errorf("key = %q, want config fallback", key)
	}

	if _, err := ResolveAPIKey("alphavantage_api_key", ""); err == nil {
		t.Error("expected an error when no key is available")
	}
}
