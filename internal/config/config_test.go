package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if cfg.Trading.Mode != ModePaper {
		t.Fatalf("expected paper mode default, got %q", cfg.Trading.Mode)
	}
	if cfg.Trading.Exchange != "NFO" {
		t.Fatalf("expected NFO exchange default, got %q", cfg.Trading.Exchange)
	}
	if cfg.Kite.BaseURL != "https://api.kite.trade" {
		t.Fatalf("expected kite base url default, got %q", cfg.Kite.BaseURL)
	}
	if cfg.Kite.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout default, got %v", cfg.Kite.Timeout)
	}
	if cfg.Paper.TradesPath != "logs/paper_trades.csv" {
		t.Fatalf("expected paper trades path default, got %q", cfg.Paper.TradesPath)
	}
	if !cfg.Metrics.EnabledValue() {
		t.Fatalf("expected metrics enabled default")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := &Config{Trading: TradingConfig{Mode: "dry-run"}}
	applyDefaults(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestValidateLiveRequiresAPIKey(t *testing.T) {
	t.Setenv("KITE_API_KEY", "")
	cfg := &Config{Trading: TradingConfig{Mode: ModeLive}}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for live mode without api key")
	}
}

func TestEnvOverridesCredentials(t *testing.T) {
	t.Setenv("KITE_API_KEY", "env-key")
	t.Setenv("KITE_ACCESS_TOKEN", "env-token")
	cfg := &Config{Kite: KiteConfig{APIKey: "file-key"}}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if cfg.Kite.APIKey != "env-key" {
		t.Fatalf("expected env api key override, got %q", cfg.Kite.APIKey)
	}
	if cfg.Kite.AccessToken != "env-token" {
		t.Fatalf("expected env access token override, got %q", cfg.Kite.AccessToken)
	}
}

func TestValidateRejectsTelegramWithoutConfig(t *testing.T) {
	t.Setenv("BRIDGE_TELEGRAM_TOKEN", "")
	t.Setenv("BRIDGE_TELEGRAM_CHAT_ID", "")
	cfg := &Config{Telegram: TelegramConfig{Enabled: true}}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for telegram enabled without token/chat_id")
	}
}

func TestValidateRejectsJournalWithoutDSN(t *testing.T) {
	t.Setenv("BRIDGE_JOURNAL_DSN", "")
	cfg := &Config{Journal: JournalConfig{Enabled: true}}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := validate(cfg); err == nil {
		t.Fatalf("expected error for journal enabled without dsn")
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("trading:\n  mode: paper\nlog:\n  level: debug\nkite:\n  timeout: 5s\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.Kite.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Kite.Timeout)
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
