package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModePaper = "paper"
	ModeLive  = "live"
)

type Config struct {
	Log      LoggingConfig  `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Trading  TradingConfig  `yaml:"trading"`
	Kite     KiteConfig     `yaml:"kite"`
	Paper    PaperConfig    `yaml:"paper"`
	State    StateConfig    `yaml:"state"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Telegram TelegramConfig `yaml:"telegram"`
	Journal  JournalConfig  `yaml:"journal"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type TradingConfig struct {
	// Mode selects paper or live execution. Read once at startup.
	Mode string `yaml:"mode"`
	// Exchange for instrument lookups and order routing (NFO for
	// NSE futures and options).
	Exchange string `yaml:"exchange"`
	Product  string `yaml:"product"`
}

type KiteConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	APIKey    string        `yaml:"api_key"`
	TokenPath string        `yaml:"token_path"`
	// AccessToken is normally loaded from TokenPath or the
	// KITE_ACCESS_TOKEN env var, not from the config file.
	AccessToken string `yaml:"access_token"`
}

type PaperConfig struct {
	TradesPath string `yaml:"trades_path"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (m MetricsConfig) EnabledValue() bool {
	return m.Enabled == nil || *m.Enabled
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

type JournalConfig struct {
	Enabled         bool          `yaml:"enabled"`
	DSN             string        `yaml:"dsn"`
	Schema          string        `yaml:"schema"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "logs/bridge.log"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Trading.Mode == "" {
		cfg.Trading.Mode = ModePaper
	}
	if cfg.Trading.Exchange == "" {
		cfg.Trading.Exchange = "NFO"
	}
	if cfg.Trading.Product == "" {
		cfg.Trading.Product = "NRML"
	}
	if cfg.Kite.BaseURL == "" {
		cfg.Kite.BaseURL = "https://api.kite.trade"
	}
	if cfg.Kite.Timeout == 0 {
		cfg.Kite.Timeout = 10 * time.Second
	}
	if cfg.Kite.TokenPath == "" {
		cfg.Kite.TokenPath = "token.json"
	}
	if cfg.Paper.TradesPath == "" {
		cfg.Paper.TradesPath = "logs/paper_trades.csv"
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/bridge.db"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Journal.Schema == "" {
		cfg.Journal.Schema = "public"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("KITE_API_KEY")); v != "" {
		cfg.Kite.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("KITE_ACCESS_TOKEN")); v != "" {
		cfg.Kite.AccessToken = v
	}
	if v := strings.TrimSpace(os.Getenv("BRIDGE_TELEGRAM_TOKEN")); v != "" {
		cfg.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("BRIDGE_TELEGRAM_CHAT_ID")); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := strings.TrimSpace(os.Getenv("BRIDGE_JOURNAL_DSN")); v != "" {
		cfg.Journal.DSN = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Trading.Mode {
	case ModePaper, ModeLive:
	default:
		return fmt.Errorf("trading.mode must be %q or %q", ModePaper, ModeLive)
	}
	if cfg.Trading.Mode == ModeLive && cfg.Kite.APIKey == "" {
		return errors.New("kite.api_key is required in live mode")
	}
	if cfg.Kite.Timeout < 0 {
		return errors.New("kite.timeout must be >= 0")
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	if cfg.Telegram.Enabled && (cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "") {
		return errors.New("telegram.enabled requires token and chat_id")
	}
	if cfg.Journal.Enabled && strings.TrimSpace(cfg.Journal.DSN) == "" {
		return errors.New("journal.enabled requires a dsn")
	}
	return nil
}
