package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPortfolioName = "My Portfolio"

type Config struct {
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Storage   StorageConfig   `yaml:"storage"`
	Quotes    QuotesConfig    `yaml:"quotes"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Tinkoff   TinkoffConfig   `yaml:"tinkoff"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Web       WebConfig       `yaml:"web"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PortfolioConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file or sqlite
}

type QuotesConfig struct {
	Provider          string  `yaml:"provider"` // yahoo, moex or tinkoff
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	Concurrency       int     `yaml:"concurrency"`
	BreakerFailures   uint32  `yaml:"breaker_failures"`
}

type ScheduleConfig struct {
	AutosaveEnabled     *bool  `yaml:"autosave_enabled"`
	AutosaveInterval    string `yaml:"autosave_interval"`
	AutorefreshEnabled  *bool  `yaml:"autorefresh_enabled"`
	AutorefreshInterval string `yaml:"autorefresh_interval"`
}

type TinkoffConfig struct {
	Token     string `yaml:"token"`
	Sandbox   bool   `yaml:"sandbox"`
	AccountID string `yaml:"account_id"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	applyEnv(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func setDefaults(cfg *Config) {
	if cfg.Portfolio.Name == "" {
		cfg.Portfolio.Name = DefaultPortfolioName
	}
	if cfg.Portfolio.Path == "" {
		cfg.Portfolio.Path = "data/portfolio.quest"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Quotes.Provider == "" {
		cfg.Quotes.Provider = "yahoo"
	}
	if cfg.Quotes.TimeoutSeconds == 0 {
		cfg.Quotes.TimeoutSeconds = 10
	}
	if cfg.Quotes.RequestsPerSecond == 0 {
		cfg.Quotes.RequestsPerSecond = 2
	}
	if cfg.Quotes.Burst == 0 {
		cfg.Quotes.Burst = 1
	}
	if cfg.Quotes.Concurrency == 0 {
		cfg.Quotes.Concurrency = 4
	}
	if cfg.Quotes.BreakerFailures == 0 {
		cfg.Quotes.BreakerFailures = 5
	}
	if cfg.Schedule.AutosaveEnabled == nil {
		cfg.Schedule.AutosaveEnabled = boolPtr(true)
	}
	if cfg.Schedule.AutosaveInterval == "" {
		cfg.Schedule.AutosaveInterval = "5m"
	}
	if cfg.Schedule.AutorefreshEnabled == nil {
		cfg.Schedule.AutorefreshEnabled = boolPtr(true)
	}
	if cfg.Schedule.AutorefreshInterval == "" {
		cfg.Schedule.AutorefreshInterval = "15m"
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.TimeoutSeconds == 0 {
		cfg.OpenAI.TimeoutSeconds = 120
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnv lets secrets live in the environment or a .env file instead of the YAML.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("QUEST_TINKOFF_TOKEN"); v != "" {
		cfg.Tinkoff.Token = v
	}
	if v := os.Getenv("QUEST_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("QUEST_TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Quotes.Provider {
	case "yahoo", "moex":
	case "tinkoff":
		if c.Tinkoff.Token == "" {
			return fmt.Errorf("tinkoff.token is required when quotes.provider is tinkoff")
		}
	default:
		return fmt.Errorf("unknown quotes.provider %q", c.Quotes.Provider)
	}
	if c.Quotes.Concurrency < 0 {
		return fmt.Errorf("quotes.concurrency must not be negative")
	}
	if _, err := parseInterval(c.Schedule.AutosaveInterval); err != nil {
		return fmt.Errorf("invalid schedule.autosave_interval %q: %w", c.Schedule.AutosaveInterval, err)
	}
	if _, err := parseInterval(c.Schedule.AutorefreshInterval); err != nil {
		return fmt.Errorf("invalid schedule.autorefresh_interval %q: %w", c.Schedule.AutorefreshInterval, err)
	}
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	return nil
}

func parseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < time.Second {
		return 0, fmt.Errorf("must be at least 1s")
	}
	return d, nil
}

func (c *Config) IsSandbox() bool {
	return c.Tinkoff.Sandbox
}

func (c *Config) AutosaveEnabled() bool {
	return c.Schedule.AutosaveEnabled != nil && *c.Schedule.AutosaveEnabled
}

func (c *Config) AutorefreshEnabled() bool {
	return c.Schedule.AutorefreshEnabled != nil && *c.Schedule.AutorefreshEnabled
}

func (c *Config) AutosaveInterval() time.Duration {
	d, _ := parseInterval(c.Schedule.AutosaveInterval)
	return d
}

func (c *Config) AutorefreshInterval() time.Duration {
	d, _ := parseInterval(c.Schedule.AutorefreshInterval)
	return d
}

func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.Quotes.TimeoutSeconds) * time.Second
}

func (c *Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAI.TimeoutSeconds) * time.Second
}

func boolPtr(b bool) *bool {
	return &b
}
