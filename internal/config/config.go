package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	AppURL     string           `yaml:"app_url"`
	Currency   string           `yaml:"currency"`
	Smoobu     SmoobuConfig     `yaml:"smoobu"`
	Stripe     StripeConfig     `yaml:"stripe"`
	PayPal     PayPalConfig     `yaml:"paypal"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port           int             `yaml:"port"`
	AllowedOrigins []string        `yaml:"allowed_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SmoobuConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIToken string `yaml:"api_token"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
}

type PayPalConfig struct {
	ClientID    string `yaml:"client_id"`
	Secret      string `yaml:"secret"`
	Environment string `yaml:"environment"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	JournalSpreadsheetID string `yaml:"journal_spreadsheet_id"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; variables may come from the deployment environment.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate fails fast at startup so a missing credential is never discovered
// one request at a time.
func (c *Config) Validate() error {
	if c.Smoobu.APIToken == "" {
		return errors.New("smoobu api token is required")
	}

	if !c.StripeEnabled() && !c.PayPalEnabled() {
		return errors.New("at least one payment provider must be configured")
	}

	if c.PayPalEnabled() {
		switch c.PayPal.Environment {
		case EnvSandbox, EnvProduction:
		default:
			return fmt.Errorf("paypal environment must be %q or %q, got %q",
				EnvSandbox, EnvProduction, c.PayPal.Environment)
		}
	}

	if c.AppURL == "" {
		return errors.New("app_url is required")
	}

	return nil
}

func (c *Config) StripeEnabled() bool {
	return c.Stripe.SecretKey != ""
}

func (c *Config) PayPalEnabled() bool {
	return c.PayPal.ClientID != "" && c.PayPal.Secret != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

func (c *Config) JournalEnabled() bool {
	return c.Google.CredentialsFile != "" && c.Google.JournalSpreadsheetID != ""
}

// IsProduction controls how much diagnostic detail error envelopes carry.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, EnvProduction)
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Currency == "" {
		c.Currency = "EUR"
	}
	if c.Smoobu.BaseURL == "" {
		c.Smoobu.BaseURL = "https://login.smoobu.com"
	}
	if c.PayPal.Environment == "" {
		c.PayPal.Environment = EnvSandbox
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 5
	}
}
