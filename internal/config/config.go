package config

import (
	"context"
	"fmt"
	"os"

	"github.com/gregtusar/spreadwatch/pkg/secrets"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MEXC     MEXCConfig     `mapstructure:"mexc"`
	Quanto   QuantoConfig   `mapstructure:"quanto"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	GCP      GCPConfig      `mapstructure:"gcp"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	StreamInterval int `mapstructure:"stream_interval"`
}

type MEXCConfig struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

type QuantoConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type MonitorConfig struct {
	PollInterval    int      `mapstructure:"poll_interval"`
	Concurrency     int      `mapstructure:"concurrency"`
	SpreadThreshold float64  `mapstructure:"spread_threshold"`
	Pairs           []string `mapstructure:"pairs"`
	PairsFile       string   `mapstructure:"pairs_file"`
	DiscoveryLimit  int      `mapstructure:"discovery_limit"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID string `mapstructure:"chat_id"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GCPConfig struct {
	ProjectID   string              `mapstructure:"project_id"`
	UseSecrets  bool                `mapstructure:"use_secrets"`
	SecretNames secrets.SecretNames `mapstructure:"secret_names"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/spreadwatch")
	}

	// Read environment variables
	v.SetEnvPrefix("SPREADWATCH")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override with environment variables if set
	overrideFromEnv(&config)

	// Load secrets from GCP if enabled
	if config.GCP.UseSecrets && config.GCP.ProjectID != "" {
		ctx := context.Background()
		logger := logrus.New()
		if err := loadSecretsFromGCP(ctx, &config, logger); err != nil {
			return nil, fmt.Errorf("error loading secrets from GCP: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.stream_interval", 5)

	// Venue defaults
	v.SetDefault("mexc.base_url", "https://contract.mexc.com")
	v.SetDefault("quanto.base_url", "https://api.quanto.trade")
	v.SetDefault("quanto.timeout", 8)

	// Monitor defaults
	v.SetDefault("monitor.poll_interval", 5)
	v.SetDefault("monitor.concurrency", 10)
	v.SetDefault("monitor.spread_threshold", 1.0)
	v.SetDefault("monitor.pairs", []string{"BTC/USDT", "ETH/USDT"})
	v.SetDefault("monitor.pairs_file", "./data/pairs.json")
	v.SetDefault("monitor.discovery_limit", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// GCP defaults
	v.SetDefault("gcp.use_secrets", false)
	v.SetDefault("gcp.project_id", "")

	// Secret name defaults
	secretNames := secrets.DefaultSecretNames()
	v.SetDefault("gcp.secret_names.mexc_api_key", secretNames.MEXCAPIKey)
	v.SetDefault("gcp.secret_names.mexc_api_secret", secretNames.MEXCAPISecret)
	v.SetDefault("gcp.secret_names.telegram_token", secretNames.TelegramToken)
	v.SetDefault("gcp.secret_names.telegram_chat_id", secretNames.TelegramChatID)
}

func overrideFromEnv(config *Config) {
	// Venue credentials from environment
	if apiKey := os.Getenv("MEXC_API_KEY"); apiKey != "" {
		config.MEXC.APIKey = apiKey
	}
	if apiSecret := os.Getenv("MEXC_API_SECRET"); apiSecret != "" {
		config.MEXC.APISecret = apiSecret
	}

	// Telegram credentials from environment
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	}

	// GCP configuration from environment
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		config.GCP.ProjectID = projectID
	}
	if useSecrets := os.Getenv("GCP_USE_SECRETS"); useSecrets == "true" {
		config.GCP.UseSecrets = true
	}
}

func loadSecretsFromGCP(ctx context.Context, config *Config, logger *logrus.Logger) error {
	secretManager, err := secrets.NewGCPSecretManager(ctx, config.GCP.ProjectID, logger)
	if err != nil {
		return fmt.Errorf("failed to create secret manager: %w", err)
	}
	defer secretManager.Close()

	// Only load secrets if they're not already set
	if config.MEXC.APIKey == "" {
		config.MEXC.APIKey = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.MEXCAPIKey, "")
	}
	if config.MEXC.APISecret == "" {
		config.MEXC.APISecret = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.MEXCAPISecret, "")
	}

	if config.Telegram.Token == "" {
		config.Telegram.Token = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.TelegramToken, "")
	}
	if config.Telegram.ChatID == "" {
		config.Telegram.ChatID = secretManager.GetSecretWithDefault(ctx,
			config.GCP.SecretNames.TelegramChatID, "")
	}

	logger.Info("Successfully loaded secrets from GCP Secret Manager")
	return nil
}
