package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Lark     LarkConfig     `mapstructure:"lark"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// LarkConfig holds Lark messenger configuration. Messaging is disabled when
// Enabled is false or credentials are missing.
type LarkConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AppID     string `mapstructure:"app_id"`
	AppSecret string `mapstructure:"app_secret"`
}

// OpenAIConfig holds brand advisory configuration. The advisor is disabled
// when Enabled is false or the API key is missing.
type OpenAIConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// AdminConfig bootstraps the first admin user
type AdminConfig struct {
	UserID string `mapstructure:"user_id"`
	Name   string `mapstructure:"name"`
	Token  string `mapstructure:"token"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/caseflow.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("storage.base_dir", "data/files")

	viper.SetDefault("lark.enabled", false)

	viper.SetDefault("openai.enabled", false)
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.3)

	viper.SetDefault("admin.user_id", "admin")
	viper.SetDefault("admin.name", "Administrator")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("admin.token", "ADMIN_TOKEN")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Admin.Token == "" {
		return fmt.Errorf("admin.token is required")
	}

	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
	}

	if c.OpenAI.Enabled && c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required when openai is enabled")
	}

	return nil
}
