// Package config loads and validates the application configuration from
// a YAML file and SPAMWATCH_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines all application settings: logging, Telegram access,
// moderation targets, OCR, storage, and scheduled maintenance.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Media     MediaConfig     `mapstructure:"media"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and the channel topology the
// moderator operates on.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// MonitoredChats are the channel or supergroup IDs whose messages are
	// classified. Messages from any other chat are ignored.
	MonitoredChats []int64 `mapstructure:"monitored_chats" validate:"required,min=1"`

	// AdminIDs are sender IDs fully exempt from moderation.
	AdminIDs []int64 `mapstructure:"admin_ids"`

	// LogChannelID receives the plain-text audit entries.
	LogChannelID int64 `mapstructure:"log_channel_id" validate:"required"`

	// ReportChannelID receives a forwarded copy of each spam message for
	// human review. Zero disables forwarding.
	ReportChannelID int64 `mapstructure:"report_channel_id"`
}

// GeminiConfig configures the vision backend used to transcribe photo text.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	ModelName         string  `mapstructure:"model_name" validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=5"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=1,max=60"`
}

// DatabaseConfig holds the SQLite file path.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// MediaConfig controls where photo artifacts are written and how long they
// are retained before the cleanup job removes them.
type MediaConfig struct {
	Dir           string        `mapstructure:"dir" validate:"required"`
	RetentionDays int           `mapstructure:"retention_days" validate:"min=1"`
	DownloadLimit time.Duration `mapstructure:"download_timeout" validate:"min=1s,max=5m"`
}

// RulesConfig points at an optional JSON rules file. When Path is empty the
// compiled-in rule tables are used.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig holds the cron expressions for background maintenance.
type SchedulerConfig struct {
	MediaCleanup  string `mapstructure:"media_cleanup" validate:"required"`
	DBMaintenance string `mapstructure:"db_maintenance" validate:"required"`
}

// LoadConfig reads the configuration file at path, applies defaults and
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SPAMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Missing file is fine; env vars and defaults still apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.0)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)

	v.SetDefault("database.path", "spamwatch.db")

	v.SetDefault("media.dir", "media")
	v.SetDefault("media.retention_days", 30)
	v.SetDefault("media.download_timeout", 30*time.Second)

	v.SetDefault("scheduler.media_cleanup", "0 3 * * *")
	v.SetDefault("scheduler.db_maintenance", "0 4 * * 0")
}
