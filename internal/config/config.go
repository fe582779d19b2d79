// Package config provides configuration loading, validation, and defaults
// for the broadcast bot. It reads config.yaml, overlays BOT_* environment
// variables, and validates the result before the application starts.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components:
// logging, Telegram transport, storage, broadcast behavior, scheduled
// maintenance, and the operator-facing message strings.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the operator set.
// BotInfo is populated at startup from getMe and is not read from the file.
type TelegramConfig struct {
	Token       string  `mapstructure:"token"        validate:"required"`
	OperatorIDs []int64 `mapstructure:"operator_ids" validate:"required,min=1,dive,gt=0"`

	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// BroadcastConfig tunes the fan-out engine and album aggregation.
type BroadcastConfig struct {
	// AlbumWindow is the trailing-edge debounce window for media groups.
	AlbumWindow time.Duration `mapstructure:"album_window" validate:"min=100ms,max=30s"`
	// AttemptTimeout bounds every outbound Telegram call made during a
	// fan-out so one hung destination cannot stall the batch.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" validate:"min=1s,max=5m"`
}

// SchedulerConfig maps task names to their schedule configuration.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a registered scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// MessagesConfig holds every operator-facing response string. Defaults are
// in Uzbek, matching the deployment this bot serves.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"         validate:"required"`
	NotAuthorized  string `mapstructure:"not_authorized"  validate:"required"`
	ButtonList     string `mapstructure:"button_list"     validate:"required"`
	ButtonRetract  string `mapstructure:"button_retract"  validate:"required"`
	NoDestinations string `mapstructure:"no_destinations" validate:"required"`
	ListHeader     string `mapstructure:"list_header"     validate:"required"`
	Broadcasted    string `mapstructure:"broadcasted"     validate:"required"`
	NoneDelivered  string `mapstructure:"none_delivered"  validate:"required"`
	Retracted      string `mapstructure:"retracted"       validate:"required"`
	AdminWarning   string `mapstructure:"admin_warning"   validate:"required"`
}

// LoadConfig loads configuration from the given YAML file (optional) and
// BOT_* environment variables, applies defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsOperator reports whether the given user ID belongs to the configured
// operator set.
func (c *TelegramConfig) IsOperator(userID int64) bool {
	for _, id := range c.OperatorIDs {
		if id == userID {
			return true
		}
	}
	return false
}
