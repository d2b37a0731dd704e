package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int      `mapstructure:"PORT" validate:"required,gt=0,lt=65536"`
	DatabaseURL   string   `mapstructure:"DB_URL" validate:"required"`
	PublicDir     string   `mapstructure:"PUBLIC_DIR" validate:"required"`
	ViewsDir      string   `mapstructure:"VIEWS_DIR" validate:"required"`
	LogLevel      string   `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error fatal"`
	LogFormat     string   `mapstructure:"LOG_FORMAT" validate:"required,oneof=console json"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	RetentionCron string   `mapstructure:"EVENT_RETENTION_CRON"` // Empty disables pruning
	RetentionDays int      `mapstructure:"EVENT_RETENTION_DAYS" validate:"gt=0"`
}

var keys = map[string]interface{}{
	"PORT":                 3000,
	"DB_URL":               "./exercise.db",
	"PUBLIC_DIR":           "./public",
	"VIEWS_DIR":            "./views",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"CORS_ORIGINS":         []string{"*"},
	"EVENT_RETENTION_CRON": "0 3 * * *",
	"EVENT_RETENTION_DAYS": 30,
}

// Load loads configuration from defaults, an optional .env file and the
// process environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Config, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)
	for key, value := range keys {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
