package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appName = "bingers"

type Config struct {
	DataDir string `mapstructure:"data_dir"`
	TVMaze  struct {
		BaseURL          string `mapstructure:"baseurl"`
		TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
		RetryCount       int    `mapstructure:"retry_count"`
		RetryWaitSeconds int    `mapstructure:"retry_wait_seconds"`
	} `mapstructure:"tvmaze"`
	Search struct {
		Status   string `mapstructure:"status"`
		Language string `mapstructure:"language"`
	} `mapstructure:"search"`
	Schedule struct {
		CronSpec string `mapstructure:"cron_spec"`
	} `mapstructure:"schedule"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// StorePath is the subscription file inside DataDir.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "subscriptions.yaml")
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("tvmaze.baseurl", "https://api.tvmaze.com")
	v.SetDefault("tvmaze.timeout_seconds", 15)
	v.SetDefault("tvmaze.retry_count", 3)
	v.SetDefault("tvmaze.retry_wait_seconds", 2)
	v.SetDefault("search.status", "Running")
	v.SetDefault("search.language", "English")
	v.SetDefault("schedule.cron_spec", "0 */6 * * *")
	v.SetDefault("log.level", "warn")
}

// LoadConfig reads configPath (or the default location when empty) and
// BINGERS_* environment variables. A missing config file is not an error.
func LoadConfig(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	v.SetEnvPrefix("BINGERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir is not set")
	}
	if c.TVMaze.BaseURL == "" {
		return errors.New("config: tvmaze.baseurl is not set")
	}
	if c.TVMaze.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: tvmaze.timeout_seconds must be positive, got %d", c.TVMaze.TimeoutSeconds)
	}
	if c.TVMaze.RetryCount < 0 {
		return fmt.Errorf("config: tvmaze.retry_count must not be negative, got %d", c.TVMaze.RetryCount)
	}
	return nil
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, ".local", "share", appName)
}
