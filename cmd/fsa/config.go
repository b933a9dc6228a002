package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// config holds the settings shared by all commands. Values come from flags,
// FSA_* environment variables and an optional fsa.yaml, in that order of
// precedence.
type config struct {
	LogLevel    string        `mapstructure:"log_level"`
	Development bool          `mapstructure:"development"`
	Sparse      bool          `mapstructure:"sparse"`
	Comments    bool          `mapstructure:"comments"`
	Annotate    bool          `mapstructure:"annotate"`
	CacheRows   int           `mapstructure:"cache_rows"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("development", false)
	v.SetDefault("sparse", false)
	v.SetDefault("comments", false)
	v.SetDefault("annotate", false)
	v.SetDefault("cache_rows", 2)
	v.SetDefault("timeout", time.Duration(0))
}

// loadConfig reads file, or fsa.yaml from the working directory when file
// is empty, and decodes the merged settings.
func loadConfig(v *viper.Viper, file string) (*config, error) {
	v.SetEnvPrefix("FSA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fsa")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
