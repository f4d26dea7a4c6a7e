// Package config loads gristle settings from an optional YAML file and GRISTLE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/willzfarmer/gristle"
	"github.com/willzfarmer/gristle/internal/logger"
)

// EnvPrefix prefixes every environment variable, e.g. GRISTLE_SAMPLE_LINES.
const EnvPrefix = "GRISTLE"

// Config holds all configuration for the commands
type Config struct {
	Sample  SampleConfig  `mapstructure:"sample"`
	Detect  DetectConfig  `mapstructure:"detect"`
	Freq    FreqConfig    `mapstructure:"freq"`
	Convert ConvertConfig `mapstructure:"convert"`
	Log     LogConfig     `mapstructure:"log"`
}

// SampleConfig bounds the sample used for dialect detection
type SampleConfig struct {
	Lines int `mapstructure:"lines" validate:"gte=1"`
	Bytes int `mapstructure:"bytes" validate:"gte=16"`
}

// DetectConfig tunes dialect detection
type DetectConfig struct {
	Consistency float64  `mapstructure:"consistency" validate:"gt=0,lte=1"`
	Candidates  []string `mapstructure:"candidates" validate:"min=1,dive,required"`
}

// FreqConfig tunes the frequency command
type FreqConfig struct {
	MaxDistinct int `mapstructure:"max_distinct" validate:"gte=1"`
}

// ConvertConfig tunes the convert command
type ConvertConfig struct {
	Pipelined bool `mapstructure:"pipelined"`
	QueueSize int  `mapstructure:"queue_size" validate:"gte=1"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" validate:"loglevel"`
}

// Load reads configuration. An explicit path must exist; without one, gristle.yaml
// is looked up in the working directory and in $HOME/.config/gristle, and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gristle")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gristle"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks value ranges. Log levels are checked with logger.ParseLevel,
// so the file accepts exactly what --log-level accepts.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logger.ParseLevel(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DetectorOptions converts the detection settings into detector options.
func (c *Config) DetectorOptions() []gristle.DetectorOption {
	return []gristle.DetectorOption{
		gristle.WithSampleLines(c.Sample.Lines),
		gristle.WithSampleBytes(c.Sample.Bytes),
		gristle.WithConsistency(c.Detect.Consistency),
		gristle.WithCandidates(c.Detect.Candidates...),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sample.lines", gristle.DefaultSampleLines)
	v.SetDefault("sample.bytes", gristle.DefaultSampleBytes)

	v.SetDefault("detect.consistency", gristle.DefaultConsistency)
	v.SetDefault("detect.candidates", gristle.DefaultCandidates)

	v.SetDefault("freq.max_distinct", gristle.DefaultMaxDistinct)

	v.SetDefault("convert.pipelined", false)
	v.SetDefault("convert.queue_size", gristle.DefaultQueueSize)

	v.SetDefault("log.level", "info")
}
