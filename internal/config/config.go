package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	RegistryPath      string  `mapstructure:"registry_path" yaml:"registry_path"`
	OutputFormat      string  `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown json"`
	SignificanceLevel float64 `mapstructure:"significance_level" yaml:"significance_level" validate:"gt=0,lt=1"`
	MinSamples        int     `mapstructure:"min_samples" yaml:"min_samples" validate:"gte=3"`
	MaxResults        int     `mapstructure:"max_results" yaml:"max_results" validate:"gte=0"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	// Sweep and watch
	SweepWorkers    int `mapstructure:"sweep_workers" yaml:"sweep_workers" validate:"gte=1,lte=64"`
	WatchDebounceMs int `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms" validate:"gte=0"`

	// Workbook sheet selection for .xlsx sources
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index" validate:"gte=0"`
}

// Dir returns ~/.healthloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".healthloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.healthloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HEALTHLOOM")
	v.AutomaticEnv()

	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve registry_path default: ~/.healthloom/variables.yaml
	if c.RegistryPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.RegistryPath = filepath.Join(dir, "variables.yaml")
	}
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("registry_path", "")
	v.SetDefault("output_format", "markdown")
	v.SetDefault("significance_level", 0.05)
	v.SetDefault("min_samples", 3)
	v.SetDefault("max_results", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sweep_workers", 4)
	v.SetDefault("watch_debounce_ms", 250)
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	if dir, err := Dir(); err == nil {
		c.RegistryPath = filepath.Join(dir, "variables.yaml")
	}
	return &c
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s=%v (%s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}
