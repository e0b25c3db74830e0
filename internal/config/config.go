package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings for a decryption run
type Config struct {
	Workers        int    `mapstructure:"workers"`
	PayloadField   string `mapstructure:"payload_field"`
	TargetMode     string `mapstructure:"target_mode"`
	OutputDir      string `mapstructure:"output_dir"`
	WriteArtifacts bool   `mapstructure:"write_artifacts"`
}

// Load reads configuration using Viper. configFile may be empty, in which case
// findmy-config.yaml is searched in the usual locations and a missing file is
// not an error. Environment variables prefixed FINDMY_ override file values.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("findmy-config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.findmy")
		v.AddConfigPath("/etc/findmy")
	}

	// Set defaults
	v.SetDefault("workers", 4)
	v.SetDefault("payload_field", "encryptedData")
	v.SetDefault("target_mode", "group")
	v.SetDefault("output_dir", "")
	v.SetDefault("write_artifacts", true)

	// Allow environment variables
	v.SetEnvPrefix("FINDMY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Workers < 1 || c.Workers > 256 {
		return fmt.Errorf("workers must be between 1 and 256, got %d", c.Workers)
	}
	if strings.TrimSpace(c.PayloadField) == "" {
		return errors.New("payload_field must not be empty")
	}
	switch strings.ToLower(c.TargetMode) {
	case "group", "file":
	default:
		return fmt.Errorf("target_mode must be group or file, got %q", c.TargetMode)
	}
	return nil
}
