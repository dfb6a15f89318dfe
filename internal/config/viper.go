package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Recon struct {
		ProximityDays          int      `mapstructure:"proximity_days" yaml:"proximity_days"`
		HorizonDays            int      `mapstructure:"horizon_days" yaml:"horizon_days"`
		ExcludedPaymentMethods []string `mapstructure:"excluded_payment_methods" yaml:"excluded_payment_methods"`
	} `mapstructure:"recon" yaml:"recon"`

	Extract struct {
		MinPageSpacing time.Duration `mapstructure:"min_page_spacing" yaml:"min_page_spacing"`
		ReadyTimeout   time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
	} `mapstructure:"extract" yaml:"extract"`

	Dispatch struct {
		OrderDir     string `mapstructure:"order_dir" yaml:"order_dir"`
		PrintEnabled bool   `mapstructure:"print_enabled" yaml:"print_enabled"`
		RePrint      bool   `mapstructure:"re_print" yaml:"re_print"`
	} `mapstructure:"dispatch" yaml:"dispatch"`

	Report struct {
		MatchLogFile string `mapstructure:"match_log_file" yaml:"match_log_file"`
		ResidualFile string `mapstructure:"residual_file" yaml:"residual_file"`
	} `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config file, then TXNRECON_* environment
// variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.txn-recon")
	v.AddConfigPath(".txn-recon")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TXNRECON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine, defaults and env vars apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("recon.proximity_days", 6)
	v.SetDefault("recon.horizon_days", 7)
	v.SetDefault("recon.excluded_payment_methods", []string{})

	v.SetDefault("extract.min_page_spacing", "2s")
	v.SetDefault("extract.ready_timeout", "15s")

	v.SetDefault("dispatch.order_dir", "coded-orders")
	v.SetDefault("dispatch.print_enabled", false)
	v.SetDefault("dispatch.re_print", false)

	v.SetDefault("report.match_log_file", "matches.csv")
	v.SetDefault("report.residual_file", "residual.csv")
}

// validateConfig checks configuration invariants.
func validateConfig(config *Config) error {
	if config.Recon.ProximityDays <= 0 {
		return fmt.Errorf("recon.proximity_days must be positive, got %d", config.Recon.ProximityDays)
	}
	if config.Recon.HorizonDays <= 0 {
		return fmt.Errorf("recon.horizon_days must be positive, got %d", config.Recon.HorizonDays)
	}
	if config.Extract.MinPageSpacing < 0 {
		return fmt.Errorf("extract.min_page_spacing must not be negative, got %s", config.Extract.MinPageSpacing)
	}
	if config.Extract.ReadyTimeout <= 0 {
		return fmt.Errorf("extract.ready_timeout must be positive, got %s", config.Extract.ReadyTimeout)
	}
	if config.Dispatch.OrderDir == "" {
		return fmt.Errorf("dispatch.order_dir must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(config.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	return nil
}
