// Package config loads marketsimd's configuration from an optional
// config file plus MARKETSIM_-prefixed environment overrides, unmarshaled
// into a mapstructure-tagged struct with defaults set before loading.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is everything marketsimd needs to start: its HTTP address, the
// matching engine's flat per-event fee, and the logging level and output
// format. Market.OrderTTL is loaded (default 24h) but nothing reads it:
// the HTTP layer stamps every order with a fixed 24h expiry.
type Config struct {
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	Market struct {
		EventFee uint64        `mapstructure:"event_fee"`
		OrderTTL time.Duration `mapstructure:"order_ttl"`
	} `mapstructure:"market"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// Load reads configuration from configPath (if non-empty, a directory to
// search for config.yaml) and the environment, falling back to defaults
// when no file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/marketsim")
	}

	setDefaults(v)

	v.SetEnvPrefix("MARKETSIM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("market.event_fee", uint64(1))
	v.SetDefault("market.order_ttl", 24*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
