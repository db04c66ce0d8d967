package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (oraclehubd.toml)
// 3. Environment variables (ORACLEHUBD_ prefix)
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load configuration file when one is given
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix("ORACLEHUBD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.configPath = configPath

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// SaveExampleConfig saves an example configuration file
func SaveExampleConfig(configPath string) error {
	v := viper.New()

	for key, value := range generateExampleConfig() {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}

	return nil
}

// generateExampleConfig generates example configuration values
func generateExampleConfig() map[string]interface{} {
	return map[string]interface{}{
		"database.backend": "pebble",
		"database.path":    "/var/lib/oraclehubd/db",

		"server.ip":           "127.0.0.1",
		"server.port":         8585,
		"server.cors_origins": []string{"*"},

		"log.level":  "info",
		"log.format": "json",
		"log.output": "/var/log/oraclehubd/oraclehubd.log",

		"hub.owner":                  "admin",
		"hub.base_denom":             "usd",
		"hub.max_proxies_per_symbol": 10,

		"proxies.band_proxy":      "http://127.0.0.1:9100",
		"proxies.chainlink_proxy": "http://127.0.0.1:9101",
	}
}
