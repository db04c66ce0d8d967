package config

import "github.com/spf13/viper"

// setDefaults seeds viper with the daemon defaults
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", "pebble")
	v.SetDefault("database.path", "data")

	v.SetDefault("server.ip", "127.0.0.1")
	v.SetDefault("server.port", 8585)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("hub.base_denom", "usd")
	v.SetDefault("hub.max_proxies_per_symbol", 10)
}
