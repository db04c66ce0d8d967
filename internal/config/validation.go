package config

import (
	"fmt"
)

var validBackends = map[string]bool{
	"pebble":  true,
	"bbolt":   true,
	"leveldb": true,
	"memory":  true,
}

// ValidateConfig checks the complete configuration for consistency
func ValidateConfig(c *Config) error {
	if !validBackends[c.Database.Backend] {
		return fmt.Errorf("unknown database backend %q (supported: pebble, bbolt, leveldb, memory)", c.Database.Backend)
	}
	if c.Database.Backend != "memory" && c.Database.Path == "" {
		return fmt.Errorf("database.path must be set for backend %q", c.Database.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.Hub.MaxProxiesPerSymbol == 0 {
		return fmt.Errorf("hub.max_proxies_per_symbol must be at least 1")
	}

	for addr, endpoint := range c.Proxies {
		if endpoint == "" {
			return fmt.Errorf("proxy %q has an empty endpoint", addr)
		}
	}

	return nil
}
