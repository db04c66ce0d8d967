package config

// Config is the full daemon configuration
type Config struct {
	Database DatabaseConfig    `mapstructure:"database"`
	Server   ServerConfig      `mapstructure:"server"`
	Log      LogConfig         `mapstructure:"log"`
	Hub      HubConfig         `mapstructure:"hub"`
	Proxies  map[string]string `mapstructure:"proxies"`

	configPath string
}

// DatabaseConfig selects and locates the key-value backend
type DatabaseConfig struct {
	// Backend is one of: pebble, bbolt, leveldb, memory
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// ServerConfig configures the JSON-RPC listener
type ServerConfig struct {
	IP          string   `mapstructure:"ip"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// HubConfig seeds the registry on first start. Once the hub has been
// initialized these values are ignored; ownership changes go through the
// update_owner command.
type HubConfig struct {
	Owner               string `mapstructure:"owner"`
	BaseDenom           string `mapstructure:"base_denom"`
	MaxProxiesPerSymbol uint8  `mapstructure:"max_proxies_per_symbol"`
}

// GetConfigPath returns the path the config was loaded from, if any
func (c *Config) GetConfigPath() string {
	return c.configPath
}
