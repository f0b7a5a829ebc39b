package server

// MetadataServerConfig holds the saved-query store configuration
type MetadataServerConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	SQLite MetadataSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
}

// MetadataSQLiteConfig holds SQLite-specific configuration
type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StoreType is the configured store type, where an empty type means sqlite.
func (cfg MetadataServerConfig) StoreType() string {
	if cfg.Type == "" {
		return "sqlite"
	}
	return cfg.Type
}
