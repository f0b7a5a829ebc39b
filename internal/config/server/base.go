package server

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Source   SourceServerConfig   `mapstructure:"source"   yaml:"source"`
	HTTP     HTTPServerConfig     `mapstructure:"http"     yaml:"http"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (cfg *BaseServerConfig) Validate() error {
	if _, err := time.ParseDuration(cfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown_timeout: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Source.Timeout); err != nil {
		return fmt.Errorf("source.timeout: %w", err)
	}
	if t := cfg.Metadata.StoreType(); t != "sqlite" && t != "memory" {
		return fmt.Errorf("metadata.type: unsupported store type '%s'", cfg.Metadata.Type)
	}
	return nil
}
