package server

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	defaults := GetServerDefault()
	assert.Equal(t, defaults, *cfg)
	assert.Equal(t, "sqlite", cfg.Metadata.Type)
	assert.Equal(t, "/query-result", cfg.HTTP.ResultsPath)
}

func TestLoadServerConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("metadata.type", "memory")
	viper.Set("source.file", "stocks.json")
	viper.Set("log.level", "debug")

	cfg, err := LoadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Metadata.Type)
	assert.Equal(t, "stocks.json", cfg.Source.File)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BaseServerConfig)
		err    string
	}{
		{"shutdown timeout", func(c *BaseServerConfig) { c.ShutdownTimeout = "soon" }, "shutdown_timeout"},
		{"source timeout", func(c *BaseServerConfig) { c.Source.Timeout = "" }, "source.timeout"},
		{"store type", func(c *BaseServerConfig) { c.Metadata.Type = "redis" }, "unsupported store type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetServerDefault()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.err)
		})
	}
}

func TestMetadataStoreType(t *testing.T) {
	cfg := GetServerDefault()
	cfg.Metadata.Type = ""
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Metadata.StoreType())

	cfg.Metadata.Type = "memory"
	assert.Equal(t, "memory", cfg.Metadata.StoreType())
}
