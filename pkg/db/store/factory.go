package store

import (
	"context"
	"fmt"

	config "github.com/mwantia/screener/internal/config/server"
)

// Open creates, connects and migrates the store selected by cfg.Type
func Open(ctx context.Context, cfg config.MetadataServerConfig) (KeyValueStore, error) {
	var kv KeyValueStore

	switch cfg.StoreType() {
	case "memory":
		kv = NewMemoryStore()
	case "sqlite":
		sqliteStore, err := NewSQLiteStore(SQLiteConfig{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, err
		}
		kv = sqliteStore
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", cfg.Type)
	}

	if err := kv.Connect(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to connect store: %w", err)
	}
	if err := kv.Migrate(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return kv, nil
}
