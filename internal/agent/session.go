package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	config "github.com/mwantia/screener/internal/config/server"
	"github.com/mwantia/screener/pkg/db/store"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/record"
	"github.com/mwantia/screener/pkg/savedquery"
)

// Session bundles everything one explorer needs. Close releases the store.
type Session struct {
	KV       store.KeyValueStore
	Records  *record.Store
	Source   record.Source
	Explorer *explorer.Explorer
}

// NewSource picks the configured record source. A local file takes
// precedence over the URL.
func NewSource(cfg config.SourceServerConfig) (record.Source, error) {
	if cfg.File != "" {
		return record.NewFileSource(cfg.File, cfg.RecordsField), nil
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("either source.file or source.url must be set")
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid source timeout '%s': %w", cfg.Timeout, err)
	}
	return record.NewHTTPSource(cfg.URL, cfg.RecordsField, &http.Client{Timeout: timeout}), nil
}

// NewSession opens the saved-query store and wires a fresh explorer.
// Records are not loaded yet; call Explorer.Open.
func NewSession(ctx context.Context, cfg *config.BaseServerConfig, logger log.LoggerService, address explorer.AddressBarSync) (*Session, error) {
	src, err := NewSource(cfg.Source)
	if err != nil {
		return nil, err
	}

	kv, err := store.Open(ctx, cfg.Metadata)
	if err != nil {
		return nil, err
	}

	records := record.NewStore(logger.Named("records"))
	repo := savedquery.NewRepository(kv, logger.Named("queries"))

	return &Session{
		KV:      kv,
		Records: records,
		Source:  src,
		Explorer: explorer.New(records, src, repo, address, logger.Named("explorer"), explorer.Options{
			ResultsPath: cfg.HTTP.ResultsPath,
			SavePath:    cfg.HTTP.SavePath,
		}),
	}, nil
}

func (s *Session) Close() error {
	return s.KV.Close()
}
