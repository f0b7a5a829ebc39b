package client

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mwantia/screener/internal/agent"
	"github.com/mwantia/screener/pkg/explorer"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/query"
	"github.com/spf13/cobra"

	config "github.com/mwantia/screener/internal/config/server"
)

// viewFlags describe a view on the command line.
type viewFlags struct {
	filters []string
	sort    string
	desc    bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "column filter as <column>=<text>, repeatable")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "column to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
}

func (f *viewFlags) filterState() (query.FilterState, error) {
	filters := query.FilterState{}
	for _, raw := range f.filters {
		column, value, ok := strings.Cut(raw, "=")
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid filter '%s', expected <column>=<text>", raw)
		}
		filters[column] = value
	}
	return filters, nil
}

// apply sets the flag filters and sort on top of the opened location.
func (f *viewFlags) apply(e *explorer.Explorer) error {
	filters, err := f.filterState()
	if err != nil {
		return err
	}
	for _, column := range filters.Columns() {
		e.SetFilter(column, filters[column])
	}

	if f.sort != "" {
		e.ToggleSort(f.sort)
		if f.desc {
			e.ToggleSort(f.sort)
		}
	}
	return nil
}

// openSession loads the configuration and, when fetch is set, fetches the
// records and opens location. The caller must close the returned session.
func openSession(ctx context.Context, location string, fetch bool) (*agent.Session, *explorer.Location, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Command output owns stdout
	logger := log.NewWriterLoggerService("screener", cfg.Log, os.Stderr)
	address := &explorer.Location{}

	session, err := agent.NewSession(ctx, cfg, logger, address)
	if err != nil {
		return nil, nil, err
	}

	if fetch {
		if location == "" {
			location = cfg.HTTP.ResultsPath
		}
		openLocation(ctx, session.Explorer, location, logger)
	}
	return session, address, nil
}

// openLocation opens location on e. A failed fetch only warns: the view
// still reflects location and saved queries stay usable.
func openLocation(ctx context.Context, e *explorer.Explorer, location string, logger log.LoggerService) {
	if err := e.Open(ctx, location); err != nil {
		logger.Warn("Continuing with an empty record set: %v", err)
	}
}
