package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	config "github.com/mwantia/screener/internal/config/server"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SourceServerConfig
		want    any
		wantErr string
	}{
		{
			name: "file takes precedence",
			cfg:  config.SourceServerConfig{File: "stocks.json", URL: "http://localhost/api/data", Timeout: "1s"},
			want: &record.FileSource{},
		},
		{
			name: "url",
			cfg:  config.SourceServerConfig{URL: "http://localhost/api/data", Timeout: "1s"},
			want: &record.HTTPSource{},
		},
		{
			name:    "nothing configured",
			cfg:     config.SourceServerConfig{Timeout: "1s"},
			wantErr: "must be set",
		},
		{
			name:    "bad timeout",
			cfg:     config.SourceServerConfig{URL: "http://localhost/api/data", Timeout: "soon"},
			wantErr: "invalid source timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.cfg)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}
}

func TestNewSession(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "stocks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"S.No": 1, "Name": "Alpha", "P/E": 12},
		{"S.No": 2, "Name": "Beta", "P/E": 30}
	]`), 0644))

	cfg := config.GetServerDefault()
	cfg.Source.File = path
	cfg.Metadata.SQLite.Path = filepath.Join(dir, "screener.db")

	session, err := NewSession(ctx, &cfg, log.NewNopLoggerService(), nil)
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.Explorer.Open(ctx, "/query-result?Name=be"))
	page, err := session.Explorer.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, page.ResultCount)
	assert.Equal(t, 2, page.TotalCount)

	saved, err := session.Explorer.SaveCurrent(ctx, "Beta only", "", []string{"a1"})
	require.NoError(t, err)

	queries, err := session.Explorer.SavedQueries(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, saved.ID, queries[0].ID)
}
