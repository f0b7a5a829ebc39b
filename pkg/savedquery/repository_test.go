package savedquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mwantia/screener/pkg/db/store"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestRepository(t *testing.T) (*Repository, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	repo := NewRepository(kv, log.NewNopLoggerService())
	repo.now = func() time.Time { return fixedNow }
	return repo, kv
}

func candidate(name string) Candidate {
	return Candidate{
		Name:        name,
		Description: "  large caps  ",
		Tags:        []string{"a3", "a1", "a3"},
		Snapshot: query.Snapshot{
			Filters:     query.FilterState{"Name": "al", "Sector": ""},
			Sort:        &query.SortKey{Column: "P/E", Direction: query.Descending},
			ResultCount: 1,
			TotalCount:  2,
		},
	}
}

func TestSaveThenList(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	first, err := repo.Save(ctx, candidate(" Value picks "))
	require.NoError(t, err)
	second, err := repo.Save(ctx, candidate("Momentum"))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Value picks", first.Name)
	assert.Equal(t, "large caps", first.Description)
	assert.Equal(t, []string{"a3", "a1"}, first.Tags)
	assert.True(t, first.Timestamp.Equal(fixedNow))

	queries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, first.ID, queries[0].ID)
	assert.Equal(t, second.ID, queries[1].ID)
	assert.Equal(t, query.FilterState{"Name": "al", "Sector": ""}, queries[1].Filters)
	assert.Equal(t, &query.SortKey{Column: "P/E", Direction: query.Descending}, queries[1].Sort)
	assert.Equal(t, 1, queries[1].ResultCount)
	assert.Equal(t, 2, queries[1].TotalCount)
}

func TestSaveFreezesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	c := candidate("Frozen")
	saved, err := repo.Save(ctx, c)
	require.NoError(t, err)

	c.Snapshot.Filters["Name"] = "changed"
	c.Snapshot.Sort.Direction = query.Ascending
	saved.Filters["Name"] = "changed too"

	stored, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "al", stored.Filters["Name"])
	assert.Equal(t, query.Descending, stored.Sort.Direction)
}

func TestSaveKeepsSnapshotTimestamp(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	taken := time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)
	c := candidate("Dated")
	c.Snapshot.Timestamp = taken

	saved, err := repo.Save(ctx, c)
	require.NoError(t, err)
	assert.True(t, saved.Timestamp.Equal(taken))
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Candidate)
		field  string
	}{
		{"empty name", func(c *Candidate) { c.Name = "" }, "name"},
		{"blank name", func(c *Candidate) { c.Name = "   \t" }, "name"},
		{"unknown tag", func(c *Candidate) { c.Tags = []string{"a1", "b7"} }, "tags"},
		{"result exceeds total", func(c *Candidate) { c.Snapshot.ResultCount = 5 }, "resultCount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo, _ := newTestRepository(t)
			_, err := repo.Save(ctx, candidate("Existing"))
			require.NoError(t, err)

			c := candidate("New")
			tt.modify(&c)
			_, err = repo.Save(ctx, c)

			var verr *query.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)
		})
	}
}

func TestSaveRetriesIDCollision(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	ids := []string{"fixed", "fixed", "fixed", "other"}
	repo.newID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	first, err := repo.Save(ctx, candidate("One"))
	require.NoError(t, err)
	second, err := repo.Save(ctx, candidate("Two"))
	require.NoError(t, err)

	assert.Equal(t, "fixed", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	a, err := repo.Save(ctx, candidate("A"))
	require.NoError(t, err)
	b, err := repo.Save(ctx, candidate("B"))
	require.NoError(t, err)
	c, err := repo.Save(ctx, candidate("C"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, b.ID))
	require.NoError(t, repo.Delete(ctx, "does-not-exist"))

	queries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, a.ID, queries[0].ID)
	assert.Equal(t, c.ID, queries[1].ID)
	assert.Equal(t, a.Name, queries[0].Name)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	saved, err := repo.Save(ctx, candidate("Loadable"))
	require.NoError(t, err)

	location, err := repo.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Name=al", location)

	_, err = repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	for _, name := range []string{"1", "2", "3", "4", "5", "6"} {
		_, err := repo.Save(ctx, candidate(name))
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "1", recent[0].Name)
	assert.Equal(t, "5", recent[4].Name)

	all, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestCorruptCollectionIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepository(t)

	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`{not json`)))

	queries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, queries)

	saved, err := repo.Save(ctx, candidate("Fresh"))
	require.NoError(t, err)

	queries, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, queries, 1)
	assert.Equal(t, saved.ID, queries[0].ID)
}

func TestPersistedFormat(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepository(t)

	_, err := repo.Save(ctx, candidate("Format"))
	require.NoError(t, err)

	data, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(data), `"sortConfig":{"key":"P/E","direction":"desc"}`)
	assert.Contains(t, string(data), `"resultCount":1`)
	assert.Contains(t, string(data), `"name":"Format"`)
}
