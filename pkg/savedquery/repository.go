package savedquery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mwantia/screener/pkg/log"
	"github.com/mwantia/screener/pkg/query"
)

var ErrNotFound = errors.New("saved query not found")

// KeyValueStore is the persistence medium of the repository.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repository stores saved queries as one JSON array under StorageKey.
//
// Every mutation reads, modifies and rewrites the whole collection. There is
// no lock across processes sharing the same store: two writers can race and
// the last write wins, dropping the other's change.
type Repository struct {
	kv  KeyValueStore
	log log.LoggerService

	now   func() time.Time
	newID func() (string, error)
}

func NewRepository(kv KeyValueStore, logger log.LoggerService) *Repository {
	return &Repository{
		kv:    kv,
		log:   logger,
		now:   time.Now,
		newID: newUUID,
	}
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns all saved queries in insertion order.
func (r *Repository) List(ctx context.Context) ([]SavedQuery, error) {
	return r.read(ctx)
}

// Get returns a copy of the saved query with the given id.
func (r *Repository) Get(ctx context.Context, id string) (SavedQuery, error) {
	queries, err := r.read(ctx)
	if err != nil {
		return SavedQuery{}, err
	}
	idx := slices.IndexFunc(queries, func(q SavedQuery) bool { return q.ID == id })
	if idx < 0 {
		return SavedQuery{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return queries[idx].Clone(), nil
}

// Recent returns at most n saved queries from the start of the collection.
func (r *Repository) Recent(ctx context.Context, n int) ([]SavedQuery, error) {
	queries, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && n < len(queries) {
		queries = queries[:n]
	}
	return queries, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	queries, err := r.read(ctx)
	return len(queries), err
}

// Save validates the candidate, assigns a fresh id and appends it.
func (r *Repository) Save(ctx context.Context, candidate Candidate) (SavedQuery, error) {
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return SavedQuery{}, query.NewValidationError("name", "please enter a name for your query")
	}
	tags, err := NormalizeTags(candidate.Tags)
	if err != nil {
		return SavedQuery{}, err
	}
	if err := candidate.Snapshot.Validate(); err != nil {
		return SavedQuery{}, err
	}

	queries, err := r.read(ctx)
	if err != nil {
		return SavedQuery{}, err
	}

	id, err := r.uniqueID(queries)
	if err != nil {
		return SavedQuery{}, err
	}

	timestamp := candidate.Snapshot.Timestamp
	if timestamp.IsZero() {
		timestamp = r.now()
	}

	saved := SavedQuery{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(candidate.Description),
		Tags:        tags,
		Filters:     candidate.Snapshot.Filters.Clone(),
		Sort:        candidate.Snapshot.Sort.Clone(),
		Timestamp:   timestamp.UTC(),
		ResultCount: candidate.Snapshot.ResultCount,
		TotalCount:  candidate.Snapshot.TotalCount,
	}

	if err := r.write(ctx, append(queries, saved)); err != nil {
		return SavedQuery{}, err
	}

	r.log.Info("Saved query '%s' as %s", saved.Name, saved.ID)
	return saved.Clone(), nil
}

// Delete removes the query with the given id. Absent ids are a no-op.
// Confirmation is the caller's job.
func (r *Repository) Delete(ctx context.Context, id string) error {
	queries, err := r.read(ctx)
	if err != nil {
		return err
	}

	if !r.contains(queries, id) {
		return nil
	}

	remaining := slices.DeleteFunc(queries, func(q SavedQuery) bool { return q.ID == id })
	if err := r.write(ctx, remaining); err != nil {
		return err
	}

	r.log.Info("Deleted saved query %s", id)
	return nil
}

// Load returns the address-bar form of the saved query's filters.
func (r *Repository) Load(ctx context.Context, id string) (string, error) {
	saved, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return query.Encode(saved.Filters), nil
}

func (r *Repository) contains(queries []SavedQuery, id string) bool {
	return slices.ContainsFunc(queries, func(q SavedQuery) bool { return q.ID == id })
}

func (r *Repository) uniqueID(queries []SavedQuery) (string, error) {
	for range 8 {
		id, err := r.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate id: %w", err)
		}
		if !r.contains(queries, id) {
			return id, nil
		}
	}
	return "", errors.New("failed to generate unique id")
}

// read loads the collection. A missing or unparsable entry is an empty
// collection; only store failures are returned as errors.
func (r *Repository) read(ctx context.Context) ([]SavedQuery, error) {
	data, ok, err := r.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read saved queries: %w", err)
	}
	if !ok || len(data) == 0 {
		return []SavedQuery{}, nil
	}

	var queries []SavedQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		r.log.Warn("Error loading saved queries: %v", err)
		return []SavedQuery{}, nil
	}
	if queries == nil {
		queries = []SavedQuery{}
	}
	return queries, nil
}

func (r *Repository) write(ctx context.Context, queries []SavedQuery) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to marshal saved queries: %w", err)
	}
	if err := r.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to write saved queries: %w", err)
	}
	return nil
}
