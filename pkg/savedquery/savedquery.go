package savedquery

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mwantia/screener/pkg/query"
)

// StorageKey is the key-value entry holding the whole collection.
const StorageKey = "savedStockQueries"

// SavedQuery is a named, frozen snapshot of a view.
type SavedQuery struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Filters     query.FilterState `json:"filters"`
	Sort        *query.SortKey    `json:"sortConfig"`
	Timestamp   time.Time         `json:"timestamp"`
	ResultCount int               `json:"resultCount"`
	TotalCount  int               `json:"totalCount"`
}

func (q SavedQuery) Clone() SavedQuery {
	q.Tags = slices.Clone(q.Tags)
	q.Filters = q.Filters.Clone()
	q.Sort = q.Sort.Clone()
	return q
}

// Candidate is the save form: user input plus the snapshot it describes.
type Candidate struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Snapshot    query.Snapshot `json:"snapshot"`
}

var vocabulary = func() []string {
	tags := make([]string, 0, 30)
	for i := 1; i <= 30; i++ {
		tags = append(tags, fmt.Sprintf("a%d", i))
	}
	return tags
}()

// Vocabulary returns the tags a saved query may carry.
func Vocabulary() []string {
	return slices.Clone(vocabulary)
}

// NormalizeTags drops duplicates while keeping first-seen order and rejects
// tags outside the vocabulary.
func NormalizeTags(tags []string) ([]string, error) {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !slices.Contains(vocabulary, tag) {
			return nil, query.NewValidationError("tags", fmt.Sprintf("unknown tag '%s'", tag))
		}
		if !slices.Contains(normalized, tag) {
			normalized = append(normalized, tag)
		}
	}
	return normalized, nil
}

// AutoName suggests a name for the save form.
func AutoName(filters query.FilterState, now time.Time) string {
	if columns := filters.Active().Columns(); len(columns) > 0 {
		return "Query with " + strings.Join(columns, ", ")
	}
	return "Stock Query " + now.Format("2006-01-02")
}
