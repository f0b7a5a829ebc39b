package query

import (
	"maps"
	"slices"
	"strings"

	"github.com/mwantia/screener/pkg/record"
)

// FilterState maps a column to a case-insensitive substring predicate.
// A key with an empty predicate is the same as no key at all.
type FilterState map[string]string

// Active returns a copy holding only the non-empty predicates.
func (f FilterState) Active() FilterState {
	active := make(FilterState, len(f))
	for column, value := range f {
		if value != "" {
			active[column] = value
		}
	}
	return active
}

// Columns returns the columns with a non-empty predicate, sorted.
func (f FilterState) Columns() []string {
	columns := make([]string, 0, len(f))
	for column, value := range f {
		if value != "" {
			columns = append(columns, column)
		}
	}
	slices.Sort(columns)
	return columns
}

func (f FilterState) Clone() FilterState {
	if f == nil {
		return FilterState{}
	}
	return maps.Clone(f)
}

// Equal compares two states ignoring empty predicates.
func (f FilterState) Equal(other FilterState) bool {
	return maps.Equal(f.Active(), other.Active())
}

type predicate struct {
	column string
	needle string
}

func compile(filters FilterState) []predicate {
	predicates := make([]predicate, 0, len(filters))
	for column, value := range filters {
		if value == "" {
			continue
		}
		predicates = append(predicates, predicate{column: column, needle: strings.ToLower(value)})
	}
	return predicates
}

func (p predicate) match(r record.Record) bool {
	cell := r.Get(p.column)
	if cell.IsMissing() {
		return false
	}
	return strings.Contains(strings.ToLower(cell.String()), p.needle)
}

// Matches reports whether r satisfies every non-empty predicate.
func Matches(r record.Record, filters FilterState) bool {
	for _, p := range compile(filters) {
		if !p.match(r) {
			return false
		}
	}
	return true
}

// Filter returns the records satisfying every non-empty predicate, in
// their original order. The input is never modified.
func Filter(records []record.Record, filters FilterState) []record.Record {
	predicates := compile(filters)
	result := make([]record.Record, 0, len(records))

next:
	for _, r := range records {
		for _, p := range predicates {
			if !p.match(r) {
				continue next
			}
		}
		result = append(result, r)
	}
	return result
}
