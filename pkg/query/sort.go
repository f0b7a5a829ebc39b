package query

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mwantia/screener/pkg/record"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Ascending, "":
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction '%s'", s)
}

// SortKey is the single active sort. A nil *SortKey keeps filter order.
type SortKey struct {
	Column    string    `json:"key"`
	Direction Direction `json:"direction"`
}

func (k *SortKey) Clone() *SortKey {
	if k == nil {
		return nil
	}
	clone := *k
	return &clone
}

func (k *SortKey) String() string {
	if k == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s)", k.Column, k.Direction)
}

// Toggle applies a header click: a new column sorts ascending, the same
// column flips between ascending and descending.
func Toggle(current *SortKey, column string) *SortKey {
	if current != nil && current.Column == column && current.Direction == Ascending {
		return &SortKey{Column: column, Direction: Descending}
	}
	return &SortKey{Column: column, Direction: Ascending}
}

// Comparator orders cells ascending: two numbers by value, anything else
// by the locale collation of their text forms. Missing is the empty text.
// It is not safe for concurrent use.
type Comparator struct {
	collator *collate.Collator
}

func NewComparator() *Comparator {
	return &Comparator{collator: collate.New(language.English)}
}

func (c *Comparator) Compare(a, b record.Cell) int {
	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			return cmp.Compare(x, y)
		}
	}
	return c.collator.CompareString(a.String(), b.String())
}

// Sort returns a new slice ordered by key. Equal keys keep their relative
// order in both directions. A nil key returns a copy in input order.
func Sort(records []record.Record, key *SortKey) []record.Record {
	sorted := slices.Clone(records)
	if key == nil || len(sorted) < 2 {
		return sorted
	}

	comparator := NewComparator()
	sign := 1
	if key.Direction == Descending {
		sign = -1
	}

	slices.SortStableFunc(sorted, func(a, b record.Record) int {
		return sign * comparator.Compare(a.Get(key.Column), b.Get(key.Column))
	})
	return sorted
}
