package query

import (
	"time"

	"github.com/mwantia/screener/pkg/record"
)

// View is one immutable filter and sort state. Every transition returns
// a new View; the receiver is never changed.
type View struct {
	filters FilterState
	sort    *SortKey
}

func NewView(filters FilterState, sort *SortKey) View {
	return View{filters: filters.Clone(), sort: sort.Clone()}
}

func (v View) Filters() FilterState {
	return v.filters.Clone()
}

func (v View) Sort() *SortKey {
	return v.sort.Clone()
}

func (v View) WithFilter(column, value string) View {
	filters := v.filters.Clone()
	filters[column] = value
	return View{filters: filters, sort: v.sort.Clone()}
}

func (v View) WithFilters(filters FilterState) View {
	return View{filters: filters.Clone(), sort: v.sort.Clone()}
}

func (v View) ClearFilters() View {
	return View{filters: FilterState{}, sort: v.sort.Clone()}
}

func (v View) WithSort(sort *SortKey) View {
	return View{filters: v.filters.Clone(), sort: sort.Clone()}
}

func (v View) ToggleSort(column string) View {
	return v.WithSort(Toggle(v.sort, column))
}

// Location is the address-bar form of the view. Sort is not part of it.
func (v View) Location(path string) string {
	return Location(path, v.filters)
}

// Result is the filtered and sorted view of a record set.
type Result struct {
	Rows        []record.Record
	ResultCount int
	TotalCount  int
}

// Apply runs the filter engine and then the sort engine over records.
func (v View) Apply(records []record.Record) Result {
	rows := Sort(Filter(records, v.filters), v.sort)
	return Result{
		Rows:        rows,
		ResultCount: len(rows),
		TotalCount:  len(records),
	}
}

// Snapshot freezes the view together with the counts of its result.
func (v View) Snapshot(result Result, now time.Time) Snapshot {
	return Snapshot{
		Filters:     v.filters.Clone(),
		Sort:        v.sort.Clone(),
		Timestamp:   now,
		ResultCount: result.ResultCount,
		TotalCount:  result.TotalCount,
	}
}
