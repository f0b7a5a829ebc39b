package record

import (
	"bytes"
	"slices"

	json "github.com/goccy/go-json"
)

// SerialColumn is the ordinal identifier column of the screener dataset.
const SerialColumn = "S.No"

// Record maps column names to cells and remembers the column order in
// which they were loaded. Records are never modified after construction.
type Record struct {
	columns []string
	cells   map[string]Cell
}

// New builds a record from an ordered column list. Columns missing from
// cells are stored as Missing; duplicate columns keep their first position.
func New(columns []string, cells map[string]Cell) Record {
	r := Record{
		columns: make([]string, 0, len(columns)),
		cells:   make(map[string]Cell, len(columns)),
	}
	for _, column := range columns {
		if _, ok := r.cells[column]; ok {
			continue
		}
		r.columns = append(r.columns, column)
		r.cells[column] = cells[column]
	}
	return r
}

// Of builds a record from alternating column/value pairs, mostly for tests
// and fixtures: Of("S.No", 1, "Name", "Alpha").
func Of(pairs ...any) Record {
	columns := make([]string, 0, len(pairs)/2)
	cells := make(map[string]Cell, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		column, ok := pairs[i].(string)
		if !ok {
			continue
		}
		columns = append(columns, column)
		cells[column] = CellOf(pairs[i+1])
	}
	return New(columns, cells)
}

// Columns returns the column names in load order.
func (r Record) Columns() []string {
	return slices.Clone(r.columns)
}

func (r Record) Len() int {
	return len(r.columns)
}

// Has reports whether the column is present, even when its value is Missing.
func (r Record) Has(column string) bool {
	_, ok := r.cells[column]
	return ok
}

// Get returns the cell at column; unknown columns yield Missing.
func (r Record) Get(column string) Cell {
	return r.cells[column]
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		value, err := r.cells[column].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	decoded, err := decodeRecord(newDecoder(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}
