package record

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind tags the variant held by a Cell.
type Kind uint8

const (
	Missing Kind = iota
	Text
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	}
	return "missing"
}

// Cell is a single record value: Text, Number or Missing.
// The zero value is Missing.
type Cell struct {
	kind Kind
	text string
	num  float64
	// raw marks Text holding the JSON form of a boolean, array or object.
	raw bool
}

func TextCell(s string) Cell {
	return Cell{kind: Text, text: s}
}

// rawTextCell keeps a non-string JSON value as Text of its JSON form.
func rawTextCell(s string) Cell {
	return Cell{kind: Text, text: s, raw: true}
}

func NumberCell(f float64) Cell {
	return Cell{kind: Number, num: f}
}

func MissingCell() Cell {
	return Cell{}
}

// CellOf converts a plain Go value into a Cell. Strings become Text, all
// integer and float types become Number, booleans become their JSON text
// and anything else is Missing.
func CellOf(v any) Cell {
	switch v := v.(type) {
	case Cell:
		return v
	case string:
		return TextCell(v)
	case float64:
		return NumberCell(v)
	case float32:
		return NumberCell(float64(v))
	case int:
		return NumberCell(float64(v))
	case int32:
		return NumberCell(float64(v))
	case int64:
		return NumberCell(float64(v))
	case uint:
		return NumberCell(float64(v))
	case uint64:
		return NumberCell(float64(v))
	case bool:
		return rawTextCell(strconv.FormatBool(v))
	}
	return MissingCell()
}

func (c Cell) Kind() Kind {
	return c.kind
}

func (c Cell) IsMissing() bool {
	return c.kind == Missing
}

func (c Cell) Text() (string, bool) {
	return c.text, c.kind == Text
}

// IsString reports whether the cell came from a JSON string. Text built
// from booleans, arrays or objects is not.
func (c Cell) IsString() bool {
	return c.kind == Text && !c.raw
}

func (c Cell) Number() (float64, bool) {
	return c.num, c.kind == Number
}

// String returns the plain text form: text as-is, numbers in their
// shortest decimal representation and Missing as the empty string.
func (c Cell) String() string {
	switch c.kind {
	case Text:
		return c.text
	case Number:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return ""
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case Text:
		if c.raw {
			return []byte(c.text), nil
		}
		return json.Marshal(c.text)
	case Number:
		return json.Marshal(c.num)
	}
	return []byte("null"), nil
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case map[string]any, []any:
		*c = rawTextCell(string(data))
	default:
		*c = CellOf(v)
	}
	return nil
}
