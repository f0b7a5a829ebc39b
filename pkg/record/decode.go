package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// encoding/json is used here instead of go-json because the column order
// of every object has to survive decoding, which needs the token stream.

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// DecodeRecords reads a JSON array of flat objects. When field is set the
// document must be an object and the array is read from that member; all
// other members are skipped.
func DecodeRecords(r io.Reader, field string) ([]Record, error) {
	dec := newDecoder(r)

	if field != "" {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			if key != field {
				var skip json.RawMessage
				if err := dec.Decode(&skip); err != nil {
					return nil, fmt.Errorf("failed to skip member '%s': %w", key, err)
				}
				continue
			}
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("records field '%s' not found", field)
	}

	return decodeArray(dec)
}

func decodeArray(dec *json.Decoder) ([]Record, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	records := make([]Record, 0)
	for dec.More() {
		r, err := decodeRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", len(records), err)
		}
		records = append(records, r)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeRecord(dec *json.Decoder) (Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return Record{}, err
	}

	var columns []string
	cells := make(map[string]Cell)
	for dec.More() {
		column, err := readKey(dec)
		if err != nil {
			return Record{}, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Record{}, fmt.Errorf("failed to decode column '%s': %w", column, err)
		}
		cell, err := decodeCell(raw)
		if err != nil {
			return Record{}, fmt.Errorf("failed to decode column '%s': %w", column, err)
		}
		columns = append(columns, column)
		cells[column] = cell
	}
	if err := expectDelim(dec, '}'); err != nil {
		return Record{}, err
	}
	return New(columns, cells), nil
}

func decodeCell(raw json.RawMessage) (Cell, error) {
	dec := newDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Cell{}, err
	}
	switch v := tok.(type) {
	case nil:
		return MissingCell(), nil
	case string:
		return TextCell(v), nil
	case bool:
		return CellOf(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Cell{}, err
		}
		return NumberCell(f), nil
	case json.Delim:
		return rawTextCell(string(raw)), nil
	}
	return MissingCell(), nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("expected '%s', got %v", want, tok)
	}
	return nil
}
