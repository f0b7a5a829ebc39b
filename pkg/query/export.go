package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwantia/screener/pkg/record"
)

const (
	ExportMIME   = "text/csv;charset=utf-8"
	exportPrefix = "stock-query-results-"
)

// ExportFile is a finished download: a name, a media type and the bytes.
type ExportFile struct {
	Name    string
	MIME    string
	Content []byte
}

// ExportFilename returns the date-stamped download name for now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("%s%s.csv", exportPrefix, now.UTC().Format(time.DateOnly))
}

// ExportCSV renders records as comma-separated values. The header is the
// column sequence of the first record and every row is projected onto it:
// absent columns become empty cells, extra columns are dropped. Only text
// containing a comma or a double quote is quoted. Rows are separated by a
// single newline without a trailing one.
func ExportCSV(records []record.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	columns := records[0].Columns()
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(columns, ","))

	fields := make([]string, len(columns))
	for _, r := range records {
		for i, column := range columns {
			fields[i] = csvField(r.Get(column))
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return []byte(strings.Join(lines, "\n")), nil
}

// NewExport renders records into a dated ExportFile.
func NewExport(records []record.Record, now time.Time) (ExportFile, error) {
	content, err := ExportCSV(records)
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{
		Name:    ExportFilename(now),
		MIME:    ExportMIME,
		Content: content,
	}, nil
}

func csvField(cell record.Cell) string {
	text, ok := cell.Text()
	if !ok {
		return cell.String()
	}
	if strings.ContainsAny(text, `,"`) {
		return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
	}
	return text
}
