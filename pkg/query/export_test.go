package query

import (
	"strings"
	"testing"
	"time"

	"github.com/mwantia/screener/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportScenario(t *testing.T) {
	content, err := ExportCSV(Sort(Filter(stocks(), nil), nil))
	require.NoError(t, err)

	lines := strings.Split(string(content), "\n")
	assert.Equal(t, []string{
		"S.No,Name,P/E",
		"1,Alpha,12",
		"2,Beta,30",
	}, lines)
}

func TestExportQuoting(t *testing.T) {
	records := []record.Record{
		record.Of("Name", "Smith, Inc.", "Note", `say "hi"`, "P/E", 12.5),
		record.Of("Name", "Plain", "Note", nil, "P/E", -3),
	}

	content, err := ExportCSV(records)
	require.NoError(t, err)
	assert.Equal(t, "Name,Note,P/E\n\"Smith, Inc.\",\"say \"\"hi\"\"\",12.5\nPlain,,-3", string(content))
}

func TestExportProjectsOntoFirstRecordColumns(t *testing.T) {
	records := []record.Record{
		record.Of("S.No", 1, "Name", "Alpha"),
		record.Of("Name", "Beta", "Extra", "dropped"),
		record.Of("S.No", 3, "Name", "Gamma", "P/E", 9),
	}

	content, err := ExportCSV(records)
	require.NoError(t, err)
	assert.Equal(t, "S.No,Name\n1,Alpha\n,Beta\n3,Gamma", string(content))
}

func TestExportEmpty(t *testing.T) {
	content, err := ExportCSV(nil)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Nil(t, content)

	_, err = NewExport([]record.Record{}, time.Now())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestNewExport(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC)

	file, err := NewExport(stocks(), now)
	require.NoError(t, err)
	assert.Equal(t, "stock-query-results-2026-10-18.csv", file.Name)
	assert.Equal(t, "text/csv;charset=utf-8", file.MIME)
	assert.Equal(t, 3, strings.Count(string(file.Content), "\n")+1)
}
