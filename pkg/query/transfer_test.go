package query

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferRoundTrip(t *testing.T) {
	snapshot := Snapshot{
		Filters:     FilterState{"Name": "alpha", "Sector": "met&als"},
		Sort:        &SortKey{Column: "P/E", Direction: Descending},
		Timestamp:   time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		ResultCount: 1,
		TotalCount:  2,
	}

	encoded, err := EncodeTransfer(snapshot)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "data=%7B"))

	decoded, err := DecodeTransfer("/save-query?" + encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, snapshot.Filters, decoded.Filters)
	assert.Equal(t, snapshot.Sort, decoded.Sort)
	assert.True(t, snapshot.Timestamp.Equal(decoded.Timestamp))
	assert.Equal(t, 1, decoded.ResultCount)
	assert.Equal(t, 2, decoded.TotalCount)
}

func TestTransferWireFormat(t *testing.T) {
	raw := `data=` + strings.NewReplacer(`{`, `%7B`, `}`, `%7D`, `"`, `%22`, `:`, `%3A`, `,`, `%2C`).Replace(
		`{"filters":{"Name":"al"},"sortConfig":null,"timestamp":"2026-10-18T09:30:00.000Z","resultCount":1,"totalCount":2}`)

	decoded, err := DecodeTransfer(raw)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.Equal(t, FilterState{"Name": "al"}, decoded.Filters)
	assert.Nil(t, decoded.Sort)
}

func TestDecodeTransferAbsent(t *testing.T) {
	decoded, err := DecodeTransfer("/save-query")
	assert.NoError(t, err)
	assert.Nil(t, decoded)

	decoded, err = DecodeTransfer("other=1")
	assert.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeTransferInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":       "data=%7Bbroken",
		"counts swapped": "data=" + escape(`{"filters":{},"resultCount":5,"totalCount":2}`),
		"negative":       "data=" + escape(`{"filters":{},"resultCount":-1,"totalCount":2}`),
		"bad direction":  "data=" + escape(`{"filters":{},"sortConfig":{"key":"P/E","direction":"up"},"resultCount":0,"totalCount":0}`),
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			decoded, err := DecodeTransfer(raw)
			assert.Error(t, err)
			assert.Nil(t, decoded)
		})
	}
}

func TestDecodeTransferMissingFilters(t *testing.T) {
	decoded, err := DecodeTransfer("data=" + escape(`{"resultCount":0,"totalCount":0}`))
	require.NoError(t, err)
	assert.NotNil(t, decoded.Filters)
}

func escape(s string) string {
	return url.QueryEscape(s)
}
