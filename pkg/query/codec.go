package query

import (
	"net/url"
	"strings"
)

// Encode renders the non-empty predicates as query-string parameters,
// one per column. Keys are sorted so equal states encode identically.
func Encode(filters FilterState) string {
	values := url.Values{}
	for column, value := range filters {
		if value != "" {
			values.Set(column, value)
		}
	}
	return values.Encode()
}

// Decode turns every parameter of a query string back into a predicate.
// A leading "?" is ignored. When a column repeats, the last value wins.
// Malformed pairs are skipped rather than failing the whole string.
func Decode(raw string) FilterState {
	raw = strings.TrimPrefix(raw, "?")
	filters := FilterState{}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		column, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		predicate, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		filters[column] = predicate
	}
	return filters
}

// Location joins a path with the encoded filters. An empty state yields
// the bare path.
func Location(path string, filters FilterState) string {
	encoded := Encode(filters)
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

// SplitLocation separates the path from the query string of a location.
func SplitLocation(location string) (string, string) {
	path, raw, _ := strings.Cut(location, "?")
	return path, raw
}
