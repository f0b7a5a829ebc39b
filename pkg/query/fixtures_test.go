package query

import "github.com/mwantia/screener/pkg/record"

func stocks() []record.Record {
	return []record.Record{
		record.Of("S.No", 1, "Name", "Alpha", "P/E", 12),
		record.Of("S.No", 2, "Name", "Beta", "P/E", 30),
	}
}

func names(records []record.Record) []string {
	result := make([]string, 0, len(records))
	for _, r := range records {
		result = append(result, r.Get("Name").String())
	}
	return result
}
