package record

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Source fetches the complete record set in one read. No filtering or
// paging parameters are ever sent upstream.
type Source interface {
	Fetch(ctx context.Context) ([]Record, error)
	String() string
}

// HTTPSource reads the record array from a single JSON endpoint.
type HTTPSource struct {
	URL          string
	RecordsField string
	Client       *http.Client
}

func NewHTTPSource(url, field string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{URL: url, RecordsField: field, Client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("failed to fetch records: unexpected status %s", resp.Status)
	}

	records, err := DecodeRecords(resp.Body, s.RecordsField)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// FileSource reads the record array from a local JSON file.
type FileSource struct {
	Path         string
	RecordsField string
}

func NewFileSource(path, field string) *FileSource {
	return &FileSource{Path: path, RecordsField: field}
}

func (s *FileSource) Fetch(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	records, err := DecodeRecords(f, s.RecordsField)
	if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return records, nil
}

func (s *FileSource) String() string {
	return "file://" + s.Path
}

// StaticSource serves an in-memory record set.
type StaticSource []Record

func (s StaticSource) Fetch(ctx context.Context) ([]Record, error) {
	return []Record(s), ctx.Err()
}

func (s StaticSource) String() string {
	return "static"
}
