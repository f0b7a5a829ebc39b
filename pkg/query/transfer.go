package query

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// TransferParam names the single parameter carrying a snapshot from the
// results view to the save view.
const TransferParam = "data"

// Snapshot is the state handed from a results view to the save form.
type Snapshot struct {
	Filters     FilterState `json:"filters"`
	Sort        *SortKey    `json:"sortConfig"`
	Timestamp   time.Time   `json:"timestamp"`
	ResultCount int         `json:"resultCount"`
	TotalCount  int         `json:"totalCount"`
}

func (s Snapshot) Validate() error {
	if s.ResultCount < 0 || s.TotalCount < 0 {
		return NewValidationError("resultCount", "counts must not be negative")
	}
	if s.ResultCount > s.TotalCount {
		return NewValidationError("resultCount", fmt.Sprintf("result count %d exceeds total count %d", s.ResultCount, s.TotalCount))
	}
	if s.Sort != nil {
		if _, err := ParseDirection(string(s.Sort.Direction)); err != nil {
			return NewValidationError("sortConfig", err.Error())
		}
	}
	return nil
}

// EncodeTransfer renders the snapshot as "data=<percent-encoded JSON>".
func EncodeTransfer(s Snapshot) (string, error) {
	if s.Filters == nil {
		s.Filters = FilterState{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return url.Values{TransferParam: {string(data)}}.Encode(), nil
}

// DecodeTransfer reads the snapshot from a query string or a full location. A missing
// parameter returns (nil, nil): the save form then starts empty.
func DecodeTransfer(raw string) (*Snapshot, error) {
	if _, query, ok := strings.Cut(raw, "?"); ok {
		raw = query
	}
	values, err := url.ParseQuery(raw)
	if err != nil && len(values) == 0 {
		return nil, fmt.Errorf("failed to parse transfer parameters: %w", err)
	}

	data := values.Get(TransferParam)
	if data == "" {
		return nil, nil
	}

	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to parse query data: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query data: %w", err)
	}
	if s.Filters == nil {
		s.Filters = FilterState{}
	}
	return &s, nil
}
