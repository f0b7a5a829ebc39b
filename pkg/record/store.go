package record

import (
	"context"
	"slices"
	"sync"

	"github.com/mwantia/screener/pkg/log"
)

type State int

const (
	Loading State = iota
	Ready
)

// Store owns the full record set of one session. Consumers must not
// evaluate filters while the store is Loading.
type Store struct {
	mutex      sync.RWMutex
	records    []Record
	state      State
	generation uint64
	lastErr    error

	log log.LoggerService
}

func NewStore(logger log.LoggerService) *Store {
	return &Store{
		state: Loading,
		log:   logger,
	}
}

// Load fetches the record set from src and replaces the current one.
// A failed fetch is logged and leaves an empty, ready store; the error is
// returned so callers can show a notice. When another Load starts before
// this one finishes, this result is dropped.
func (s *Store) Load(ctx context.Context, src Source) error {
	s.mutex.Lock()
	s.generation++
	generation := s.generation
	s.state = Loading
	s.mutex.Unlock()

	records, err := src.Fetch(ctx)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if generation != s.generation {
		s.log.Debug("Dropping superseded load from %s", src)
		return nil
	}

	if err != nil {
		s.log.Error("Error fetching data from %s: %v", src, err)
		records = nil
	} else {
		s.log.Info("Loaded %d records from %s", len(records), src)
	}

	s.records = records
	s.state = Ready
	s.lastErr = err
	return err
}

func (s *Store) State() State {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state
}

// Records returns the loaded set and whether the store is ready.
func (s *Store) Records() ([]Record, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.state != Ready {
		return nil, false
	}
	return s.records, true
}

// Err returns the error of the last completed load.
func (s *Store) Err() error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastErr
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.records)
}

// Columns returns the key sequence of the first record.
func (s *Store) Columns() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if len(s.records) == 0 {
		return nil
	}
	return s.records[0].Columns()
}

// TextColumns returns the columns of the first record that hold a JSON
// string, excluding the serial number column. These are the columns offered for
// per-column refinement.
func (s *Store) TextColumns() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if len(s.records) == 0 {
		return nil
	}
	first := s.records[0]
	return slices.DeleteFunc(first.Columns(), func(column string) bool {
		return column == SerialColumn || !first.Get(column).IsString()
	})
}
