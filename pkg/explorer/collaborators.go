package explorer

import (
	"context"
	"sync"

	"github.com/mwantia/screener/pkg/query"
)

// AddressBarSync mirrors the view location to whatever displays it.
// Replace rewrites the current entry, Push navigates to a new one. Both are
// called while the explorer holds its lock and must not call back into it.
type AddressBarSync interface {
	Replace(location string)
	Push(location string)
}

// FileDownloader hands a generated file to the user.
type FileDownloader interface {
	Download(ctx context.Context, file query.ExportFile) error
}

// ConfirmationPrompt asks the user a yes/no question.
type ConfirmationPrompt interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Location records the last location it was given. It is the address bar of
// sessions without a browser, so it keeps no history beyond a push count.
type Location struct {
	mutex   sync.Mutex
	current string
	pushes  int
}

func (l *Location) Replace(location string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.current = location
}

func (l *Location) Push(location string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.current = location
	l.pushes++
}

func (l *Location) Current() string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.current
}

// Pushes counts the navigations since the location was created.
func (l *Location) Pushes() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.pushes
}

// Confirmed answers every prompt with the same value.
type Confirmed bool

func (c Confirmed) Confirm(ctx context.Context, message string) (bool, error) {
	return bool(c), nil
}
