// Package memory is an in-process SplitExporter, used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"conto/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items []ledger.Split
}

func New() *Store {
	return &Store{}
}

// Export records the split and returns a synthetic row reference.
func (s *Store) Export(_ context.Context, split *ledger.Split) (string, error) {
	if split.Status != ledger.StatusReleased {
		return "", fmt.Errorf("split %s is %s, only released splits are exported", split.ID, split.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *split)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Exported returns a copy of everything exported so far.
func (s *Store) Exported() []ledger.Split {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.Split(nil), s.items...)
}
