package kripke

import (
	"fmt"
	"sync"

	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
)

// WorldStore is the process-wide content-addressed interning set of
// KripkeWorld values (§3, §5): insertion is atomic under a coarse
// mutex (acceptable since insertions become rare after warm-up, per
// §5's shared-resource policy); reads of already-interned worlds never
// take the lock's write path.
type WorldStore struct {
	mu     sync.Mutex
	worlds map[WorldID]*KripkeWorld
}

// NewWorldStore returns an empty store.
func NewWorldStore() *WorldStore {
	return &WorldStore{worlds: make(map[WorldID]*KripkeWorld)}
}

// Intern returns the canonical *KripkeWorld for fs, inserting it if this
// is the first time fs has been seen. Constructing an inconsistent
// world is a fatal error (§3).
func (s *WorldStore) Intern(fs bits.FluentsSet) (*KripkeWorld, error) {
	if !fs.Consistent() {
		return nil, &domain.CoreError{
			Code:    domain.ExitFormulaShapeUnset,
			Message: fmt.Sprintf("kripke: inconsistent world %v (fluent and its negation both present)", fs),
		}
	}
	w := newWorld(fs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.worlds[w.ID]; ok {
		return existing, nil
	}
	stored := w
	s.worlds[w.ID] = &stored
	return &stored, nil
}

// Len reports how many distinct worlds have been interned.
func (s *WorldStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.worlds)
}
