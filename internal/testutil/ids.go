package testutil

import (
	"fmt"
	"sync"
)

// SequentialImportIDs generates predictable import IDs for tests.
//
// Each call returns "<prefix>-<n>" with n starting at 1, so two runs of the
// same test produce identical store contents.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialImportIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialImportIDs creates a generator. An empty prefix defaults to "import".
func NewSequentialImportIDs(prefix string) *SequentialImportIDs {
	if prefix == "" {
		prefix = "import"
	}
	return &SequentialImportIDs{prefix: prefix}
}

// Generate returns the next import ID.
func (g *SequentialImportIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence at 1.
func (g *SequentialImportIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
