package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/testutil"
)

// createTestStore creates a new store in a temp dir with sequential import ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithImportIDs(testutil.NewSequentialImportIDs("import")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// recordIDs maps records to their content ids for order comparisons.
func recordIDs(t *testing.T, records []ir.IncompatRecord) []string {
	t.Helper()
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = ir.MustRecordID(rec)
	}
	return ids
}
