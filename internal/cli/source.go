package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/incompat/internal/ir"
	"github.com/roach88/incompat/internal/store"
)

// storeQuery reads a (possibly prefiltered) record set from the store.
type storeQuery func(ctx context.Context, st *store.Store) ([]ir.IncompatRecord, error)

// readAll is the unfiltered storeQuery.
func readAll(ctx context.Context, st *store.Store) ([]ir.IncompatRecord, error) {
	return st.ReadRecords(ctx)
}

// loadRecords reads the records a query command operates on: from the
// SQLite store when fromDB is set, otherwise from the definitions path,
// which may be a CUE directory, a .cue file, or compile -o JSON output.
//
// Returned errors are *LoadError values; report them with outputLoadError.
func loadRecords(ctx context.Context, opts *RootOptions, fromDB bool, query storeQuery) ([]ir.IncompatRecord, error) {
	if fromDB {
		return loadFromStore(ctx, opts, query)
	}

	specs := specsArg(opts, nil)
	if filepath.Ext(specs) == ".json" {
		result, err := readRecordsFile(specs)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
		}
		records := make([]ir.IncompatRecord, len(result.Records))
		for i, c := range result.Records {
			records[i] = c.Record
		}
		return records, nil
	}

	loadResult, loadErrors := LoadSpecs(specs, LoadModeFailFast)
	opts.Logger().LogLoad(specs, recordCount(loadResult), len(loadErrors))
	if len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}
	return loadResult.IncompatRecords(), nil
}

// loadFromStore opens an existing database and runs query against it.
func loadFromStore(ctx context.Context, opts *RootOptions, query storeQuery) ([]ir.IncompatRecord, error) {
	if _, err := os.Stat(opts.DB); err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", opts.DB)}
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
	}
	defer st.Close()

	start := time.Now()
	records, err := query(ctx, st)
	opts.Logger().LogStoreOperation("read_records", time.Since(start), len(records), err)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: err.Error()}
	}
	return records, nil
}

func recordCount(r *LoadResult) int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}
