package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/incompat/internal/ir"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// StoredRecord pairs a record with its storage metadata.
type StoredRecord struct {
	ID       string
	Seq      int64
	ImportID string
	Record   ir.IncompatRecord
}

// Import describes one stored import.
type Import struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	Seq         int64  `json:"seq"`
	RecordCount int    `json:"record_count"`
}

// ReadRecords returns every record in first-import order.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ReadRecords(ctx context.Context) ([]ir.IncompatRecord, error) {
	stored, err := s.readStored(ctx, "1 = 1")
	if err != nil {
		return nil, err
	}
	return recordsOf(stored), nil
}

// ReadStoredRecords is ReadRecords with ids, seqs, and import ids attached.
func (s *Store) ReadStoredRecords(ctx context.Context) ([]StoredRecord, error) {
	return s.readStored(ctx, "1 = 1")
}

// ReadRecordsByTarget returns the records whose target is the named crate.
// This is the SQL-side form of registry.AffectsCrate.
func (s *Store) ReadRecordsByTarget(ctx context.Context, name string) ([]ir.IncompatRecord, error) {
	stored, err := s.readStored(ctx, "r.target_kind = 'crate' AND r.target_name = ?", name)
	if err != nil {
		return nil, err
	}
	return recordsOf(stored), nil
}

// ReadRecordsByConflict returns the records that conflict with the named crate.
// This is the SQL-side form of registry.HasConflicts.
func (s *Store) ReadRecordsByConflict(ctx context.Context, name string) ([]ir.IncompatRecord, error) {
	stored, err := s.readStored(ctx, "r.conflicts_kind = 'crate' AND r.conflicts_name = ?", name)
	if err != nil {
		return nil, err
	}
	return recordsOf(stored), nil
}

// ReadRecord returns the record stored under id.
// Returns ErrNotFound if no such record exists.
func (s *Store) ReadRecord(ctx context.Context, id string) (ir.IncompatRecord, error) {
	stored, err := s.readStored(ctx, "r.id = ?", id)
	if err != nil {
		return ir.IncompatRecord{}, err
	}
	if len(stored) == 0 {
		return ir.IncompatRecord{}, fmt.Errorf("read record %s: %w", id, ErrNotFound)
	}
	return stored[0].Record, nil
}

// ReadImports returns all imports ordered by seq.
func (s *Store) ReadImports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, seq, record_count
		FROM imports
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Seq, &imp.RecordCount); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// readStored loads records matching where (a predicate over alias r) along
// with their references. Ordering: seq ASC, id COLLATE BINARY ASC.
func (s *Store) readStored(ctx context.Context, where string, args ...any) ([]StoredRecord, error) {
	refs, err := s.readReferences(ctx, where, args...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.import_id,
		       r.target_kind, r.target_name, r.target_range,
		       r.conflicts_kind, r.conflicts_name, r.conflicts_range,
		       r.reason
		FROM records r
		WHERE `+where+`
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	stored := []StoredRecord{}
	for rows.Next() {
		sr, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		sr.Record.References = refs[sr.ID]
		stored = append(stored, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return stored, nil
}

// readReferences loads references for the records matching where,
// grouped by record id in position order.
func (s *Store) readReferences(ctx context.Context, where string, args ...any) (map[string][]ir.RefType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.record_id, f.kind, f.locator
		FROM record_references f
		JOIN records r ON r.id = f.record_id
		WHERE `+where+`
		ORDER BY f.record_id COLLATE BINARY ASC, f.position ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query references: %w", err)
	}
	defer rows.Close()

	refs := make(map[string][]ir.RefType)
	for rows.Next() {
		var recordID, kind, locator string
		if err := rows.Scan(&recordID, &kind, &locator); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		ref, err := scanReference(kind, locator)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", recordID, err)
		}
		refs[recordID] = append(refs[recordID], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate references: %w", err)
	}
	return refs, nil
}

// scanRecord scans one records row.
func scanRecord(rows *sql.Rows) (StoredRecord, error) {
	var (
		sr                   StoredRecord
		tKind, tName, tRange string
		cKind, cName, cRange string
		reason               string
	)
	if err := rows.Scan(
		&sr.ID, &sr.Seq, &sr.ImportID,
		&tKind, &tName, &tRange,
		&cKind, &cName, &cRange,
		&reason,
	); err != nil {
		return StoredRecord{}, fmt.Errorf("scan record: %w", err)
	}

	target, err := scanTarget(tKind, tName, tRange)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("record %s: target: %w", sr.ID, err)
	}
	conflicting, err := scanTarget(cKind, cName, cRange)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("record %s: conflicts: %w", sr.ID, err)
	}

	sr.Record = ir.IncompatRecord{
		Target:      target,
		Conflicting: conflicting,
		Reason:      reason,
	}
	return sr, nil
}

func recordsOf(stored []StoredRecord) []ir.IncompatRecord {
	out := make([]ir.IncompatRecord, len(stored))
	for i, sr := range stored {
		out[i] = sr.Record
	}
	return out
}
