package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/incompat/internal/ir"
)

// ImportSummary describes the outcome of one WriteRecords call.
type ImportSummary struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"` // already stored under the same RecordID
}

// WriteRecords stores records in a single transaction under a new import.
// Records already present (same ir.RecordID) are skipped, so re-importing a
// definition set is idempotent. New records keep their slice order.
//
// References are written with their position so citation order survives
// the round trip.
func (s *Store) WriteRecords(ctx context.Context, source string, records []ir.IncompatRecord) (ImportSummary, error) {
	summary := ImportSummary{ID: s.ids.Generate(), Source: source}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("write records: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var importSeq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM imports").Scan(&importSeq); err != nil {
		return ImportSummary{}, fmt.Errorf("write records: next import seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO imports (id, source, seq) VALUES (?, ?, ?)
	`, summary.ID, source, importSeq); err != nil {
		return ImportSummary{}, fmt.Errorf("write records: insert import: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM records").Scan(&seq); err != nil {
		return ImportSummary{}, fmt.Errorf("write records: last record seq: %w", err)
	}

	for i, rec := range records {
		inserted, err := writeRecord(ctx, tx, summary.ID, seq+1, rec)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("write records: record %d: %w", i, err)
		}
		if inserted {
			seq++
			summary.Inserted++
		} else {
			summary.Skipped++
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE imports SET record_count = ? WHERE id = ?
	`, summary.Inserted, summary.ID); err != nil {
		return ImportSummary{}, fmt.Errorf("write records: update import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("write records: commit: %w", err)
	}

	return summary, nil
}

// writeRecord inserts one record and its references.
// Returns inserted=false when a record with the same ID already exists.
func writeRecord(ctx context.Context, tx *sql.Tx, importID string, seq int64, rec ir.IncompatRecord) (bool, error) {
	id, err := ir.RecordID(rec)
	if err != nil {
		return false, err
	}

	tKind, tName, tRange, err := targetColumns(rec.Target)
	if err != nil {
		return false, fmt.Errorf("target: %w", err)
	}
	cKind, cName, cRange, err := targetColumns(rec.Conflicting)
	if err != nil {
		return false, fmt.Errorf("conflicts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO records
		(id, seq, import_id, target_kind, target_name, target_range,
		 conflicts_kind, conflicts_name, conflicts_range, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id, seq, importID,
		tKind, tName, tRange,
		cKind, cName, cRange,
		rec.Reason,
	)
	if err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	for pos, ref := range rec.References {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_references (record_id, position, kind, locator)
			VALUES (?, ?, ?, ?)
		`, id, pos, ref.Kind.Key(), ref.Locator); err != nil {
			return false, fmt.Errorf("insert reference %d: %w", pos, err)
		}
	}

	return true, nil
}
