package db

import (
	"context"
	"fmt"
	"time"
)

// ExportRecord is one row of the export audit log.
type ExportRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Kind       string    `json:"kind"`
	Format     string    `json:"format"`
	ExportedAt time.Time `json:"exported_at"`
}

// RecordExport appends an export to the audit log.
func (db *DB) RecordExport(ctx context.Context, rec ExportRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO export_log (session_id, kind, format, exported_unix_ms) VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.Kind, rec.Format, rec.ExportedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// RecentExports returns up to limit exports, newest first.
func (db *DB) RecentExports(ctx context.Context, limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx,
		`SELECT export_id, session_id, kind, format, exported_unix_ms
		FROM export_log
		ORDER BY exported_unix_ms DESC, export_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var r ExportRecord
		var ms int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Format, &ms); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		r.ExportedAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}
