package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DisclaimerAcceptance records whether a session accepted the
// synthetic-data disclaimer, and when.
type DisclaimerAcceptance struct {
	SessionID  string     `json:"session_id"`
	Accepted   bool       `json:"accepted"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

// AcceptDisclaimer marks the disclaimer accepted for sessionID. Accepting
// again keeps the original timestamp.
func (db *DB) AcceptDisclaimer(ctx context.Context, sessionID string, at time.Time) error {
	if sessionID == "" {
		return fmt.Errorf("accept disclaimer: empty session id")
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO disclaimer_acceptance (session_id, accepted_unix_ms) VALUES (?, ?)`,
		sessionID, at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("accept disclaimer: %w", err)
	}
	return nil
}

// GetDisclaimerAcceptance reads the acceptance for sessionID. A session that
// never accepted is reported with Accepted false.
func (db *DB) GetDisclaimerAcceptance(ctx context.Context, sessionID string) (DisclaimerAcceptance, error) {
	out := DisclaimerAcceptance{SessionID: sessionID}
	var ms int64
	err := db.QueryRowContext(ctx,
		`SELECT accepted_unix_ms FROM disclaimer_acceptance WHERE session_id = ?`, sessionID,
	).Scan(&ms)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return out, nil
	case err != nil:
		return out, fmt.Errorf("get disclaimer acceptance: %w", err)
	}
	at := time.UnixMilli(ms).UTC()
	out.Accepted = true
	out.AcceptedAt = &at
	return out, nil
}
