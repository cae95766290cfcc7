package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Ledger is the append-only record of form responses that have already been
// evaluated for import. A present response id is never reprocessed.
type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) IsSynced(ctx context.Context, responseID string) (bool, error) {
	var exists bool
	err := l.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM synced_responses WHERE response_id = ?)`, responseID)
	if err != nil {
		return false, fmt.Errorf("check synced response: %w", err)
	}
	return exists, nil
}

// MarkSynced records a consumed response. Marking an already-present id is a
// no-op, so a future multi-process deployment can key dedup off the insert
// result without a schema change.
func (l *Ledger) MarkSynced(ctx context.Context, responseID, formID string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO synced_responses (response_id, form_id, synced_at) VALUES (?, ?, ?)`,
		responseID, formID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark response synced: %w", err)
	}
	return nil
}
