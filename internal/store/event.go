package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Events are ordered by a sequence number taken from a one-row counter
// inside the inserting transaction. A failed insert rolls the counter
// back with it, so sequences have no gaps and never repeat, even across
// processes sharing the file.
func nextSequence(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// Prune deletes events recorded before cutoff and reports how many went.
// Sequence numbers are not reused afterwards.
func (r *eventRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args := r.b.Delete(llmEventsTable).
		Where(entsql.LT("created_at", cutoff.UTC().UnixMilli())).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune LLM request events: %w", err)
	}
	return res.RowsAffected()
}
