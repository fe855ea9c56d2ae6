package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const llmEventsTable = "llm_request_events"

var llmEventColumns = []string{
	"id", "sequence", "created_at", "request_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

// eventRepo implements EventRepo with the ent SQL builder.
type eventRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSequence(ctx, tx)
	if err != nil {
		return err
	}

	query, args := r.b.Insert(llmEventsTable).
		Columns(llmEventColumns[1:]...).
		Values(
			seq,
			time.Now().UTC().UnixMilli(),
			data.RequestID,
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepo) ListLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := r.b.Select(llmEventColumns...).
		From(entsql.Table(llmEventsTable)).
		OrderBy(entsql.Desc("sequence"))
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM request events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMRequest(ctx context.Context, sequence int64) (*LLMRequestEvent, error) {
	query, args := r.b.Select(llmEventColumns...).
		From(entsql.Table(llmEventsTable)).
		Where(entsql.EQ("sequence", sequence)).
		Query()

	ev, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LLM request %d: %w", sequence, ErrNotFound)
	}
	return ev, err
}

func (r *eventRepo) UsageStats(ctx context.Context, opts QueryOpts) ([]UsageStat, error) {
	sel := r.b.Select(
		"provider",
		"model",
		entsql.As(entsql.Count("*"), "requests"),
		entsql.As(entsql.Sum("success"), "successes"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(entsql.Table(llmEventsTable)).
		GroupBy("provider", "model").
		OrderBy("provider", "model")
	if p := opts.predicate(); p != nil {
		sel.Where(p)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage stats: %w", err)
	}
	defer rows.Close()

	var stats []UsageStat
	for rows.Next() {
		var st UsageStat
		var successes int
		if err := rows.Scan(&st.Provider, &st.Model, &st.Requests, &successes,
			&st.InputTokens, &st.OutputTokens, &st.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage stat: %w", err)
		}
		st.Failures = st.Requests - successes
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// predicate converts the filters of opts into a WHERE clause, or nil when
// no filter is set.
func (o QueryOpts) predicate() *entsql.Predicate {
	var preds []*entsql.Predicate
	if o.After > 0 {
		preds = append(preds, entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		preds = append(preds, entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", o.From.UTC().UnixMilli()))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", o.To.UTC().UnixMilli()))
	}
	if o.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", o.Purpose))
	}

	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return entsql.And(preds...)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(row rowScanner) (*LLMRequestEvent, error) {
	var ev LLMRequestEvent
	var createdAt int64
	err := row.Scan(
		&ev.ID,
		&ev.Sequence,
		&createdAt,
		&ev.RequestID,
		&ev.Provider,
		&ev.Model,
		&ev.Purpose,
		&ev.InputTokens,
		&ev.OutputTokens,
		&ev.LatencyMs,
		&ev.Success,
		&ev.ErrorMessage,
		&ev.RequestBody,
		&ev.ResponseBody,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan LLM request event: %w", err)
	}
	ev.Timestamp = time.UnixMilli(createdAt).UTC()
	return &ev, nil
}
