package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"mintguard/internal/events"
)

// Store persists result records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL event store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema for reference; applied by migrations, not by this store.
// usd_value, nonce, and reserve_value_used are decimal text because the
// full uint64 range does not fit a signed BIGINT.
//
//	CREATE TABLE engine_events (
//	    id                 UUID PRIMARY KEY,
//	    event_type         TEXT NOT NULL,
//	    occurred_at        TIMESTAMPTZ NOT NULL,
//	    usd_value          TEXT NOT NULL DEFAULT '0',
//	    nonce              TEXT NOT NULL DEFAULT '0',
//	    request_id         TEXT NOT NULL DEFAULT '',
//	    recipient          TEXT NOT NULL DEFAULT '',
//	    account            TEXT NOT NULL DEFAULT '',
//	    operator           TEXT NOT NULL DEFAULT '',
//	    amount             TEXT NOT NULL DEFAULT '',
//	    total_supply_after TEXT NOT NULL DEFAULT '',
//	    reserve_value_used TEXT NOT NULL DEFAULT '0'
//	);

func (s *Store) Append(ctx context.Context, event events.Event) error {
	query := `
		INSERT INTO engine_events (
			id, event_type, occurred_at, usd_value, nonce, request_id,
			recipient, account, operator, amount, total_supply_after, reserve_value_used
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		event.Timestamp,
		strconv.FormatUint(event.USDValue, 10),
		strconv.FormatUint(event.Nonce, 10),
		event.RequestID,
		event.Recipient,
		event.Account,
		event.Operator,
		event.Amount,
		event.TotalSupplyAfter,
		strconv.FormatUint(event.ReserveValueUsed, 10),
	)
	if err != nil {
		return fmt.Errorf("insert engine event: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, event_type, occurred_at, usd_value, nonce, request_id,
		       recipient, account, operator, amount, total_supply_after, reserve_value_used
		FROM engine_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list engine events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			event                     events.Event
			eventType                 string
			usdValue, nonce, reserved string
		)
		if err := rows.Scan(
			&event.ID, &eventType, &event.Timestamp, &usdValue, &nonce, &event.RequestID,
			&event.Recipient, &event.Account, &event.Operator, &event.Amount,
			&event.TotalSupplyAfter, &reserved,
		); err != nil {
			return nil, fmt.Errorf("scan engine event: %w", err)
		}
		event.Type = events.Type(eventType)
		if event.USDValue, err = strconv.ParseUint(usdValue, 10, 64); err != nil {
			return nil, fmt.Errorf("parse usd_value %q: %w", usdValue, err)
		}
		if event.Nonce, err = strconv.ParseUint(nonce, 10, 64); err != nil {
			return nil, fmt.Errorf("parse nonce %q: %w", nonce, err)
		}
		if event.ReserveValueUsed, err = strconv.ParseUint(reserved, 10, 64); err != nil {
			return nil, fmt.Errorf("parse reserve_value_used %q: %w", reserved, err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engine events: %w", err)
	}
	return out, nil
}
