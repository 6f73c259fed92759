package allowlist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "mintguard/pkg/domain"
)

// PostgresStore persists allowlist membership in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed allowlist store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema for reference; applied by migrations, not by this store.
//
//	CREATE TABLE allowlist (
//	    recipient  TEXT PRIMARY KEY,
//	    created_at TIMESTAMPTZ NOT NULL
//	);

func (s *PostgresStore) Add(ctx context.Context, recipient id.Address) error {
	query := `
		INSERT INTO allowlist (recipient, created_at)
		VALUES ($1, $2)
		ON CONFLICT (recipient) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, recipient.String(), time.Now()); err != nil {
		return fmt.Errorf("add allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, recipient id.Address) error {
	query := `DELETE FROM allowlist WHERE recipient = $1`
	if _, err := s.db.ExecContext(ctx, query, recipient.String()); err != nil {
		return fmt.Errorf("remove allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Contains(ctx context.Context, recipient id.Address) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM allowlist WHERE recipient = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, recipient.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check allowlist entry: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]id.Address, error) {
	query := `SELECT recipient FROM allowlist ORDER BY recipient`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list allowlist: %w", err)
	}
	defer rows.Close()

	var members []id.Address
	for rows.Next() {
		var recipient string
		if err := rows.Scan(&recipient); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		members = append(members, id.Address(recipient))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allowlist: %w", err)
	}
	return members, nil
}
