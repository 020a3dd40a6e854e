// internal/repository/postgres/records_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const DefaultRecordsTable = "fleet_records"

// RecordsRepository keeps one JSONB payload per key.
type RecordsRepository struct {
	db    *pgxpool.Pool
	table string
}

func NewRecordsRepository(db *pgxpool.Pool, table string) *RecordsRepository {
	if table == "" {
		table = DefaultRecordsTable
	}
	return &RecordsRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// Migrate creates the records table when missing.
func (r *RecordsRepository) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, r.table)

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}
	return nil
}

func (r *RecordsRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE key = $1`, r.table)

	var payload []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get records: %w", err)
	}
	return payload, true, nil
}

func (r *RecordsRepository) Put(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, r.table)

	if _, err := r.db.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

func (r *RecordsRepository) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, r.table)

	if _, err := r.db.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
