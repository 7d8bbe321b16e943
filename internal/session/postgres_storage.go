package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage keeps values in the dashboard_state table.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage wraps a pool whose schema has been migrated.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (p *PostgresStorage) Load(ctx context.Context, keys ...string) (map[string]string, error) {
	const query = `SELECT key, value FROM dashboard_state WHERE key = ANY($1)`

	rows, err := p.pool.Query(ctx, query, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (p *PostgresStorage) Save(ctx context.Context, values map[string]string) error {
	const query = `
        INSERT INTO dashboard_state (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx, query, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *PostgresStorage) Delete(ctx context.Context, keys ...string) error {
	const query = `DELETE FROM dashboard_state WHERE key = ANY($1)`

	_, err := p.pool.Exec(ctx, query, keys)
	return err
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	if p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}
