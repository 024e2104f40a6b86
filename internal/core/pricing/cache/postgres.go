package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore persists cache entries in a price_cache table. Upsert rides
// on ON CONFLICT so concurrent writers for the same (ingredient, location)
// pair resolve inside the database.
type PostgresStore struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS price_cache (
	ingredient_key TEXT        NOT NULL,
	location_key   TEXT        NOT NULL,
	payload        JSONB       NOT NULL,
	cached_at      TIMESTAMPTZ NOT NULL,
	expires_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (ingredient_key, location_key)
)`

// NewPostgresStore connects to Postgres and ensures the cache table exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure price_cache table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Get implements Store.
func (p *PostgresStore) Get(ctx context.Context, ingredientKey, locationKey string) (*Entry, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT payload, cached_at, expires_at
		 FROM price_cache
		 WHERE ingredient_key = $1 AND location_key = $2`,
		ingredientKey, locationKey,
	)

	var payload []byte
	entry := Entry{IngredientKey: ingredientKey, LocationKey: locationKey}
	if err := row.Scan(&payload, &entry.CachedAt, &entry.ExpiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := json.Unmarshal(payload, &entry.Option); err != nil {
		return nil, fmt.Errorf("failed to decode cache payload: %w", err)
	}
	return &entry, nil
}

// Upsert implements Store.
func (p *PostgresStore) Upsert(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry.Option)
	if err != nil {
		return fmt.Errorf("failed to encode cache payload: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO price_cache (ingredient_key, location_key, payload, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (ingredient_key, location_key)
		 DO UPDATE SET payload = $3, cached_at = $4, expires_at = $5`,
		entry.IngredientKey, entry.LocationKey, payload, entry.CachedAt, entry.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

// DeleteBefore implements Store.
func (p *PostgresStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM price_cache WHERE cached_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}

// Close implements Store.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}

var _ Store = (*PostgresStore)(nil)
