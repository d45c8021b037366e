package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"addresseligibility/pkg/sentinel"
)

// Schema creates the addresses table. The identity tuple is unique so a
// repeat check of the same address updates its verdict instead of inserting.
const Schema = `
CREATE TABLE IF NOT EXISTS addresses (
    id                 BIGSERIAL PRIMARY KEY,
    street_address     TEXT NOT NULL,
    street_address_2   TEXT NOT NULL DEFAULT '',
    city               TEXT NOT NULL,
    state              TEXT NOT NULL,
    zip_code           TEXT NOT NULL,
    country            TEXT NOT NULL DEFAULT 'USA',
    latitude           DOUBLE PRECISION,
    longitude          DOUBLE PRECISION,
    is_eligible        BOOLEAN,
    eligibility_reason TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (street_address, city, state, zip_code)
);
CREATE INDEX IF NOT EXISTS idx_address_zip ON addresses (zip_code);
CREATE INDEX IF NOT EXISTS idx_address_city_state ON addresses (city, state);
CREATE INDEX IF NOT EXISTS idx_address_eligible ON addresses (is_eligible);
`

const addressColumns = `id, street_address, street_address_2, city, state, zip_code,
	country, latitude, longitude, is_eligible, eligibility_reason,
	created_at, updated_at`

// PostgresStore persists addresses in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed address store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the address schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate addresses: %w", err)
	}
	return nil
}

// Save upserts an address by its identity tuple and returns the stored row.
func (s *PostgresStore) Save(ctx context.Context, a *Address) (*Address, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO addresses
			(street_address, street_address_2, city, state, zip_code, country,
			 latitude, longitude, is_eligible, eligibility_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (street_address, city, state, zip_code) DO UPDATE SET
			street_address_2 = EXCLUDED.street_address_2,
			country = EXCLUDED.country,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			is_eligible = EXCLUDED.is_eligible,
			eligibility_reason = EXCLUDED.eligibility_reason,
			updated_at = now()
		RETURNING `+addressColumns,
		a.StreetAddress, a.StreetAddress2, a.City, a.State, a.ZipCode, a.Country,
		a.Latitude, a.Longitude, a.IsEligible, a.EligibilityReason)
	return scanAddress(row)
}

// FindByIdentity returns the address matching the tuple, case-insensitively
// on the text parts.
func (s *PostgresStore) FindByIdentity(ctx context.Context, street, city, state, zip string) (*Address, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+addressColumns+`
		FROM addresses
		WHERE lower(street_address) = lower($1)
		  AND lower(city) = lower($2)
		  AND lower(state) = lower($3)
		  AND zip_code = $4`, street, city, state, zip)
	a, err := scanAddress(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return a, err
}

// FindByZip returns every address with the given zip code.
func (s *PostgresStore) FindByZip(ctx context.Context, zip string) ([]*Address, error) {
	return s.query(ctx, `SELECT `+addressColumns+`
		FROM addresses WHERE zip_code = $1 ORDER BY id`, zip)
}

// FindByCityState returns every address in the city and state pair.
func (s *PostgresStore) FindByCityState(ctx context.Context, city, state string) ([]*Address, error) {
	return s.query(ctx, `SELECT `+addressColumns+`
		FROM addresses
		WHERE lower(city) = lower($1) AND lower(state) = lower($2)
		ORDER BY id`, city, state)
}

// FindByEligibility returns addresses with the given decided verdict.
func (s *PostgresStore) FindByEligibility(ctx context.Context, eligible bool) ([]*Address, error) {
	return s.query(ctx, `SELECT `+addressColumns+`
		FROM addresses WHERE is_eligible = $1 ORDER BY id`, eligible)
}

// FindByCoordinateRange returns addresses inside the bounding box.
func (s *PostgresStore) FindByCoordinateRange(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*Address, error) {
	return s.query(ctx, `SELECT `+addressColumns+`
		FROM addresses
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY id`, minLat, maxLat, minLon, maxLon)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]*Address, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	var addrs []*Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

func scanAddress(row pgx.Row) (*Address, error) {
	var a Address
	err := row.Scan(&a.ID, &a.StreetAddress, &a.StreetAddress2, &a.City, &a.State,
		&a.ZipCode, &a.Country, &a.Latitude, &a.Longitude,
		&a.IsEligible, &a.EligibilityReason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
