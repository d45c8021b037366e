package zone

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"addresseligibility/pkg/sentinel"
)

// Schema creates the eligibility_zones table. Criteria sets are text arrays;
// membership queries use = ANY so Postgres does the filtering.
const Schema = `
CREATE TABLE IF NOT EXISTS eligibility_zones (
    id            BIGSERIAL PRIMARY KEY,
    zone_name     TEXT NOT NULL UNIQUE,
    zone_type     TEXT NOT NULL,
    zip_codes     TEXT[] NOT NULL DEFAULT '{}',
    cities        TEXT[] NOT NULL DEFAULT '{}',
    states        TEXT[] NOT NULL DEFAULT '{}',
    min_latitude  DOUBLE PRECISION,
    max_latitude  DOUBLE PRECISION,
    min_longitude DOUBLE PRECISION,
    max_longitude DOUBLE PRECISION,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    priority      INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_zone_active ON eligibility_zones (is_active);
CREATE INDEX IF NOT EXISTS idx_zone_type ON eligibility_zones (zone_type);
`

const zoneColumns = `id, zone_name, zone_type, zip_codes, cities, states,
	min_latitude, max_latitude, min_longitude, max_longitude,
	is_active, priority, created_at, updated_at`

// PostgresStore persists zones in PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed zone store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate applies the zone schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate eligibility_zones: %w", err)
	}
	return nil
}

// Save upserts a zone by its unique name and returns the stored row.
func (s *PostgresStore) Save(ctx context.Context, z *Zone) (*Zone, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO eligibility_zones
			(zone_name, zone_type, zip_codes, cities, states,
			 min_latitude, max_latitude, min_longitude, max_longitude,
			 is_active, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (zone_name) DO UPDATE SET
			zone_type = EXCLUDED.zone_type,
			zip_codes = EXCLUDED.zip_codes,
			cities = EXCLUDED.cities,
			states = EXCLUDED.states,
			min_latitude = EXCLUDED.min_latitude,
			max_latitude = EXCLUDED.max_latitude,
			min_longitude = EXCLUDED.min_longitude,
			max_longitude = EXCLUDED.max_longitude,
			is_active = EXCLUDED.is_active,
			priority = EXCLUDED.priority,
			updated_at = now()
		RETURNING `+zoneColumns,
		z.Name, string(z.Type), z.ZipCodes, z.Cities, z.States,
		z.MinLatitude, z.MaxLatitude, z.MinLongitude, z.MaxLongitude,
		z.Active, z.Priority)
	return scanZone(row)
}

// FindByName returns the zone with the given unique name.
func (s *PostgresStore) FindByName(ctx context.Context, name string) (*Zone, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+zoneColumns+` FROM eligibility_zones WHERE zone_name = $1`, name)
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return z, err
}

// ExistsByName reports whether a zone with the given unique name exists.
func (s *PostgresStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM eligibility_zones WHERE zone_name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("zone exists by name: %w", err)
	}
	return exists, nil
}

// CountActive returns the number of active zones.
func (s *PostgresStore) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM eligibility_zones WHERE is_active`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active zones: %w", err)
	}
	return n, nil
}

// ByZipCode returns active zones whose zip set contains zip.
func (s *PostgresStore) ByZipCode(ctx context.Context, zip string) ([]*Zone, error) {
	return s.query(ctx, `SELECT `+zoneColumns+`
		FROM eligibility_zones
		WHERE is_active AND $1 = ANY(zip_codes)
		ORDER BY id`, zip)
}

// ByCityState returns active zones whose city and state sets contain the pair.
func (s *PostgresStore) ByCityState(ctx context.Context, city, state string) ([]*Zone, error) {
	return s.query(ctx, `SELECT `+zoneColumns+`
		FROM eligibility_zones
		WHERE is_active AND $1 = ANY(cities) AND $2 = ANY(states)
		ORDER BY id`, city, state)
}

// ByCoordinates returns active zones whose bounds contain the point.
func (s *PostgresStore) ByCoordinates(ctx context.Context, lat, lon float64) ([]*Zone, error) {
	return s.query(ctx, `SELECT `+zoneColumns+`
		FROM eligibility_zones
		WHERE is_active
		  AND min_latitude <= $1 AND max_latitude >= $1
		  AND min_longitude <= $2 AND max_longitude >= $2
		ORDER BY id`, lat, lon)
}

// AllActiveByPriority returns every active zone, highest priority first.
func (s *PostgresStore) AllActiveByPriority(ctx context.Context) ([]*Zone, error) {
	return s.query(ctx, `SELECT `+zoneColumns+`
		FROM eligibility_zones
		WHERE is_active
		ORDER BY priority DESC, id`)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]*Zone, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	var zones []*Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

func scanZone(row pgx.Row) (*Zone, error) {
	var z Zone
	var typ string
	err := row.Scan(&z.ID, &z.Name, &typ, &z.ZipCodes, &z.Cities, &z.States,
		&z.MinLatitude, &z.MaxLatitude, &z.MinLongitude, &z.MaxLongitude,
		&z.Active, &z.Priority, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return nil, err
	}
	z.Type = Type(typ)
	return &z, nil
}
