package zone

import "context"

// Store is the query surface the eligibility pipeline needs. Every match
// query returns only active zones and an empty slice (never an error) when
// nothing matches.
type Store interface {
	// ByZipCode returns active zones whose zip set contains zip.
	ByZipCode(ctx context.Context, zip string) ([]*Zone, error)

	// ByCityState returns active zones whose city and state sets contain the
	// pair.
	ByCityState(ctx context.Context, city, state string) ([]*Zone, error)

	// ByCoordinates returns active zones whose bounds contain the point.
	ByCoordinates(ctx context.Context, lat, lon float64) ([]*Zone, error)

	// AllActiveByPriority returns every active zone ordered by descending
	// priority. Administrative utility, not on the hot path.
	AllActiveByPriority(ctx context.Context) ([]*Zone, error)
}

// AdminStore extends Store with the administrative mutations used to manage
// zones. The evaluator never uses these.
type AdminStore interface {
	Store

	// Save inserts or updates a zone by name and returns the stored copy.
	Save(ctx context.Context, z *Zone) (*Zone, error)

	// FindByName returns the zone with the given unique name, or
	// sentinel.ErrNotFound.
	FindByName(ctx context.Context, name string) (*Zone, error)

	// ExistsByName reports whether a zone with the given unique name exists,
	// active or not.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// CountActive returns the number of active zones.
	CountActive(ctx context.Context) (int64, error)
}
