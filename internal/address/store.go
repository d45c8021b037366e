package address

import "context"

// Store persists address records. FindByIdentity looks up by the full
// street/city/state/zip tuple; absence is sentinel.ErrNotFound.
type Store interface {
	Save(ctx context.Context, a *Address) (*Address, error)
	FindByIdentity(ctx context.Context, street, city, state, zip string) (*Address, error)
	FindByZip(ctx context.Context, zip string) ([]*Address, error)
	FindByCityState(ctx context.Context, city, state string) ([]*Address, error)
	FindByEligibility(ctx context.Context, eligible bool) ([]*Address, error)
	FindByCoordinateRange(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*Address, error)
}
