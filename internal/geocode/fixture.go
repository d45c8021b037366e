package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// FixtureGeocoder answers lookups from a static JSON file mapping address
// text to components. It stands in for the external provider in development
// and test environments.
type FixtureGeocoder struct {
	addresses map[string]Components
	logger    *slog.Logger
}

// NewFixtureGeocoder loads the fixtures file once. A missing file is an
// error at construction; lookups afterwards never fail.
func NewFixtureGeocoder(path string, logger *slog.Logger) (*FixtureGeocoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read address fixtures %s: %w", path, err)
	}

	var addresses map[string]Components
	if err := json.Unmarshal(data, &addresses); err != nil {
		return nil, fmt.Errorf("unmarshal address fixtures %s: %w", path, err)
	}

	logger.Info("loaded address fixtures", "count", len(addresses), "file", path)
	return &FixtureGeocoder{addresses: addresses, logger: logger}, nil
}

// NewFixtureGeocoderFromMap builds a fixture geocoder from an in-memory
// table. Used by tests.
func NewFixtureGeocoderFromMap(addresses map[string]Components, logger *slog.Logger) *FixtureGeocoder {
	return &FixtureGeocoder{addresses: addresses, logger: logger}
}

// Geocode returns the fixture entry exactly matching the address text.
func (f *FixtureGeocoder) Geocode(ctx context.Context, address string) (Components, bool) {
	comps, ok := f.addresses[address]
	if !ok {
		f.logger.DebugContext(ctx, "no fixture address found", "address", address)
		return nil, false
	}
	return comps, true
}
