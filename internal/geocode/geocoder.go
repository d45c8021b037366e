// Package geocode resolves free-text addresses to structured components.
package geocode

import "context"

// Component keys shared by every geocoder implementation.
const (
	KeyStreet  = "street"
	KeyCity    = "city"
	KeyCounty  = "county"
	KeyState   = "state"
	KeyZip     = "zip"
	KeyCountry = "country"
)

// Components maps component keys to resolved values.
type Components map[string]string

// Geocoder resolves an address string to components. The boolean is false
// when the provider has no answer; provider failures are treated the same
// way and never surface as errors to callers.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Components, bool)
}
