package zone

import (
	"slices"
	"time"
)

// Type tags how a zone's criteria are interpreted. The scoring switch in the
// rule engine must stay exhaustive over these values.
type Type string

const (
	TypeZipCode     Type = "ZIP_CODE"    // zone defined by ZIP codes
	TypeCity        Type = "CITY"        // zone defined by city names
	TypeState       Type = "STATE"       // zone defined by state names
	TypeCoordinates Type = "COORDINATES" // zone defined by lat/lon bounds
	TypeCustom      Type = "CUSTOM"      // custom zone with mixed criteria
)

// Types lists every zone type. Tests iterate this to catch a new type that
// has no scoring rule yet.
var Types = []Type{TypeZipCode, TypeCity, TypeState, TypeCoordinates, TypeCustom}

// Zone is a named, typed geographic criterion set used to decide address
// eligibility. Zones are created and updated administratively; the evaluator
// treats them as read-only. A zone whose criteria set for its type is empty
// never matches.
type Zone struct {
	ID       int64  `json:"id"`
	Name     string `json:"zone_name"`
	Type     Type   `json:"zone_type"`
	ZipCodes []string `json:"zip_codes,omitempty"`
	Cities   []string `json:"cities,omitempty"`
	States   []string `json:"states,omitempty"`

	MinLatitude  *float64 `json:"min_latitude,omitempty"`
	MaxLatitude  *float64 `json:"max_latitude,omitempty"`
	MinLongitude *float64 `json:"min_longitude,omitempty"`
	MaxLongitude *float64 `json:"max_longitude,omitempty"`

	Active   bool `json:"is_active"`
	Priority int  `json:"priority"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasZip reports whether the zone's zip set contains the given zip code.
func (z *Zone) HasZip(zip string) bool {
	return slices.Contains(z.ZipCodes, zip)
}

// HasCity reports whether the zone's city set contains the given city.
func (z *Zone) HasCity(city string) bool {
	return slices.Contains(z.Cities, city)
}

// HasState reports whether the zone's state set contains the given state.
func (z *Zone) HasState(state string) bool {
	return slices.Contains(z.States, state)
}

// ContainsPoint reports whether the zone's rectangular bounds contain the
// point. False when any bound is unset.
func (z *Zone) ContainsPoint(lat, lon float64) bool {
	if z.MinLatitude == nil || z.MaxLatitude == nil || z.MinLongitude == nil || z.MaxLongitude == nil {
		return false
	}
	return lat >= *z.MinLatitude && lat <= *z.MaxLatitude &&
		lon >= *z.MinLongitude && lon <= *z.MaxLongitude
}
