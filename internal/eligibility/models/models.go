package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// Request is an eligibility check for one address. Field names are the
// stable wire contract.
type Request struct {
	StreetAddress  string   `json:"street_address"`
	StreetAddress2 string   `json:"street_address_2,omitempty"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	Country        string   `json:"country,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`

	// CheckCoordinates opts the request into coordinate-bounds zone matching.
	CheckCoordinates bool `json:"check_coordinates,omitempty"`

	// IncludeReason controls whether the reason string is returned.
	// Absent means true.
	IncludeReason *bool `json:"include_reason,omitempty"`
}

// Normalize applies request defaults.
func (r *Request) Normalize() {
	if r.Country == "" {
		r.Country = "USA"
	}
}

// WantsReason reports whether the caller asked for the reason string.
func (r *Request) WantsReason() bool {
	return r.IncludeReason == nil || *r.IncludeReason
}

// HasCoordinates reports whether both latitude and longitude are present.
func (r *Request) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// CacheKey derives the deterministic result-cache identity: the
// lowercase-joined street:city:state:zip tuple. Two logically equal
// addresses differing only in capitalization collide on purpose.
func (r *Request) CacheKey() string {
	return strings.ToLower(fmt.Sprintf("%s:%s:%s:%s",
		r.StreetAddress, r.City, r.State, r.ZipCode))
}

// Validate enforces the required fields and zip format. Transport calls this
// before the request reaches the core.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.StreetAddress) == "" {
		return fmt.Errorf("street_address is required")
	}
	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("city is required")
	}
	if strings.TrimSpace(r.State) == "" {
		return fmt.Errorf("state is required")
	}
	if !zipPattern.MatchString(r.ZipCode) {
		return fmt.Errorf("invalid zip code format")
	}
	return nil
}

// AddressDetails echoes the normalized address in responses.
type AddressDetails struct {
	StreetAddress    string   `json:"street_address"`
	StreetAddress2   string   `json:"street_address_2,omitempty"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	ZipCode          string   `json:"zip_code"`
	Country          string   `json:"country,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
}

// Response is the full eligibility answer for one request.
type Response struct {
	Eligible         bool            `json:"eligible"`
	Reason           string          `json:"reason,omitempty"`
	Address          *AddressDetails `json:"address,omitempty"`
	MatchedZones     []string        `json:"matched_zones,omitempty"`
	ConfidenceScore  float64         `json:"confidence_score"`
	CheckedAt        time.Time       `json:"checked_at"`
	CacheHit         bool            `json:"cache_hit"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}
