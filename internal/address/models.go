// Package address persists checked addresses and their verdicts.
package address

import "time"

// Address is a stored address record. IsEligible is nil until a check has
// produced a verdict for it.
type Address struct {
	ID                int64
	StreetAddress     string
	StreetAddress2    string
	City              string
	State             string
	ZipCode           string
	Country           string
	Latitude          *float64
	Longitude         *float64
	IsEligible        *bool
	EligibilityReason string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasVerdict reports whether a check has already decided this address.
func (a *Address) HasVerdict() bool {
	return a.IsEligible != nil
}
