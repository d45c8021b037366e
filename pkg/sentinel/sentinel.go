package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and cache layers return
// these (optionally wrapped) so services can translate them into responses.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store or cache
// - ErrConflict: unique constraint violated (duplicate zone name)
// - ErrUnavailable: backing store temporarily unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
