// Package property decides eligibility for resolved address components
// against the configured region directory.
package property

import (
	"context"
	"log/slog"

	"addresseligibility/internal/geocode"
	"addresseligibility/internal/region"
)

// Stable message values of the free-text check contract.
const (
	MessageEligible    = "address_eligible"
	MessageNotEligible = "address not eligible"
	MessageNotFound    = "address not found"
)

// Result is the outcome of a property check. FormattedAddress is only set
// on eligible results; Reason only when the caller asked for one.
type Result struct {
	Message          string             `json:"message"`
	FormattedAddress geocode.Components `json:"formatted_address,omitempty"`
	Reason           string             `json:"reason,omitempty"`
}

// Service checks resolved address components against the region directory.
type Service struct {
	regions *region.Service
	logger  *slog.Logger
}

// NewService creates a property eligibility service.
func NewService(regions *region.Service, logger *slog.Logger) *Service {
	return &Service{regions: regions, logger: logger}
}

// CheckEligibility decides eligibility from resolved components. Empty
// components mean the address could not be resolved at all.
func (s *Service) CheckEligibility(ctx context.Context, comps geocode.Components) Result {
	if len(comps) == 0 {
		s.logger.DebugContext(ctx, "address not found, no components to check")
		return Result{Message: MessageNotFound}
	}

	eligible := s.regions.IsAddressEligible(
		comps[geocode.KeyCity], comps[geocode.KeyCounty], comps[geocode.KeyState])

	if eligible {
		s.logger.DebugContext(ctx, "address is eligible", "city", comps[geocode.KeyCity])
		return Result{Message: MessageEligible, FormattedAddress: comps}
	}

	s.logger.DebugContext(ctx, "address is not eligible", "city", comps[geocode.KeyCity])
	return Result{Message: MessageNotEligible}
}

// CheckWithReason decides eligibility and always attaches the reason.
func (s *Service) CheckWithReason(ctx context.Context, comps geocode.Components) Result {
	if len(comps) == 0 {
		return Result{
			Message: MessageNotFound,
			Reason:  "Address information is missing or incomplete",
		}
	}

	check := s.regions.CheckWithReason(
		comps[geocode.KeyCity], comps[geocode.KeyCounty], comps[geocode.KeyState])

	result := Result{Message: MessageNotEligible, Reason: check.Reason}
	if check.Eligible {
		result.Message = MessageEligible
		result.FormattedAddress = comps
	}
	return result
}
