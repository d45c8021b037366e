package region

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Service answers eligibility questions against the directory, translating
// state abbreviations to directory keys and producing human-readable reasons.
type Service struct {
	directory *Directory
	logger    *slog.Logger
}

// CheckResult pairs an eligibility verdict with its reason.
type CheckResult struct {
	Eligible bool
	Reason   string
}

// NewService creates a region eligibility service over a loaded directory.
func NewService(directory *Directory, logger *slog.Logger) *Service {
	return &Service{directory: directory, logger: logger}
}

// IsAddressEligible reports whether the city is listed for the state, scoped
// to the county when one is provided.
func (s *Service) IsAddressEligible(city, county, state string) bool {
	if city == "" || state == "" {
		return false
	}

	normalizedState := s.NormalizeState(state)

	if strings.TrimSpace(county) != "" {
		return s.directory.IsCityEligible(normalizedState, county, city)
	}
	return s.directory.IsCityEligibleInState(normalizedState, city)
}

// CheckWithReason evaluates eligibility and explains the verdict,
// distinguishing an unconfigured state from an unlisted city.
func (s *Service) CheckWithReason(city, county, state string) CheckResult {
	eligible := s.IsAddressEligible(city, county, state)

	hasCounty := strings.TrimSpace(county) != ""

	var reason string
	switch {
	case eligible && hasCounty:
		reason = fmt.Sprintf("Address in %s, %s County, %s is in an eligible region", city, county, state)
	case eligible:
		reason = fmt.Sprintf("Address in %s, %s is in an eligible region", city, state)
	default:
		normalizedState := s.NormalizeState(state)
		if !slices.Contains(s.directory.EligibleStates(), normalizeKey(normalizedState)) {
			reason = fmt.Sprintf("State '%s' does not have any eligible regions configured", state)
		} else if hasCounty {
			reason = fmt.Sprintf("City '%s' in %s County, %s is not in the list of eligible cities", city, county, state)
		} else {
			reason = fmt.Sprintf("City '%s' in %s is not in the list of eligible cities", city, state)
		}
	}

	return CheckResult{Eligible: eligible, Reason: reason}
}

// EligibleCitiesInCounty returns the configured city list for a county.
func (s *Service) EligibleCitiesInCounty(state, county string) []string {
	return s.directory.EligibleCitiesInCounty(s.NormalizeState(state), county)
}

// EligibleStates returns every configured state key.
func (s *Service) EligibleStates() []string {
	return s.directory.EligibleStates()
}

// EligibleCountiesInState returns the county keys configured for a state.
func (s *Service) EligibleCountiesInState(state string) []string {
	return s.directory.EligibleCountiesInState(s.NormalizeState(state))
}

// NormalizeState resolves a state to the directory's key form: 2-letter
// abbreviations map to the full lowercase name, unknown codes pass through
// uppercased, full names lowercase.
func (s *Service) NormalizeState(state string) string {
	trimmed := strings.TrimSpace(state)
	if trimmed == "" {
		return ""
	}

	if len(trimmed) == 2 {
		upper := strings.ToUpper(trimmed)
		if full, ok := stateAbbreviations[upper]; ok {
			return full
		}
		return upper
	}

	return strings.ToLower(trimmed)
}
