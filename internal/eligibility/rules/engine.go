// Package rules scores matched zones and decides eligibility.
package rules

import (
	"fmt"
	"log/slog"
	"sort"

	"addresseligibility/internal/zone"
)

// Config controls the engine. Disabled rules make every address eligible.
type Config struct {
	Enabled            bool
	MinConfidenceScore float64
}

// Candidate is the address under evaluation, reduced to the fields the
// scoring looks at.
type Candidate struct {
	City      string
	State     string
	ZipCode   string
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether both coordinates are present.
func (c Candidate) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Result is the engine's verdict for one candidate.
type Result struct {
	Eligible         bool
	Reason           string
	MatchedZoneNames []string
	ConfidenceScore  float64
}

// Engine evaluates candidates against matched zones.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an engine.
func New(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Evaluate scores the matched zones and compares the confidence against the
// configured threshold. The zone slice may contain duplicates when an
// address matched the same zone through several criteria; they are counted
// once.
func (e *Engine) Evaluate(cand Candidate, matched []*zone.Zone) Result {
	e.logger.Debug("evaluating eligibility", "matched_zones", len(matched))

	if !e.cfg.Enabled {
		return Result{
			Eligible:         true,
			Reason:           "Rules disabled - automatically eligible",
			MatchedZoneNames: zoneNames(matched),
			ConfidenceScore:  1.0,
		}
	}

	if len(matched) == 0 {
		return Result{
			Eligible: false,
			Reason:   "Address is not in any eligible service area",
		}
	}

	unique := dedupe(matched)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Priority > unique[j].Priority
	})

	confidence := e.confidenceScore(cand, unique)
	eligible := confidence >= e.cfg.MinConfidenceScore

	return Result{
		Eligible:         eligible,
		Reason:           e.reason(eligible, unique, confidence),
		MatchedZoneNames: zoneNames(unique),
		ConfidenceScore:  confidence,
	}
}

// confidenceScore computes the blended score: the average over all unique
// zones and the single best zone score contribute equally, then the result
// is clamped to [0, 1].
func (e *Engine) confidenceScore(cand Candidate, zones []*zone.Zone) float64 {
	if len(zones) == 0 {
		return 0.0
	}

	var sum, max float64
	for _, z := range zones {
		score := baseScore(cand, z)

		// Priority lifts the score by 10% per level.
		score *= 1.0 + float64(z.Priority)*0.1

		if score > max {
			max = score
		}
		sum += score
	}

	final := (sum/float64(len(zones)) + max) / 2.0
	if final > 1.0 {
		return 1.0
	}
	if final < 0.0 {
		return 0.0
	}
	return final
}

// baseScore rates one zone against the candidate. A zone whose criteria set
// does not actually contain the candidate's field scores zero even though a
// store query matched it.
func baseScore(cand Candidate, z *zone.Zone) float64 {
	switch z.Type {
	case zone.TypeZipCode:
		if z.HasZip(cand.ZipCode) {
			return 1.0
		}
	case zone.TypeCity:
		if z.HasCity(cand.City) {
			return 0.8
		}
	case zone.TypeState:
		if z.HasState(cand.State) {
			return 0.6
		}
	case zone.TypeCoordinates:
		if cand.HasCoordinates() && z.ContainsPoint(*cand.Latitude, *cand.Longitude) {
			return 0.9
		}
	case zone.TypeCustom:
		return 0.7
	}
	return 0.0
}

func (e *Engine) reason(eligible bool, zones []*zone.Zone, confidence float64) string {
	if eligible {
		return fmt.Sprintf("Address is eligible for service (Zone: %s, Confidence: %.2f%%)",
			zones[0].Name, confidence*100)
	}
	return fmt.Sprintf("Address does not meet minimum eligibility requirements (Confidence: %.2f%%, Required: %.2f%%)",
		confidence*100, e.cfg.MinConfidenceScore*100)
}

// dedupe removes repeated zones by ID, falling back to pointer identity for
// unsaved zones. Order of first appearance is preserved.
func dedupe(zones []*zone.Zone) []*zone.Zone {
	seenID := make(map[int64]struct{}, len(zones))
	seenPtr := make(map[*zone.Zone]struct{}, len(zones))

	unique := make([]*zone.Zone, 0, len(zones))
	for _, z := range zones {
		if z.ID != 0 {
			if _, ok := seenID[z.ID]; ok {
				continue
			}
			seenID[z.ID] = struct{}{}
		} else {
			if _, ok := seenPtr[z]; ok {
				continue
			}
			seenPtr[z] = struct{}{}
		}
		unique = append(unique, z)
	}
	return unique
}

func zoneNames(zones []*zone.Zone) []string {
	if len(zones) == 0 {
		return nil
	}
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.Name
	}
	return names
}
