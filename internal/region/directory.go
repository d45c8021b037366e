package region

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Directory is the static state -> county -> eligible-city table, populated
// once at startup and read-only afterwards. All query methods answer false or
// empty on missing levels instead of failing.
type Directory struct {
	states map[string]stateEntry
}

type stateEntry struct {
	counties map[string][]string
}

// directoryFile is the YAML shape:
//
//	states:
//	  california:
//	    counties:
//	      alameda:
//	        cities: [Alameda, Oakland]
type directoryFile struct {
	States map[string]struct {
		Counties map[string]struct {
			Cities []string `yaml:"cities"`
		} `yaml:"counties"`
	} `yaml:"states"`
}

// LoadDirectory reads the eligible-regions YAML file. An empty or missing
// states map is not an error; the caller is expected to warn and continue,
// with every check resolving to "not eligible".
func LoadDirectory(path string, logger *slog.Logger) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file %s: %w", path, err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal regions yaml from %s: %w", path, err)
	}

	d := NewDirectory(nil)
	for state, sc := range file.States {
		counties := make(map[string][]string, len(sc.Counties))
		for county, cc := range sc.Counties {
			counties[normalizeKey(county)] = cc.Cities
		}
		d.states[normalizeKey(state)] = stateEntry{counties: counties}
	}

	if len(d.states) == 0 {
		logger.Warn("no eligible regions configured, every check will resolve to not eligible",
			"file", path)
	} else {
		total := 0
		for _, sc := range d.states {
			for _, cities := range sc.counties {
				total += len(cities)
			}
		}
		logger.Info("loaded eligible regions",
			"states", len(d.states),
			"cities", total,
		)
	}

	return d, nil
}

// NewDirectory builds a directory from an in-memory table, normalizing keys
// the same way the YAML loader does. Used by tests and seeding.
func NewDirectory(states map[string]map[string][]string) *Directory {
	d := &Directory{states: make(map[string]stateEntry, len(states))}
	for state, counties := range states {
		entry := stateEntry{counties: make(map[string][]string, len(counties))}
		for county, cities := range counties {
			entry.counties[normalizeKey(county)] = cities
		}
		d.states[normalizeKey(state)] = entry
	}
	return d
}

// IsCityEligible reports whether the city is listed under the given state and
// county. False on any missing level.
func (d *Directory) IsCityEligible(state, county, city string) bool {
	if state == "" || county == "" || city == "" {
		return false
	}

	sc, ok := d.states[normalizeKey(state)]
	if !ok {
		return false
	}
	cities, ok := sc.counties[normalizeKey(county)]
	if !ok {
		return false
	}

	want := normalizeCity(city)
	for _, c := range cities {
		if normalizeCity(c) == want {
			return true
		}
	}
	return false
}

// IsCityEligibleInState reports whether the city is listed under any county
// of the given state.
func (d *Directory) IsCityEligibleInState(state, city string) bool {
	if state == "" || city == "" {
		return false
	}

	sc, ok := d.states[normalizeKey(state)]
	if !ok {
		return false
	}

	want := normalizeCity(city)
	for _, cities := range sc.counties {
		for _, c := range cities {
			if normalizeCity(c) == want {
				return true
			}
		}
	}
	return false
}

// EligibleCitiesInCounty returns the configured city list for a county.
// Empty (never nil-error) when the state or county is absent.
func (d *Directory) EligibleCitiesInCounty(state, county string) []string {
	sc, ok := d.states[normalizeKey(state)]
	if !ok {
		return []string{}
	}
	cities, ok := sc.counties[normalizeKey(county)]
	if !ok {
		return []string{}
	}
	return append([]string{}, cities...)
}

// EligibleStates returns every configured state key, sorted.
func (d *Directory) EligibleStates() []string {
	states := make([]string, 0, len(d.states))
	for s := range d.states {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// EligibleCountiesInState returns the county keys configured for a state,
// sorted. Empty when the state is absent.
func (d *Directory) EligibleCountiesInState(state string) []string {
	sc, ok := d.states[normalizeKey(state)]
	if !ok {
		return []string{}
	}
	counties := make([]string, 0, len(sc.counties))
	for c := range sc.counties {
		counties = append(counties, c)
	}
	sort.Strings(counties)
	return counties
}

// Empty reports whether no regions are configured.
func (d *Directory) Empty() bool {
	return len(d.states) == 0
}

// normalizeKey canonicalizes state/county keys: 2-character keys are treated
// as abbreviation codes and uppercased, longer names are lowercased.
func normalizeKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if len(trimmed) == 2 {
		return strings.ToUpper(trimmed)
	}
	return strings.ToLower(trimmed)
}

// normalizeCity canonicalizes city names for comparison.
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
