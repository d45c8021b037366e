// Package lookup resolves raw address text into structured components,
// front-loading a preloaded address book and a cache tier before the
// external geocoder is consulted.
package lookup

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// PreloadedAddress is one curated address with a known verdict. These
// bypass the rule engine entirely.
type PreloadedAddress struct {
	Street   string `yaml:"street"`
	City     string `yaml:"city"`
	State    string `yaml:"state"`
	Zip      string `yaml:"zip"`
	County   string `yaml:"county"`
	Country  string `yaml:"country"`
	Eligible *bool  `yaml:"eligible"`
}

// HasVerdict reports whether the entry carries an eligibility verdict.
// Entries without one are lookup data only and never short-circuit a check.
func (p PreloadedAddress) HasVerdict() bool {
	return p.Eligible != nil
}

// IsEligible reports the verdict. False when no verdict is present.
func (p PreloadedAddress) IsEligible() bool {
	return p.Eligible != nil && *p.Eligible
}

type preloadedFile struct {
	Addresses []PreloadedAddress `yaml:"addresses"`
}

// PreloadedDirectory indexes curated addresses by normalized street text.
// The index is swapped atomically so Reload never blocks readers.
type PreloadedDirectory struct {
	index  atomic.Pointer[map[string]PreloadedAddress]
	logger *slog.Logger
}

// NewPreloadedDirectory builds a directory over an in-memory address set.
func NewPreloadedDirectory(addresses []PreloadedAddress, logger *slog.Logger) *PreloadedDirectory {
	d := &PreloadedDirectory{logger: logger}
	d.swap(addresses)
	return d
}

// LoadPreloadedDirectory reads the curated address file. A missing file is
// not an error: the directory starts empty and every lookup misses.
func LoadPreloadedDirectory(path string, logger *slog.Logger) (*PreloadedDirectory, error) {
	d := &PreloadedDirectory{logger: logger}
	d.swap(nil)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn("preloaded address file not found, directory is empty", "file", path)
		return d, nil
	}
	if err := d.Reload(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload re-reads the address file and atomically replaces the index.
// On error the previous index stays in place.
func (d *PreloadedDirectory) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preloaded addresses %s: %w", path, err)
	}

	var file preloadedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unmarshal preloaded addresses %s: %w", path, err)
	}

	d.swap(file.Addresses)
	d.logger.Info("loaded preloaded addresses", "count", len(file.Addresses), "file", path)
	return nil
}

// Lookup finds a curated address by street text, case-insensitively.
func (d *PreloadedDirectory) Lookup(street string) (PreloadedAddress, bool) {
	idx := *d.index.Load()
	addr, ok := idx[normalizeStreet(street)]
	return addr, ok
}

// Len returns the number of curated addresses currently indexed.
func (d *PreloadedDirectory) Len() int {
	return len(*d.index.Load())
}

func (d *PreloadedDirectory) swap(addresses []PreloadedAddress) {
	idx := make(map[string]PreloadedAddress, len(addresses))
	for _, addr := range addresses {
		idx[normalizeStreet(addr.Street)] = addr
	}
	d.index.Store(&idx)
}

func normalizeStreet(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
