package lookup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

func TestPreloadedDirectory_Lookup(t *testing.T) {
	dir := NewPreloadedDirectory([]PreloadedAddress{
		{Street: "212 Encounter Bay", City: "Alameda", State: "CA", Zip: "90255", County: "Alameda", Eligible: boolPtr(true)},
		{Street: "99 Nowhere Rd", City: "Fresno", State: "CA", County: "Fresno", Eligible: boolPtr(false)},
	}, testLogger())

	addr, ok := dir.Lookup("212 encounter bay")
	require.True(t, ok)
	assert.Equal(t, "Alameda", addr.City)
	assert.True(t, addr.IsEligible())

	addr, ok = dir.Lookup("  212 ENCOUNTER BAY  ")
	require.True(t, ok)
	assert.Equal(t, "Alameda", addr.County)

	addr, ok = dir.Lookup("99 nowhere rd")
	require.True(t, ok)
	assert.False(t, addr.IsEligible())

	_, ok = dir.Lookup("1 unknown way")
	assert.False(t, ok)
}

func TestPreloadedAddress_Verdict(t *testing.T) {
	assert.False(t, PreloadedAddress{Street: "1 Main St"}.HasVerdict())
	assert.False(t, PreloadedAddress{Street: "1 Main St"}.IsEligible())
	assert.True(t, PreloadedAddress{Street: "1 Main St", Eligible: boolPtr(true)}.HasVerdict())
}

func TestLoadPreloadedDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preloaded.yaml")
	content := `addresses:
  - street: "212 Encounter Bay"
    city: Alameda
    state: CA
    zip: "90255"
    county: Alameda
    eligible: true
  - street: "500 Sunset Blvd"
    city: Miami
    state: FL
    county: Miami-Dade
    eligible: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	dir, err := LoadPreloadedDirectory(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, dir.Len())

	addr, ok := dir.Lookup("500 sunset blvd")
	require.True(t, ok)
	assert.False(t, addr.IsEligible())
	assert.Equal(t, "Miami-Dade", addr.County)
}

func TestLoadPreloadedDirectory_MissingFile(t *testing.T) {
	dir, err := LoadPreloadedDirectory(filepath.Join(t.TempDir(), "absent.yaml"), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, dir.Len())

	_, ok := dir.Lookup("anything")
	assert.False(t, ok)
}

func TestPreloadedDirectory_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preloaded.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addresses:\n  - street: 1 First St\n"), 0o600))

	dir, err := LoadPreloadedDirectory(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, dir.Len())

	require.NoError(t, os.WriteFile(path, []byte("addresses:\n  - street: 1 First St\n  - street: 2 Second St\n"), 0o600))
	require.NoError(t, dir.Reload(path))
	assert.Equal(t, 2, dir.Len())

	// Broken file keeps the previous index.
	require.NoError(t, os.WriteFile(path, []byte("addresses: {not valid"), 0o600))
	assert.Error(t, dir.Reload(path))
	assert.Equal(t, 2, dir.Len())
}
