package region

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

func testDirectory() *Directory {
	return NewDirectory(map[string]map[string][]string{
		"california": {
			"alameda":       {"Alameda", "Oakland", "Berkeley"},
			"san francisco": {"San Francisco"},
		},
		"florida": {
			"miami-dade": {"Miami", "Hialeah"},
		},
	})
}

func TestDirectory_IsCityEligible(t *testing.T) {
	d := testDirectory()

	assert.True(t, d.IsCityEligible("california", "alameda", "Oakland"))
	assert.True(t, d.IsCityEligible("California", "Alameda", "oakland"))
	assert.True(t, d.IsCityEligible("california", "alameda", "  Berkeley  "))

	assert.False(t, d.IsCityEligible("california", "alameda", "Fresno"))
	assert.False(t, d.IsCityEligible("california", "fresno", "Oakland"))
	assert.False(t, d.IsCityEligible("oregon", "multnomah", "Portland"))
	assert.False(t, d.IsCityEligible("", "alameda", "Oakland"))
	assert.False(t, d.IsCityEligible("california", "", "Oakland"))
	assert.False(t, d.IsCityEligible("california", "alameda", ""))
}

func TestDirectory_IsCityEligibleInState(t *testing.T) {
	d := testDirectory()

	// County is ignored: any county of the state listing the city counts.
	assert.True(t, d.IsCityEligibleInState("california", "San Francisco"))
	assert.True(t, d.IsCityEligibleInState("florida", "hialeah"))
	assert.False(t, d.IsCityEligibleInState("california", "Miami"))
	assert.False(t, d.IsCityEligibleInState("nevada", "Reno"))
}

func TestDirectory_CountyAndStateAgreement(t *testing.T) {
	d := testDirectory()

	// Whenever the county-scoped check passes, the state-wide check must too.
	for _, city := range []string{"Alameda", "Oakland", "Berkeley"} {
		require.True(t, d.IsCityEligible("california", "alameda", city))
		assert.True(t, d.IsCityEligibleInState("california", city))
	}
}

func TestDirectory_Accessors(t *testing.T) {
	d := testDirectory()

	assert.Equal(t, []string{"california", "florida"}, d.EligibleStates())
	assert.Equal(t, []string{"alameda", "san francisco"}, d.EligibleCountiesInState("california"))
	assert.Equal(t, []string{"Miami", "Hialeah"}, d.EligibleCitiesInCounty("florida", "miami-dade"))

	// Absent levels return empty collections, never nil errors.
	assert.Empty(t, d.EligibleCountiesInState("nevada"))
	assert.Empty(t, d.EligibleCitiesInCounty("california", "fresno"))
}

func TestNormalizeKey(t *testing.T) {
	// 2-character keys are abbreviation codes, everything else lowercases.
	assert.Equal(t, "CA", normalizeKey("ca"))
	assert.Equal(t, "CA", normalizeKey("CA"))
	assert.Equal(t, "CA", normalizeKey("Ca"))
	assert.Equal(t, "california", normalizeKey("California"))
	assert.Equal(t, "miami-dade", normalizeKey("Miami-Dade"))

	// Idempotent.
	for _, key := range []string{"ca", "California", "Miami-Dade"} {
		once := normalizeKey(key)
		assert.Equal(t, once, normalizeKey(once))
	}
}

func TestLoadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	content := `states:
  california:
    counties:
      alameda:
        cities:
          - Alameda
          - Oakland
  FL:
    counties:
      miami-dade:
        cities:
          - Miami
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	d, err := LoadDirectory(path, testLogger())
	require.NoError(t, err)

	assert.False(t, d.Empty())
	assert.True(t, d.IsCityEligible("california", "alameda", "Oakland"))
	assert.True(t, d.IsCityEligible("fl", "miami-dade", "Miami"))
}

func TestLoadDirectory_EmptyFileIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("states: {}\n"), 0o600))

	d, err := LoadDirectory(path, testLogger())
	require.NoError(t, err)
	assert.True(t, d.Empty())
	assert.False(t, d.IsCityEligible("california", "alameda", "Oakland"))
}
