package property

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"addresseligibility/internal/geocode"
	"addresseligibility/internal/region"
)

func testService() *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := region.NewDirectory(map[string]map[string][]string{
		"california": {
			"alameda": {"alameda", "oakland", "berkeley"},
		},
	})
	return NewService(region.NewService(directory, logger), logger)
}

func TestCheckEligibility_Eligible(t *testing.T) {
	comps := geocode.Components{
		geocode.KeyCity:   "Alameda",
		geocode.KeyCounty: "Alameda",
		geocode.KeyState:  "California",
	}

	result := testService().CheckEligibility(context.Background(), comps)

	assert.Equal(t, MessageEligible, result.Message)
	assert.Equal(t, comps, result.FormattedAddress)
}

func TestCheckEligibility_NotEligible(t *testing.T) {
	result := testService().CheckEligibility(context.Background(), geocode.Components{
		geocode.KeyCity:   "Fresno",
		geocode.KeyCounty: "Fresno",
		geocode.KeyState:  "California",
	})

	assert.Equal(t, MessageNotEligible, result.Message)
	assert.Nil(t, result.FormattedAddress)
}

func TestCheckEligibility_NotFound(t *testing.T) {
	result := testService().CheckEligibility(context.Background(), nil)
	assert.Equal(t, MessageNotFound, result.Message)
}

func TestCheckEligibility_StateAbbreviation(t *testing.T) {
	result := testService().CheckEligibility(context.Background(), geocode.Components{
		geocode.KeyCity:   "Oakland",
		geocode.KeyCounty: "Alameda",
		geocode.KeyState:  "CA",
	})

	assert.Equal(t, MessageEligible, result.Message)
}

func TestCheckWithReason(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	eligible := svc.CheckWithReason(ctx, geocode.Components{
		geocode.KeyCity:   "Berkeley",
		geocode.KeyCounty: "Alameda",
		geocode.KeyState:  "California",
	})
	assert.Equal(t, MessageEligible, eligible.Message)
	assert.Contains(t, eligible.Reason, "eligible region")

	unlisted := svc.CheckWithReason(ctx, geocode.Components{
		geocode.KeyCity:   "Fresno",
		geocode.KeyCounty: "Fresno",
		geocode.KeyState:  "California",
	})
	assert.Equal(t, MessageNotEligible, unlisted.Message)
	assert.Contains(t, unlisted.Reason, "not in the list of eligible cities")

	noState := svc.CheckWithReason(ctx, geocode.Components{
		geocode.KeyCity:  "Portland",
		geocode.KeyState: "Oregon",
	})
	assert.Equal(t, MessageNotEligible, noState.Message)
	assert.Contains(t, noState.Reason, "does not have any eligible regions configured")

	missing := svc.CheckWithReason(ctx, nil)
	assert.Equal(t, MessageNotFound, missing.Message)
	assert.Equal(t, "Address information is missing or incomplete", missing.Reason)
}
