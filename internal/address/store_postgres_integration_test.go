//go:build integration

package address_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"addresseligibility/internal/address"
	"addresseligibility/pkg/sentinel"
	"addresseligibility/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *address.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = address.NewPostgresStore(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "addresses"))
}

func (s *PostgresStoreSuite) TestSaveUpsertsByIdentity() {
	ctx := context.Background()

	first, err := s.store.Save(ctx, &address.Address{
		StreetAddress: "123 Main St", City: "Alameda", State: "CA", ZipCode: "94501", Country: "USA",
	})
	s.Require().NoError(err)
	s.NotZero(first.ID)
	s.False(first.HasVerdict())

	second, err := s.store.Save(ctx, &address.Address{
		StreetAddress: "123 Main St", City: "Alameda", State: "CA", ZipCode: "94501", Country: "USA",
		IsEligible: boolPtr(true), EligibilityReason: "in service area",
	})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Require().True(second.HasVerdict())
	s.True(*second.IsEligible)
	s.Equal("in service area", second.EligibilityReason)
}

func (s *PostgresStoreSuite) TestFindByIdentityIsCaseInsensitive() {
	ctx := context.Background()

	_, err := s.store.Save(ctx, &address.Address{
		StreetAddress: "123 Main St", City: "Alameda", State: "CA", ZipCode: "94501", Country: "USA",
	})
	s.Require().NoError(err)

	found, err := s.store.FindByIdentity(ctx, "123 MAIN ST", "alameda", "ca", "94501")
	s.Require().NoError(err)
	s.Equal("123 Main St", found.StreetAddress)

	_, err = s.store.FindByIdentity(ctx, "1 Nowhere", "Fresno", "CA", "93701")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestQueries() {
	ctx := context.Background()

	seed := []*address.Address{
		{StreetAddress: "1 First St", City: "Alameda", State: "CA", ZipCode: "94501", Country: "USA",
			Latitude: floatPtr(37.77), Longitude: floatPtr(-122.27), IsEligible: boolPtr(true)},
		{StreetAddress: "2 Second St", City: "Alameda", State: "CA", ZipCode: "94502", Country: "USA",
			IsEligible: boolPtr(false)},
		{StreetAddress: "3 Third St", City: "Miami", State: "FL", ZipCode: "33101", Country: "USA"},
	}
	for _, a := range seed {
		_, err := s.store.Save(ctx, a)
		s.Require().NoError(err)
	}

	byZip, err := s.store.FindByZip(ctx, "94501")
	s.Require().NoError(err)
	s.Require().Len(byZip, 1)
	s.Equal("1 First St", byZip[0].StreetAddress)

	byCity, err := s.store.FindByCityState(ctx, "alameda", "ca")
	s.Require().NoError(err)
	s.Len(byCity, 2)

	eligible, err := s.store.FindByEligibility(ctx, true)
	s.Require().NoError(err)
	s.Require().Len(eligible, 1)
	s.Equal("1 First St", eligible[0].StreetAddress)

	ineligible, err := s.store.FindByEligibility(ctx, false)
	s.Require().NoError(err)
	s.Len(ineligible, 1)

	inBox, err := s.store.FindByCoordinateRange(ctx, 37.0, 38.0, -123.0, -122.0)
	s.Require().NoError(err)
	s.Require().Len(inBox, 1)
	s.Equal("1 First St", inBox[0].StreetAddress)
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
