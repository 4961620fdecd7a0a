package database

import (
	"context"
	"errors"
	"testing"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/matryer/is"
	"github.com/samber/lo"
)

func TestFindInLatitudeBandAppliesBandAndPopulationFloor(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 50.5, MaxLatitude: 52.5, MinPopulation: 100000, Limit: 500})
	is.NoErr(err)

	is.Equal(names(found), []string{"London", "Bristol", "Luton"})
}

func TestFindInLatitudeBandIsInclusiveAtBothEnds(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 52.5, MaxLatitude: 52.5, Limit: 500})
	is.NoErr(err)
	is.Equal(names(found), []string{"Oxford"})

	found, err = r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 50.5, MaxLatitude: 50.5, Limit: 500})
	is.NoErr(err)
	is.Equal(names(found), []string{"Abingdon"})
}

func TestFindInLatitudeBandWithoutFloorKeepsMissingPopulationLast(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 50.5, MaxLatitude: 52.5, Limit: 500})
	is.NoErr(err)

	is.Equal(names(found), []string{"London", "Bristol", "Luton", "Abingdon", "Oxford", "Nowhere"})
}

func TestFindInLatitudeBandRespectsLimit(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: -90, MaxLatitude: 90, Limit: 2})
	is.NoErr(err)

	is.Equal(names(found), []string{"Tokyo", "London"})
}

func TestFindInLatitudeBandReturnsEmptyBand(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: -80, MaxLatitude: -70, MinPopulation: 100000, Limit: 500})
	is.NoErr(err)
	is.Equal(len(found), 0)
}

func TestFindInLatitudeBandMapsAllFields(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 35, MaxLatitude: 36, Limit: 500})
	is.NoErr(err)
	is.Equal(len(found), 1)

	tokyo := found[0]
	is.True(tokyo.ID > 0)
	is.Equal(tokyo.Country, "Japan")
	is.Equal(tokyo.Longitude, 139.6917)
	is.Equal(*tokyo.Population, int64(37400068))
	is.Equal(*tokyo.Timezone, "Asia/Tokyo")
	is.True(!tokyo.CreatedAt.IsZero())
}

func TestSearchMatchesNameAndCountryIgnoringCase(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.Search(ctx, "LON", 20)
	is.NoErr(err)
	is.Equal(names(found), []string{"London"})

	found, err = r.Search(ctx, "japan", 20)
	is.NoErr(err)
	is.Equal(names(found), []string{"Tokyo"})
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.Search(ctx, "%_", 20)
	is.NoErr(err)
	is.Equal(len(found), 0)
}

func TestGetByID(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 35, MaxLatitude: 36, Limit: 1})
	is.NoErr(err)

	city, err := r.GetByID(ctx, found[0].ID)
	is.NoErr(err)
	is.Equal(city.Name, "Tokyo")
}

func TestGetByIDReturnsNotFound(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	_, err := r.GetByID(ctx, 999999)
	is.True(errors.Is(err, cities.ErrCityNotFound))
}

func TestReplaceAllRemovesPreviousRows(t *testing.T) {
	is, ctx, r := testSetupCityRepository(t)

	n, err := r.ReplaceAll(ctx, []types.City{
		{Name: "Reykjavik", Country: "Iceland", Latitude: 64.1466, Longitude: -21.9426, Population: lo.ToPtr(int64(135688))},
	})
	is.NoErr(err)
	is.Equal(n, 1)

	found, err := r.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: -90, MaxLatitude: 90, Limit: 500})
	is.NoErr(err)
	is.Equal(names(found), []string{"Reykjavik"})
}

func TestNearbyQueryOverSqlite(t *testing.T) {
	is, ctx, r := testSetup(t)

	_, err := r.ReplaceAll(ctx, []types.City{
		{Name: "A", Country: "X", Latitude: 51.0, Longitude: -0.5, Population: lo.ToPtr(int64(500000))},
		{Name: "B", Country: "X", Latitude: 51.0, Longitude: 10.0, Population: lo.ToPtr(int64(100000))},
		{Name: "C", Country: "X", Latitude: 60.0, Longitude: 0.0, Population: lo.ToPtr(int64(9000000))},
	})
	is.NoErr(err)

	svc := cities.New(r, cities.DefaultSettings())

	result, err := svc.FindNearbyLatitudeCities(ctx, cities.NearbyQuery{Latitude: 51.5, Longitude: 0.0, Tolerance: 1.0, Limit: 50})
	is.NoErr(err)

	is.Equal(names(result.Cities), []string{"B"})
	is.Equal(result.Total, 1)
}

func testSetupCityRepository(t *testing.T) (*is.I, context.Context, cities.CityStore) {
	is, ctx, r := testSetup(t)

	_, err := r.ReplaceAll(ctx, []types.City{
		{Name: "London", Country: "United Kingdom", Latitude: 51.5072, Longitude: -0.1275, Population: lo.ToPtr(int64(11262000)), Timezone: lo.ToPtr("Europe/London")},
		{Name: "Bristol", Country: "United Kingdom", Latitude: 51.4536, Longitude: -2.5975, Population: lo.ToPtr(int64(617280))},
		{Name: "Luton", Country: "United Kingdom", Latitude: 51.8783, Longitude: -0.4147, Population: lo.ToPtr(int64(213052))},
		{Name: "Oxford", Country: "United Kingdom", Latitude: 52.5, Longitude: -1.2578, Population: lo.ToPtr(int64(50000))},
		{Name: "Abingdon", Country: "United Kingdom", Latitude: 50.5, Longitude: -1.2833, Population: lo.ToPtr(int64(50000))},
		{Name: "Nowhere", Country: "United Kingdom", Latitude: 51.0, Longitude: 0.0},
		{Name: "Tokyo", Country: "Japan", Latitude: 35.6897, Longitude: 139.6917, Population: lo.ToPtr(int64(37400068)), Timezone: lo.ToPtr("Asia/Tokyo")},
	})
	is.NoErr(err)

	return is, ctx, r
}

func testSetup(t *testing.T) (*is.I, context.Context, cities.CityStore) {
	is := is.New(t)
	ctx := context.Background()

	r, err := NewCityRepository(ctx, NewSQLiteConnector(ctx, "file::memory:"))
	is.NoErr(err)

	t.Cleanup(func() { r.Close() })

	return is, ctx, r
}

func names(found []types.City) []string {
	return lo.Map(found, func(c types.City, _ int) string { return c.Name })
}
