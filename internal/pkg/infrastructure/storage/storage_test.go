package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/matryer/is"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/samber/lo"
)

func TestFindInLatitudeBand(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM cities WHERE latitude >= \$1 AND latitude <= \$2 AND population >= \$3 ORDER BY population IS NULL, population DESC, name COLLATE "C" ASC LIMIT 500`).
		WithArgs(50.5, 52.5, int64(100000)).
		WillReturnRows(mock.NewRows(cityColumns).
			AddRow(int64(1), "London", "United Kingdom", 51.5072, -0.1275, lo.ToPtr(int64(11262000)), lo.ToPtr("Europe/London"), createdAt).
			AddRow(int64(2), "Bristol", "United Kingdom", 51.4536, -2.5975, lo.ToPtr(int64(617280)), (*string)(nil), createdAt))

	found, err := s.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 50.5, MaxLatitude: 52.5, MinPopulation: 100000, Limit: 500})
	is.NoErr(err)

	is.Equal(len(found), 2)
	is.Equal(found[0].ID, int64(1))
	is.Equal(found[0].Name, "London")
	is.Equal(*found[0].Population, int64(11262000))
	is.Equal(*found[0].Timezone, "Europe/London")
	is.Equal(found[0].CreatedAt, createdAt)
	is.Equal(found[1].Timezone, nil)

	is.NoErr(mock.ExpectationsWereMet())
}

func TestFindInLatitudeBandWithoutPopulationFloor(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectQuery(`FROM cities WHERE latitude >= \$1 AND latitude <= \$2 ORDER BY`).
		WithArgs(10.0, 12.0).
		WillReturnRows(mock.NewRows(cityColumns).
			AddRow(int64(9), "Nowhere", "Testland", 11.0, 5.0, (*int64)(nil), (*string)(nil), time.Now()))

	found, err := s.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 10, MaxLatitude: 12, Limit: 50})
	is.NoErr(err)

	is.Equal(len(found), 1)
	is.Equal(found[0].Population, nil)

	is.NoErr(mock.ExpectationsWereMet())
}

func TestFindInLatitudeBandFailsOnUnexpectedColumns(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	columns := append(append([]string{}, cityColumns...), "elevation")

	mock.ExpectQuery(`FROM cities`).
		WithArgs(10.0, 12.0, int64(100000)).
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(9), "Nowhere", "Testland", 11.0, 5.0, lo.ToPtr(int64(200000)), (*string)(nil), time.Now(), 12.0))

	_, err := s.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 10, MaxLatitude: 12, MinPopulation: 100000, Limit: 50})
	is.True(errors.Is(err, cities.ErrBackendUnavailable))
}

func TestFindInLatitudeBandWrapsQueryErrors(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectQuery(`FROM cities`).
		WithArgs(10.0, 12.0, int64(100000)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := s.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: 10, MaxLatitude: 12, MinPopulation: 100000, Limit: 50})
	is.True(errors.Is(err, cities.ErrBackendUnavailable))

	is.NoErr(mock.ExpectationsWereMet())
}

func TestSearchEscapesWildcards(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectQuery(`WHERE \(name ILIKE \$1 OR country ILIKE \$2\) ORDER BY .* LIMIT 20`).
		WithArgs(`%50\%\_%`, `%50\%\_%`).
		WillReturnRows(mock.NewRows(cityColumns))

	found, err := s.Search(ctx, "50%_", 20)
	is.NoErr(err)
	is.Equal(len(found), 0)

	is.NoErr(mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectQuery(`FROM cities WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows(cityColumns).
			AddRow(int64(7), "Oslo", "Norway", 59.9133, 10.7389, lo.ToPtr(int64(1082575)), lo.ToPtr("Europe/Oslo"), time.Now()))

	city, err := s.GetByID(ctx, 7)
	is.NoErr(err)
	is.Equal(city.Name, "Oslo")

	is.NoErr(mock.ExpectationsWereMet())
}

func TestGetByIDReturnsNotFound(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectQuery(`FROM cities WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(mock.NewRows(cityColumns))

	_, err := s.GetByID(ctx, 8)
	is.True(errors.Is(err, cities.ErrCityNotFound))

	is.NoErr(mock.ExpectationsWereMet())
}

func TestReplaceAll(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cities`).WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(pgx.Identifier{"cities"}, insertColumns).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := s.ReplaceAll(ctx, []types.City{
		{Name: "Oslo", Country: "Norway", Latitude: 59.9133, Longitude: 10.7389},
		{Name: "Bergen", Country: "Norway", Latitude: 60.3894, Longitude: 5.33},
	})
	is.NoErr(err)
	is.Equal(n, 2)

	is.NoErr(mock.ExpectationsWereMet())
}

func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	is, ctx, mock, s := testSetup(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM cities`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err := s.ReplaceAll(ctx, []types.City{{Name: "Oslo", Country: "Norway"}})
	is.True(errors.Is(err, cities.ErrBackendUnavailable))

	is.NoErr(mock.ExpectationsWereMet())
}

func TestPoolConfigUsesAuthTokenAsPassword(t *testing.T) {
	is := is.New(t)

	cfg, err := NewConfig("postgres://explorer@db.example.com:5432/cities", "s3cr3t").PoolConfig()
	is.NoErr(err)

	is.Equal(cfg.ConnConfig.Password, "s3cr3t")
	is.Equal(cfg.ConnConfig.Host, "db.example.com")
	is.Equal(cfg.ConnConfig.Database, "cities")
}

func TestPoolConfigRequiresCredentials(t *testing.T) {
	is := is.New(t)

	_, err := NewConfig("postgres://explorer@db.example.com:5432/cities", "").PoolConfig()
	is.True(errors.Is(err, cities.ErrConfiguration))

	cfg, err := NewConfig("postgres://explorer:pw@db.example.com:5432/cities", "").PoolConfig()
	is.NoErr(err)
	is.Equal(cfg.ConnConfig.Password, "pw")
}

func testSetup(t *testing.T) (*is.I, context.Context, pgxmock.PgxPoolIface, *Storage) {
	is := is.New(t)
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	is.NoErr(err)

	return is, ctx, mock, NewWithPool(mock)
}
