package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/importer"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/repositories/database"
	"github.com/matryer/is"
)

func TestImportCSVIntoSqlite(t *testing.T) {
	is, ctx, store := testSetup(t)

	path := writeFile(t, "worldcities.csv", `city,city_ascii,lat,lng,country,population
Tokyo,Tokyo,35.6897,139.6922,Japan,37732000
Jakarta,Jakarta,-6.175,106.8275,Indonesia,33756000
Nowhere,Nowhere,north,0,Testland,1
`)

	report, err := runImport(ctx, store, path, "")
	is.NoErr(err)

	is.Equal(report.Imported, 2)
	is.Equal(report.Skipped, 1)

	found, err := store.FindInLatitudeBand(ctx, cities.BandQuery{MinLatitude: -90, MaxLatitude: 90, Limit: 10})
	is.NoErr(err)
	is.Equal(len(found), 2)
	is.Equal(found[0].Name, "Tokyo")
}

func TestImportJSONWithExplicitFormat(t *testing.T) {
	is, ctx, store := testSetup(t)

	path := writeFile(t, "cities.data", `[{"name":"Oslo","country":"NO","lat":"59.91273","lng":"10.74609"}]`)

	report, err := runImport(ctx, store, path, "json")
	is.NoErr(err)
	is.Equal(report.Imported, 1)
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	is, ctx, store := testSetup(t)

	path := writeFile(t, "cities.xml", `<cities/>`)

	_, err := runImport(ctx, store, path, "")
	is.True(errors.Is(err, importer.ErrUnknownFormat))
}

func testSetup(t *testing.T) (*is.I, context.Context, cities.CityStore) {
	is := is.New(t)
	ctx := context.Background()

	store, err := database.NewCityRepository(ctx, database.NewSQLiteConnector(ctx, "file::memory:"))
	is.NoErr(err)
	t.Cleanup(func() { store.Close() })

	return is, ctx, store
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
