package main

import (
	"context"
	"flag"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/importer"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/config"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/rs/zerolog"
)

const serviceName string = "city-import"

func main() {
	_ = godotenv.Load()

	var file, format string
	flag.StringVar(&file, "file", config.EnvOrDef(os.Getenv, "CITIES_FILE", "worldcities.csv"), "csv or json file with cities to import")
	flag.StringVar(&format, "format", "", "input format, csv or json (default: from the file extension)")
	flag.Parse()

	ctx, logger := logging.NewLogger(context.Background(), serviceName, version(), config.EnvOrDef(os.Getenv, "LOG_LEVEL", "info"))

	storageCfg, err := config.ResolveStorage(os.Getenv)
	exitIf(err, logger, "invalid storage configuration")
	storageCfg.Migrate = true

	store, err := config.OpenStore(ctx, storageCfg)
	exitIf(err, logger, "could not connect to database")
	defer store.Close()

	report, err := runImport(ctx, store, file, format)
	exitIf(err, logger, "import failed")

	logger.Info().
		Str("backend", string(storageCfg.Backend)).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Msgf("imported %d cities", report.Imported)
}

func runImport(ctx context.Context, store cities.CityStore, path, explicitFormat string) (importer.Report, error) {
	format, err := importer.ResolveFormat(path, explicitFormat)
	if err != nil {
		return importer.Report{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return importer.Report{}, err
	}
	defer f.Close()

	return importer.Import(ctx, store, f, format)
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Fatal().Err(err).Msg(msg)
	}
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, s := range buildInfo.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}

	return "unknown"
}
