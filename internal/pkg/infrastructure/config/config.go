package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/repositories/database"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/storage"
)

type Backend string

const (
	BackendLocal  Backend = "local"
	BackendHosted Backend = "hosted"
)

// Getenv has the signature of os.Getenv so that tests can provide their
// own environment.
type Getenv func(key string) string

func EnvOrDef(getenv Getenv, key, def string) string {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		return value
	}
	return def
}

type StorageConfig struct {
	Backend     Backend
	DatabaseURL string
	AuthToken   string
	LocalDriver string
	LocalPath   string
	Postgres    database.ConnectorConfig
	Migrate     bool
}

// ResolveBackend decides which storage backend to use. An explicit
// STORAGE_BACKEND wins, otherwise the presence of DATABASE_URL selects the
// hosted backend.
func ResolveBackend(getenv Getenv) (Backend, error) {
	switch strings.ToLower(EnvOrDef(getenv, "STORAGE_BACKEND", "")) {
	case "":
		if EnvOrDef(getenv, "DATABASE_URL", "") != "" {
			return BackendHosted, nil
		}
		return BackendLocal, nil
	case string(BackendLocal):
		return BackendLocal, nil
	case string(BackendHosted):
		return BackendHosted, nil
	default:
		return "", fmt.Errorf("%w: unknown storage backend %q", cities.ErrConfiguration, getenv("STORAGE_BACKEND"))
	}
}

func ResolveStorage(getenv Getenv) (StorageConfig, error) {
	backend, err := ResolveBackend(getenv)
	if err != nil {
		return StorageConfig{}, err
	}

	cfg := StorageConfig{
		Backend:     backend,
		DatabaseURL: EnvOrDef(getenv, "DATABASE_URL", ""),
		AuthToken:   EnvOrDef(getenv, "DATABASE_AUTH_TOKEN", ""),
		LocalDriver: strings.ToLower(EnvOrDef(getenv, "LOCAL_DATABASE_DRIVER", "sqlite")),
		LocalPath:   EnvOrDef(getenv, "LOCAL_DATABASE_PATH", "cities.db"),
		Postgres: database.ConnectorConfig{
			Host:     EnvOrDef(getenv, "POSTGRES_HOST", "localhost"),
			Username: EnvOrDef(getenv, "POSTGRES_USER", "postgres"),
			DbName:   EnvOrDef(getenv, "POSTGRES_DBNAME", "cities"),
			Password: EnvOrDef(getenv, "POSTGRES_PASSWORD", ""),
			SslMode:  EnvOrDef(getenv, "POSTGRES_SSLMODE", "disable"),
		},
		Migrate: EnvOrDef(getenv, "RUN_MIGRATIONS", "true") == "true",
	}

	switch cfg.Backend {
	case BackendHosted:
		if cfg.DatabaseURL == "" {
			return StorageConfig{}, fmt.Errorf("%w: hosted backend requires DATABASE_URL", cities.ErrConfiguration)
		}
		if _, err := storage.NewConfig(cfg.DatabaseURL, cfg.AuthToken).PoolConfig(); err != nil {
			return StorageConfig{}, err
		}
	case BackendLocal:
		if cfg.LocalDriver != "sqlite" && cfg.LocalDriver != "postgres" {
			return StorageConfig{}, fmt.Errorf("%w: unknown local database driver %q", cities.ErrConfiguration, cfg.LocalDriver)
		}
	}

	return cfg, nil
}

// OpenStore connects to the configured backend. The hosted backend has its
// schema migrated first when cfg.Migrate is set, the local one is always
// auto migrated.
func OpenStore(ctx context.Context, cfg StorageConfig) (cities.CityStore, error) {
	log := logging.GetLoggerFromContext(ctx)

	if cfg.Backend == BackendHosted {
		pool, err := storage.NewPool(ctx, storage.NewConfig(cfg.DatabaseURL, cfg.AuthToken))
		if err != nil {
			return nil, err
		}

		if cfg.Migrate {
			if err = storage.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}

		log.Info().Str("backend", string(cfg.Backend)).Msg("connected to hosted database")

		return storage.NewWithPool(pool), nil
	}

	connect := database.NewSQLiteConnector(ctx, cfg.LocalPath)
	if cfg.LocalDriver == "postgres" {
		connect = database.NewPostgreSQLConnector(ctx, cfg.Postgres)
	}

	return database.NewCityRepository(ctx, connect)
}

// LoadSettings starts from the defaults, applies the yaml file named by
// QUERY_CONFIG_FILE and then the individual environment overrides.
func LoadSettings(getenv Getenv) (cities.Settings, error) {
	settings := cities.DefaultSettings()

	if path := EnvOrDef(getenv, "QUERY_CONFIG_FILE", ""); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return settings, fmt.Errorf("%w: %w", cities.ErrConfiguration, err)
		}
		defer f.Close()

		settings, err = cities.LoadSettings(f)
		if err != nil {
			return settings, err
		}
	}

	return applyOverrides(settings, getenv)
}

func LoadSettingsFrom(r io.Reader, getenv Getenv) (cities.Settings, error) {
	settings, err := cities.LoadSettings(r)
	if err != nil {
		return settings, err
	}

	return applyOverrides(settings, getenv)
}

func applyOverrides(settings cities.Settings, getenv Getenv) (cities.Settings, error) {
	if v := EnvOrDef(getenv, "MIN_POPULATION", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return settings, fmt.Errorf("%w: MIN_POPULATION: %w", cities.ErrConfiguration, err)
		}
		settings.MinPopulation = n
	}

	if v := EnvOrDef(getenv, "LONGITUDE_EXCLUSION", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return settings, fmt.Errorf("%w: LONGITUDE_EXCLUSION: %w", cities.ErrConfiguration, err)
		}
		settings.LongitudeExclusion = f
	}

	if v := EnvOrDef(getenv, "DEFAULT_TOLERANCE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return settings, fmt.Errorf("%w: DEFAULT_TOLERANCE: %w", cities.ErrConfiguration, err)
		}
		settings.DefaultTolerance = f
	}

	return settings, settings.Validate()
}
