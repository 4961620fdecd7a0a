package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the cities schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	log := logging.GetLoggerFromContext(ctx)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooselogger{logger: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
		return fmt.Errorf("%w: unable to migrate database: %w", cities.ErrBackendUnavailable, err)
	}

	return nil
}

type gooselogger struct {
	logger zerolog.Logger
}

func (g *gooselogger) Printf(format string, v ...interface{}) {
	g.logger.Info().Msgf(format, v...)
}

func (g *gooselogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msgf(format, v...)
}
