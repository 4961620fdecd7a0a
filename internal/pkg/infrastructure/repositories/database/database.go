package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ConnectorConfig struct {
	Host     string
	Username string
	DbName   string
	Password string
	SslMode  string
}

type ConnectorFunc func() (*gorm.DB, error)

// NewSQLiteConnector opens the SQLite database at path. Use "file::memory:"
// for a throwaway database; it is limited to a single connection so that
// every query sees the same in-memory database.
func NewSQLiteConnector(ctx context.Context, path string) ConnectorFunc {
	log := logging.GetLoggerFromContext(ctx)

	return func() (*gorm.DB, error) {
		log.Info().Str("path", path).Msg("opening sqlite database")

		db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Silent),
			CreateBatchSize: 500,
		})
		if err != nil {
			return nil, err
		}

		if strings.Contains(path, ":memory:") {
			sqldb, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqldb.SetMaxOpenConns(1)
		}

		return db, nil
	}
}

func NewPostgreSQLConnector(ctx context.Context, cfg ConnectorConfig) ConnectorFunc {
	dbURI := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=%s password=%s", cfg.Host, cfg.Username, cfg.DbName, cfg.SslMode, cfg.Password)

	log := logging.GetLoggerFromContext(ctx)

	return func() (*gorm.DB, error) {
		sublogger := log.With().Str("host", cfg.Host).Str("database", cfg.DbName).Logger()
		sublogger.Info().Msg("connecting to database host")

		db, err := gorm.Open(postgres.Open(dbURI), &gorm.Config{
			Logger: logger.New(
				&logadapter{logger: sublogger},
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: true,
					Colorful:                  false,
				},
			),
			CreateBatchSize: 500,
		})
		if err != nil {
			sublogger.Error().Err(err).Msg("failed to connect to database")
			return nil, err
		}

		return db, nil
	}
}

// logadapter provides a Printf interface to the gorm logger
// so that we can forward the log data to zerolog
type logadapter struct {
	logger zerolog.Logger
}

func (adapter *logadapter) Printf(format string, args ...interface{}) {
	adapter.logger.Info().Msgf(format, args...)
}
