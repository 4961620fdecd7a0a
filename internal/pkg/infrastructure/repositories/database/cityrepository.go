package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const batchSize int = 500

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type cityRepository struct {
	db *gorm.DB
}

// NewCityRepository connects to the database and migrates the cities table.
// The returned store orders rows the same way on sqlite and postgres.
func NewCityRepository(ctx context.Context, connect ConnectorFunc) (cities.CityStore, error) {
	impl, err := connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cities.ErrBackendUnavailable, err)
	}

	if err = impl.AutoMigrate(&City{}); err != nil {
		return nil, fmt.Errorf("%w: unable to migrate cities table: %w", cities.ErrBackendUnavailable, err)
	}

	log := logging.GetLoggerFromContext(ctx)
	log.Debug().Str("dialect", impl.Dialector.Name()).Msg("city repository ready")

	return &cityRepository{
		db: impl,
	}, nil
}

func (r *cityRepository) FindInLatitudeBand(ctx context.Context, q cities.BandQuery) ([]types.City, error) {
	query := r.db.WithContext(ctx).Where("latitude >= ? AND latitude <= ?", q.MinLatitude, q.MaxLatitude)

	if q.MinPopulation > 0 {
		query = query.Where("population >= ?", q.MinPopulation)
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []City
	if err := r.ordered(query).Find(&rows).Error; err != nil {
		return nil, r.failure(ctx, err, "unable to query cities by latitude")
	}

	return toTypes(rows), nil
}

func (r *cityRepository) Search(ctx context.Context, term string, limit int) ([]types.City, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

	query := r.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(country) LIKE ? ESCAPE '\'`, pattern, pattern)

	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []City
	if err := r.ordered(query).Find(&rows).Error; err != nil {
		return nil, r.failure(ctx, err, "unable to search cities")
	}

	return toTypes(rows), nil
}

func (r *cityRepository) GetByID(ctx context.Context, id int64) (types.City, error) {
	var row City

	err := r.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.City{}, fmt.Errorf("%w: %d", cities.ErrCityNotFound, id)
		}
		return types.City{}, r.failure(ctx, err, "unable to fetch city")
	}

	return row.toType(), nil
}

func (r *cityRepository) ReplaceAll(ctx context.Context, all []types.City) (int, error) {
	rows := lo.Map(all, func(c types.City, _ int) City {
		row := fromType(c)
		row.ID = 0
		return row
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&City{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, batchSize).Error
	})
	if err != nil {
		return 0, r.failure(ctx, err, "unable to replace cities")
	}

	return len(rows), nil
}

func (r *cityRepository) Close() error {
	sqldb, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}

func (r *cityRepository) ordered(query *gorm.DB) *gorm.DB {
	byName := "name ASC"
	if r.db.Dialector.Name() == "postgres" {
		byName = `name COLLATE "C" ASC`
	}

	return query.Order("population IS NULL").Order("population DESC").Order(byName)
}

func (r *cityRepository) failure(ctx context.Context, err error, msg string) error {
	log := logging.GetLoggerFromContext(ctx)
	log.Error().Err(err).Msg(msg)
	return fmt.Errorf("%w: %s: %w", cities.ErrBackendUnavailable, msg, err)
}

func toTypes(rows []City) []types.City {
	return lo.Map(rows, func(c City, _ int) types.City {
		return c.toType()
	})
}
