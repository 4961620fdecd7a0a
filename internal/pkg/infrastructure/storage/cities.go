package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/samber/lo"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	cityColumns   = []string{"id", "name", "country", "latitude", "longitude", "population", "timezone", "created_at"}
	insertColumns = []string{"name", "country", "latitude", "longitude", "population", "timezone"}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// cityRow is the schema rows are decoded into, by column name.
type cityRow struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Country    string    `db:"country"`
	Latitude   float64   `db:"latitude"`
	Longitude  float64   `db:"longitude"`
	Population *int64    `db:"population"`
	Timezone   *string   `db:"timezone"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r cityRow) toType() types.City {
	return types.City{
		ID:         r.ID,
		Name:       r.Name,
		Country:    r.Country,
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Population: r.Population,
		Timezone:   r.Timezone,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func (s *Storage) FindInLatitudeBand(ctx context.Context, q cities.BandQuery) ([]types.City, error) {
	query := psql.Select(cityColumns...).From("cities").
		Where(sq.GtOrEq{"latitude": q.MinLatitude}).
		Where(sq.LtOrEq{"latitude": q.MaxLatitude})

	if q.MinPopulation > 0 {
		query = query.Where(sq.GtOrEq{"population": q.MinPopulation})
	}

	query = ordered(query)

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	return s.queryCities(ctx, query, "unable to query cities by latitude")
}

func (s *Storage) Search(ctx context.Context, term string, limit int) ([]types.City, error) {
	pattern := "%" + likeEscaper.Replace(term) + "%"

	query := ordered(psql.Select(cityColumns...).From("cities").
		Where(sq.Or{sq.ILike{"name": pattern}, sq.ILike{"country": pattern}}))

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return s.queryCities(ctx, query, "unable to search cities")
}

func (s *Storage) GetByID(ctx context.Context, id int64) (types.City, error) {
	sql, args, err := psql.Select(cityColumns...).From("cities").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return types.City{}, failure(ctx, err, "unable to build query")
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return types.City{}, failure(ctx, err, "unable to fetch city")
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[cityRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.City{}, fmt.Errorf("%w: %d", cities.ErrCityNotFound, id)
		}
		return types.City{}, failure(ctx, err, "unable to decode city")
	}

	return row.toType(), nil
}

// ReplaceAll deletes every stored city and copies the given ones in a single
// transaction.
func (s *Storage) ReplaceAll(ctx context.Context, all []types.City) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, failure(ctx, err, "unable to begin transaction")
	}

	_, err = tx.Exec(ctx, "DELETE FROM cities")
	if err != nil {
		tx.Rollback(ctx)
		return 0, failure(ctx, err, "unable to delete cities")
	}

	rows := lo.Map(all, func(c types.City, _ int) []any {
		return []any{c.Name, c.Country, c.Latitude, c.Longitude, c.Population, c.Timezone}
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"cities"}, insertColumns, pgx.CopyFromRows(rows))
	if err != nil {
		tx.Rollback(ctx)
		return 0, failure(ctx, err, "unable to copy cities")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return 0, failure(ctx, err, "unable to commit cities")
	}

	return int(n), nil
}

func (s *Storage) queryCities(ctx context.Context, query sq.SelectBuilder, msg string) ([]types.City, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, failure(ctx, err, "unable to build query")
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, failure(ctx, err, msg)
	}

	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[cityRow])
	if err != nil {
		return nil, failure(ctx, err, "unable to decode cities")
	}

	return lo.Map(found, func(r cityRow, _ int) types.City {
		return r.toType()
	}), nil
}

func ordered(query sq.SelectBuilder) sq.SelectBuilder {
	return query.OrderBy("population IS NULL", "population DESC", `name COLLATE "C" ASC`)
}

func failure(ctx context.Context, err error, msg string) error {
	log := logging.GetLoggerFromContext(ctx)
	log.Error().Err(err).Msg(msg)
	return fmt.Errorf("%w: %s: %w", cities.ErrBackendUnavailable, msg, err)
}
