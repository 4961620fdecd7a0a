package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
)

type Config struct {
	url       string
	authToken string
}

func NewConfig(url, authToken string) Config {
	return Config{
		url:       url,
		authToken: authToken,
	}
}

// PoolConfig parses the connection url. A non empty auth token replaces
// whatever password the url carries.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid database url: %w", cities.ErrConfiguration, err)
	}

	if c.authToken != "" {
		cfg.ConnConfig.Password = c.authToken
	}

	if cfg.ConnConfig.Password == "" {
		return nil, fmt.Errorf("%w: hosted database requires an auth token", cities.ErrConfiguration)
	}

	return cfg, nil
}

func NewPool(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	cfg, err := config.PoolConfig()
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cities.ErrBackendUnavailable, err)
	}

	err = p.Ping(ctx)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %w", cities.ErrBackendUnavailable, err)
	}

	return p, nil
}

type dbPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

type Storage struct {
	pool dbPool
}

func NewWithPool(pool dbPool) *Storage {
	return &Storage{pool: pool}
}

func New(ctx context.Context, config Config) (*Storage, error) {
	pool, err := NewPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
