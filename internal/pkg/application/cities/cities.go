package cities

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/tracing"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("latitude-explorer/cities")

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrConfiguration      = errors.New("configuration error")
	ErrCityNotFound       = errors.New("city not found")

	ErrInvalidCoordinates = fmt.Errorf("%w: invalid latitude or longitude", ErrInvalidArgument)
	ErrInvalidTolerance   = fmt.Errorf("%w: invalid tolerance", ErrInvalidArgument)
	ErrInvalidLimit       = fmt.Errorf("%w: invalid limit", ErrInvalidArgument)
	ErrInvalidSearchTerm  = fmt.Errorf("%w: invalid search term", ErrInvalidArgument)
	ErrInvalidCityID      = fmt.Errorf("%w: invalid city id", ErrInvalidArgument)
)

// BandQuery is the part of a nearby query that is pushed down to storage:
// an inclusive latitude range, an optional population floor (0 disables it)
// and a cap on the number of rows. Stores must order the rows by population
// descending with missing populations last, then by name in byte order.
type BandQuery struct {
	MinLatitude   float64
	MaxLatitude   float64
	MinPopulation int64
	Limit         int
}

//go:generate moq -rm -out cities_mock.go . CityStore

type CityStore interface {
	FindInLatitudeBand(ctx context.Context, q BandQuery) ([]types.City, error)
	Search(ctx context.Context, term string, limit int) ([]types.City, error)
	GetByID(ctx context.Context, id int64) (types.City, error)
	ReplaceAll(ctx context.Context, cities []types.City) (int, error)
	Close() error
}

type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	Tolerance float64
	Limit     int
}

type Result struct {
	Cities []types.City
	Total  int
}

type CityService interface {
	FindNearbyLatitudeCities(ctx context.Context, q NearbyQuery) (Result, error)
	SearchCities(ctx context.Context, term string, limit int) ([]types.City, error)
	GetCity(ctx context.Context, id int64) (types.City, error)

	Settings() Settings
}

type service struct {
	store    CityStore
	settings Settings
}

func New(store CityStore, settings Settings) CityService {
	return &service{
		store:    store,
		settings: settings,
	}
}

func (s *service) Settings() Settings {
	return s.settings
}

func (s *service) FindNearbyLatitudeCities(ctx context.Context, q NearbyQuery) (Result, error) {
	var err error
	ctx, span := tracer.Start(ctx, "find-nearby-latitude-cities")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetLoggerFromContext(ctx)

	q, err = s.validate(q)
	if err != nil {
		return Result{}, err
	}

	band := BandQuery{
		MinLatitude:   q.Latitude - q.Tolerance,
		MaxLatitude:   q.Latitude + q.Tolerance,
		MinPopulation: s.settings.MinPopulation,
		Limit:         s.settings.CandidateLimit,
	}

	candidates, err := s.store.FindInLatitudeBand(ctx, band)
	if err != nil {
		err = backendError(err)
		return Result{}, err
	}

	if len(candidates) > band.Limit {
		candidates = candidates[:band.Limit]
	}

	log.Debug().Int("count", len(candidates)).Msg("found cities by latitude and population")

	remaining := excludeNearbyLongitudes(candidates, q.Longitude, s.settings.LongitudeExclusion)

	log.Debug().Int("count", len(remaining)).Float64("threshold", s.settings.LongitudeExclusion).Msg("filtered cities by longitude difference")

	span.SetAttributes(
		attribute.Int("cities.candidates", len(candidates)),
		attribute.Int("cities.total", len(remaining)),
	)

	return Result{
		Cities: remaining[:min(q.Limit, len(remaining))],
		Total:  len(remaining),
	}, nil
}

func (s *service) SearchCities(ctx context.Context, term string, limit int) ([]types.City, error) {
	var err error
	ctx, span := tracer.Start(ctx, "search-cities")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < s.settings.MinSearchLength {
		err = fmt.Errorf("%w: must be at least %d characters long", ErrInvalidSearchTerm, s.settings.MinSearchLength)
		return nil, err
	}

	if limit <= 0 {
		err = fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
		return nil, err
	}

	found, err := s.store.Search(ctx, term, min(limit, s.settings.CandidateLimit))
	if err != nil {
		err = backendError(err)
		return nil, err
	}

	if found == nil {
		found = []types.City{}
	}

	return found, nil
}

func (s *service) GetCity(ctx context.Context, id int64) (types.City, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-city")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if id <= 0 {
		err = fmt.Errorf("%w: %d", ErrInvalidCityID, id)
		return types.City{}, err
	}

	city, err := s.store.GetByID(ctx, id)
	if err != nil {
		err = backendError(err)
		return types.City{}, err
	}

	return city, nil
}

func (s *service) validate(q NearbyQuery) (NearbyQuery, error) {
	if !isFinite(q.Latitude) || q.Latitude < -90 || q.Latitude > 90 {
		return q, fmt.Errorf("%w: latitude %v", ErrInvalidCoordinates, q.Latitude)
	}
	if !isFinite(q.Longitude) || q.Longitude < -180 || q.Longitude > 180 {
		return q, fmt.Errorf("%w: longitude %v", ErrInvalidCoordinates, q.Longitude)
	}
	if !isFinite(q.Tolerance) || q.Tolerance < 0 || q.Tolerance > s.settings.MaxTolerance {
		return q, fmt.Errorf("%w: must be between 0 and %v, got %v", ErrInvalidTolerance, s.settings.MaxTolerance, q.Tolerance)
	}
	if q.Limit <= 0 {
		return q, fmt.Errorf("%w: must be positive, got %d", ErrInvalidLimit, q.Limit)
	}

	q.Limit = min(q.Limit, s.settings.CandidateLimit)

	return q, nil
}

// excludeNearbyLongitudes keeps the cities whose longitude differs from the
// given longitude by at least threshold degrees. There is no wrap around the
// antimeridian.
func excludeNearbyLongitudes(candidates []types.City, longitude, threshold float64) []types.City {
	return lo.Filter(candidates, func(c types.City, _ int) bool {
		return math.Abs(c.Longitude-longitude) >= threshold
	})
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func backendError(err error) error {
	if errors.Is(err, ErrBackendUnavailable) || errors.Is(err, ErrCityNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}
