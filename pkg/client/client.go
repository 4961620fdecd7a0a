package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/tracing"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("latitude-explorer-client")

var ErrCityNotFound = errors.New("city not found")

// APIError is returned when the service answers with a non 2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("request failed with status code %d: %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message)
}

type CityClient interface {
	FindNearbyLatitudeCities(ctx context.Context, latitude, longitude float64, options ...QueryOption) (*types.CitiesResponse, error)
	SearchCities(ctx context.Context, term string, limit int) (*types.SearchResponse, error)
	GetCity(ctx context.Context, id int64) (*types.City, error)
}

type QueryOption func(url.Values)

func WithTolerance(tolerance float64) QueryOption {
	return func(v url.Values) {
		v.Set("tolerance", strconv.FormatFloat(tolerance, 'f', -1, 64))
	}
}

func WithLimit(limit int) QueryOption {
	return func(v url.Values) {
		v.Set("limit", strconv.Itoa(limit))
	}
}

type cityClient struct {
	url        string
	httpClient http.Client
}

func New(serviceURL string) CityClient {
	return &cityClient{
		url: strings.TrimSuffix(serviceURL, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *cityClient) FindNearbyLatitudeCities(ctx context.Context, latitude, longitude float64, options ...QueryOption) (*types.CitiesResponse, error) {
	var err error
	ctx, span := tracer.Start(ctx, "find-nearby-latitude-cities")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(longitude, 'f', -1, 64))
	for _, apply := range options {
		apply(params)
	}

	result := &types.CitiesResponse{}
	err = c.get(ctx, "/api/cities?"+params.Encode(), result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *cityClient) SearchCities(ctx context.Context, term string, limit int) (*types.SearchResponse, error) {
	var err error
	ctx, span := tracer.Start(ctx, "search-cities")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	params := url.Values{}
	params.Set("q", term)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	result := &types.SearchResponse{}
	err = c.get(ctx, "/api/cities/search?"+params.Encode(), result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *cityClient) GetCity(ctx context.Context, id int64) (*types.City, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-city")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := &types.City{}
	err = c.get(ctx, "/api/cities/"+strconv.FormatInt(id, 10), result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("%w: %d", ErrCityNotFound, id)
		}
		return nil, err
	}

	return result, nil
}

func (c *cityClient) get(ctx context.Context, path string, result any) error {
	log := logging.GetLoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

		var errResponse types.ErrorResponse
		if json.Unmarshal(respBody, &errResponse) == nil && errResponse.Error != "" {
			apiErr.Message = errResponse.Error
			apiErr.Details = errResponse.Details
		}

		log.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("request failed")

		return apiErr
	}

	err = json.Unmarshal(respBody, result)
	if err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}
