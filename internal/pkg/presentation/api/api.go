package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/logging"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/metrics"
	"github.com/latitude-explorer/latitude-explorer/internal/pkg/infrastructure/tracing"
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("latitude-explorer/api")

const (
	endpointNearby = "nearby"
	endpointSearch = "search"
	endpointCity   = "city"
)

func RegisterHandlers(ctx context.Context, router *chi.Mux, svc cities.CityService, devMode bool) *chi.Mux {
	log := logging.GetLoggerFromContext(ctx)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.MethodNotAllowed(methodNotAllowedHandler)

	router.Route("/api/cities", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowedHandler)

		r.Get("/", nearbyCitiesHandler(svc, devMode, func(r *http.Request) string {
			return r.URL.Query().Get("lat")
		}))
		r.Get("/by-latitude/{lat}", nearbyCitiesHandler(svc, devMode, func(r *http.Request) string {
			return chi.URLParam(r, "lat")
		}))
		r.Get("/search", searchCitiesHandler(svc, devMode))
		r.Get("/{id}", getCityHandler(svc, devMode))
	})

	log.Info().Bool("dev_mode", devMode).Msg("registered api handlers")

	return router
}

func nearbyCitiesHandler(svc cities.CityService, devMode bool, latitude func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		start := time.Now()

		ctx, span := tracer.Start(r.Context(), "find-nearby-latitude-cities")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		requestLogger := logging.GetLoggerFromContext(ctx)

		q, err := parseNearbyQuery(r, latitude(r), svc.Settings())
		if err != nil {
			writeError(ctx, w, endpointNearby, start, err, devMode)
			return
		}

		span.SetAttributes(
			attribute.Float64("query.latitude", q.Latitude),
			attribute.Float64("query.longitude", q.Longitude),
			attribute.Float64("query.tolerance", q.Tolerance),
		)

		result, err := svc.FindNearbyLatitudeCities(ctx, q)
		if err != nil {
			writeError(ctx, w, endpointNearby, start, err, devMode)
			return
		}

		requestLogger.Debug().Int("total", result.Total).Int("returned", len(result.Cities)).Msg("returning nearby latitude cities")

		metrics.ReturnedCities.Observe(float64(len(result.Cities)))

		writeJSON(ctx, w, endpointNearby, start, http.StatusOK, cities.Shape(q, result))
	}
}

func searchCitiesHandler(svc cities.CityService, devMode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		start := time.Now()

		ctx, span := tracer.Start(r.Context(), "search-cities")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		term := r.URL.Query().Get("q")

		limit, err := parseLimit(r.URL.Query().Get("limit"), svc.Settings().SearchLimit)
		if err != nil {
			writeError(ctx, w, endpointSearch, start, err, devMode)
			return
		}

		found, err := svc.SearchCities(ctx, term, limit)
		if err != nil {
			writeError(ctx, w, endpointSearch, start, err, devMode)
			return
		}

		writeJSON(ctx, w, endpointSearch, start, http.StatusOK, types.SearchResponse{
			Cities: found,
			Total:  len(found),
			Query:  term,
		})
	}
}

func getCityHandler(svc cities.CityService, devMode bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		start := time.Now()

		ctx, span := tracer.Start(r.Context(), "get-city")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			err = fmt.Errorf("%w: %q", cities.ErrInvalidCityID, chi.URLParam(r, "id"))
			writeError(ctx, w, endpointCity, start, err, devMode)
			return
		}

		city, err := svc.GetCity(ctx, id)
		if err != nil {
			writeError(ctx, w, endpointCity, start, err, devMode)
			return
		}

		writeJSON(ctx, w, endpointCity, start, http.StatusOK, city)
	}
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	b, _ := json.Marshal(types.ErrorResponse{Error: "Method not allowed"})

	w.Header().Add("Content-Type", "application/json")
	w.Header().Add("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write(b)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, endpoint string, start time.Time, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		writeError(ctx, w, endpoint, start, err, false)
		return
	}

	observe(endpoint, metrics.OutcomeOK, start)

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// writeError maps err to a status code and a client facing message. Backend
// failures are logged in full but only described to the client in dev mode.
func writeError(ctx context.Context, w http.ResponseWriter, endpoint string, start time.Time, err error, devMode bool) {
	log := logging.GetLoggerFromContext(ctx)

	status, outcome, response := http.StatusInternalServerError, metrics.OutcomeFailed, types.ErrorResponse{Error: "Internal server error"}

	switch {
	case errors.Is(err, cities.ErrInvalidArgument):
		status, outcome = http.StatusBadRequest, metrics.OutcomeInvalid
		response.Error = invalidArgumentMessage(err)
		log.Debug().Err(err).Msg("invalid request")
	case errors.Is(err, cities.ErrCityNotFound):
		status, outcome = http.StatusNotFound, metrics.OutcomeNotFound
		response.Error = "City not found"
		log.Debug().Err(err).Msg("city not found")
	default:
		log.Error().Err(err).Str("endpoint", endpoint).Msg("request failed")
		if devMode {
			response.Details = err.Error()
		}
	}

	observe(endpoint, outcome, start)

	b, _ := json.Marshal(response)

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

func invalidArgumentMessage(err error) string {
	switch {
	case errors.Is(err, cities.ErrInvalidCoordinates):
		return "Invalid latitude or longitude"
	case errors.Is(err, cities.ErrInvalidTolerance):
		return "Invalid tolerance"
	case errors.Is(err, cities.ErrInvalidLimit):
		return "Invalid limit"
	case errors.Is(err, cities.ErrInvalidSearchTerm):
		return "Search query must be at least 2 characters long"
	case errors.Is(err, cities.ErrInvalidCityID):
		return "Invalid city ID"
	default:
		return "Invalid request"
	}
}

func observe(endpoint, outcome string, start time.Time) {
	metrics.QueriesTotal.WithLabelValues(endpoint, outcome).Inc()
	metrics.QueryDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
}
