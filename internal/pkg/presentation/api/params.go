package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/latitude-explorer/latitude-explorer/internal/pkg/application/cities"
)

// parseNearbyQuery reads lng, tolerance and limit from the query string.
// Range checks are left to the service, only the syntax is checked here.
func parseNearbyQuery(r *http.Request, lat string, settings cities.Settings) (cities.NearbyQuery, error) {
	params := r.URL.Query()

	q := cities.NearbyQuery{
		Tolerance: settings.DefaultTolerance,
		Limit:     settings.DefaultLimit,
	}

	var err error

	q.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return q, fmt.Errorf("%w: lat %q", cities.ErrInvalidCoordinates, lat)
	}

	q.Longitude, err = strconv.ParseFloat(strings.TrimSpace(params.Get("lng")), 64)
	if err != nil {
		return q, fmt.Errorf("%w: lng %q", cities.ErrInvalidCoordinates, params.Get("lng"))
	}

	if v := strings.TrimSpace(params.Get("tolerance")); v != "" {
		q.Tolerance, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return q, fmt.Errorf("%w: %q", cities.ErrInvalidTolerance, v)
		}
	}

	q.Limit, err = parseLimit(params.Get("limit"), settings.DefaultLimit)
	if err != nil {
		return q, err
	}

	return q, nil
}

func parseLimit(value string, def int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", cities.ErrInvalidLimit, value)
	}

	return limit, nil
}
