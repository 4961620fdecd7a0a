package cities

import (
	"github.com/latitude-explorer/latitude-explorer/pkg/types"
)

// Shape builds the response envelope for a nearby query. Cities is always
// encoded as a JSON array, also when nothing matched.
func Shape(q NearbyQuery, r Result) types.CitiesResponse {
	cities := r.Cities
	if cities == nil {
		cities = []types.City{}
	}

	return types.CitiesResponse{
		Cities:    cities,
		Total:     r.Total,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Tolerance: q.Tolerance,
	}
}
