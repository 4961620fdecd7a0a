package types

import (
	"time"
)

type City struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Population *int64    `json:"population"`
	Timezone   *string   `json:"timezone"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CitiesResponse is returned by the nearby latitude query. Total is the number
// of cities that passed every filter, before the result was cut to the
// requested limit.
type CitiesResponse struct {
	Cities    []City  `json:"cities"`
	Total     int     `json:"total"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Tolerance float64 `json:"tolerance"`
}

type SearchResponse struct {
	Cities []City `json:"cities"`
	Total  int    `json:"total"`
	Query  string `json:"query"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
