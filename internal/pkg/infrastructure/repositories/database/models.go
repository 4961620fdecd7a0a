package database

import (
	"time"

	"github.com/latitude-explorer/latitude-explorer/pkg/types"
)

type City struct {
	ID         int64   `gorm:"primaryKey"`
	Name       string  `gorm:"not null"`
	Country    string  `gorm:"not null"`
	Latitude   float64 `gorm:"not null;index"`
	Longitude  float64 `gorm:"not null"`
	Population *int64
	Timezone   *string
	CreatedAt  time.Time
}

func (c City) toType() types.City {
	return types.City{
		ID:         c.ID,
		Name:       c.Name,
		Country:    c.Country,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Population: c.Population,
		Timezone:   c.Timezone,
		CreatedAt:  c.CreatedAt.UTC(),
	}
}

func fromType(c types.City) City {
	return City{
		ID:         c.ID,
		Name:       c.Name,
		Country:    c.Country,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Population: c.Population,
		Timezone:   c.Timezone,
		CreatedAt:  c.CreatedAt,
	}
}
