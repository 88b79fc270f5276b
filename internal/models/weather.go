package models

import (
	"strings"
	"time"
)

const DefaultLocationLabel = "Your Location"

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// LocationQuery is either a free-text city or a coordinate pair with the label
// to display for it.
type LocationQuery struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
	Label  string       `json:"label,omitempty"`
}

func CityQuery(city string) LocationQuery {
	return LocationQuery{City: city}
}

func CoordsQuery(lat, lon float64, label string) LocationQuery {
	return LocationQuery{
		Coords: &Coordinates{Latitude: lat, Longitude: lon},
		Label:  label,
	}
}

func (q LocationQuery) IsCoordinates() bool {
	return q.Coords != nil
}

// DisplayLabel is the name shown for a coordinate query.
func (q LocationQuery) DisplayLabel() string {
	if label := strings.TrimSpace(q.Label); label != "" {
		return label
	}
	return DefaultLocationLabel
}

type ResolvedLocation struct {
	DisplayName string  `json:"display_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	// Query is set for providers that resolve the city name themselves.
	Query string `json:"query,omitempty"`
}

type Condition struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type CurrentConditions struct {
	TemperatureC float64   `json:"temperature_c"`
	FeelsLikeC   float64   `json:"feels_like_c"`
	HumidityPct  int       `json:"humidity_pct"`
	WindSpeedKmh float64   `json:"wind_speed_kmh"`
	PressureHpa  float64   `json:"pressure_hpa"`
	MinC         float64   `json:"min_c"`
	MaxC         float64   `json:"max_c"`
	Condition    Condition `json:"condition"`
	Country      string    `json:"country,omitempty"`
}

type ForecastDay struct {
	Date      time.Time `json:"date"`
	MaxC      float64   `json:"max_c"`
	MinC      float64   `json:"min_c"`
	Condition Condition `json:"condition"`
}

type WeatherReport struct {
	Location  ResolvedLocation  `json:"location"`
	Current   CurrentConditions `json:"current"`
	Forecast  []ForecastDay     `json:"forecast"`
	Provider  string            `json:"provider"`
	FetchedAt time.Time         `json:"fetched_at"`
}
