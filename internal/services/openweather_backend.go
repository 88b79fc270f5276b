package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bobby-s-dev/weather-widget/internal/conditions"
	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
)

const msToKmh = 3.6

type OpenWeatherAPI interface {
	CurrentByCity(ctx context.Context, city string) (*client.OpenWeatherCurrentResponse, error)
	CurrentByCoords(ctx context.Context, lat, lon float64) (*client.OpenWeatherCurrentResponse, error)
}

// OpenWeatherBackend passes the city straight to the by-name endpoint, so
// resolution happens inside the fetch. It has no forecast.
type OpenWeatherBackend struct {
	api OpenWeatherAPI
	now clock
}

func NewOpenWeatherBackend(api OpenWeatherAPI) *OpenWeatherBackend {
	return &OpenWeatherBackend{api: api, now: time.Now}
}

func (b *OpenWeatherBackend) Name() string {
	return ProviderOpenWeather
}

func (b *OpenWeatherBackend) Resolve(_ context.Context, query models.LocationQuery) (models.ResolvedLocation, error) {
	if query.IsCoordinates() {
		return resolveCoordinates(query), nil
	}

	city := strings.TrimSpace(query.City)
	return models.ResolvedLocation{DisplayName: city, Query: city}, nil
}

func (b *OpenWeatherBackend) Fetch(ctx context.Context, loc models.ResolvedLocation) (*models.WeatherReport, error) {
	var (
		resp *client.OpenWeatherCurrentResponse
		err  error
	)
	if loc.Query != "" {
		resp, err = b.api.CurrentByCity(ctx, loc.Query)
	} else {
		resp, err = b.api.CurrentByCoords(ctx, loc.Latitude, loc.Longitude)
	}
	if err != nil {
		return nil, classify(err, MsgCityNotFoundByName)
	}

	if resp.Main == nil {
		return nil, Unavailable(errors.New("openweathermap response has no main block"))
	}

	condition := conditions.FromOpenWeather("")
	if len(resp.Weather) > 0 {
		condition = conditions.FromOpenWeather(resp.Weather[0].Main)
	}

	resolved := loc
	resolved.Latitude = resp.Coord.Lat
	resolved.Longitude = resp.Coord.Lon
	if loc.Query != "" && resp.Name != "" {
		resolved.DisplayName = resp.Name
		if resp.Sys.Country != "" {
			resolved.DisplayName = resp.Name + ", " + resp.Sys.Country
		}
	}

	return &models.WeatherReport{
		Location: resolved,
		Current: models.CurrentConditions{
			TemperatureC: resp.Main.Temp,
			FeelsLikeC:   resp.Main.FeelsLike,
			HumidityPct:  int(math.Round(resp.Main.Humidity)),
			WindSpeedKmh: resp.Wind.Speed * msToKmh,
			PressureHpa:  resp.Main.Pressure,
			MinC:         resp.Main.TempMin,
			MaxC:         resp.Main.TempMax,
			Condition:    condition,
			Country:      resp.Sys.Country,
		},
		Provider:  ProviderOpenWeather,
		FetchedAt: b.now(),
	}, nil
}
