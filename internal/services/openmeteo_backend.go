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

const maxForecastDays = 7

type OpenMeteoAPI interface {
	Geocode(ctx context.Context, name string) (*client.GeocodingResult, error)
	Forecast(ctx context.Context, lat, lon float64) (*client.OpenMeteoForecastResponse, error)
}

// OpenMeteoBackend resolves city names through the geocoding API and then
// fetches current conditions and the daily forecast in a single call.
type OpenMeteoBackend struct {
	api OpenMeteoAPI
	now clock
}

func NewOpenMeteoBackend(api OpenMeteoAPI) *OpenMeteoBackend {
	return &OpenMeteoBackend{api: api, now: time.Now}
}

func (b *OpenMeteoBackend) Name() string {
	return ProviderOpenMeteo
}

func (b *OpenMeteoBackend) Resolve(ctx context.Context, query models.LocationQuery) (models.ResolvedLocation, error) {
	if query.IsCoordinates() {
		return resolveCoordinates(query), nil
	}

	result, err := b.api.Geocode(ctx, strings.TrimSpace(query.City))
	if err != nil {
		if errors.Is(err, client.ErrNoResults) {
			return models.ResolvedLocation{}, NotFound(MsgCityNotFound, err)
		}
		return models.ResolvedLocation{}, classify(err, MsgCityNotFound)
	}

	return models.ResolvedLocation{
		DisplayName: result.Name,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
	}, nil
}

func (b *OpenMeteoBackend) Fetch(ctx context.Context, loc models.ResolvedLocation) (*models.WeatherReport, error) {
	resp, err := b.api.Forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, classify(err, MsgCityNotFound)
	}

	cur := resp.CurrentWeather
	if cur == nil {
		return nil, Unavailable(errors.New("open-meteo response has no current_weather"))
	}

	// Hourly series start at local midnight; read the hour matching the
	// current observation when it is there.
	idx := indexOf(resp.Hourly.Time, cur.Time)
	if idx < 0 {
		idx = 0
	}

	current := models.CurrentConditions{
		TemperatureC: cur.Temperature,
		FeelsLikeC:   cur.Temperature,
		MinC:         cur.Temperature,
		MaxC:         cur.Temperature,
		WindSpeedKmh: cur.WindSpeed,
		Condition:    conditions.FromWMO(cur.WeatherCode),
	}
	if v, ok := hourlyValue(resp.Hourly.ApparentTemperature, idx); ok {
		current.FeelsLikeC = v
	}
	if v, ok := hourlyValue(resp.Hourly.RelativeHumidity2M, idx); ok {
		current.HumidityPct = int(math.Round(v))
	}
	if v, ok := hourlyValue(resp.Hourly.PressureMSL, idx); ok {
		current.PressureHpa = v
	}
	if v, ok := valueAt(resp.Daily.Temperature2MMin, 0); ok {
		current.MinC = v
	}
	if v, ok := valueAt(resp.Daily.Temperature2MMax, 0); ok {
		current.MaxC = v
	}

	return &models.WeatherReport{
		Location:  loc,
		Current:   current,
		Forecast:  dailyForecast(resp),
		Provider:  ProviderOpenMeteo,
		FetchedAt: b.now(),
	}, nil
}

// dailyForecast keeps up to seven days in the order Open-Meteo returned them,
// skipping entries without a parseable date or a maximum temperature.
func dailyForecast(resp *client.OpenMeteoForecastResponse) []models.ForecastDay {
	daily := resp.Daily
	days := make([]models.ForecastDay, 0, maxForecastDays)

	for i := 0; i < len(daily.Time) && len(days) < maxForecastDays; i++ {
		date, err := time.Parse("2006-01-02", daily.Time[i])
		if err != nil {
			continue
		}
		maxC, ok := valueAt(daily.Temperature2MMax, i)
		if !ok {
			continue
		}

		day := models.ForecastDay{
			Date: date,
			MaxC: maxC,
			MinC: maxC,
			Condition: models.Condition{
				Label: conditions.UnknownLabel,
				Icon:  conditions.UnknownIcon,
			},
		}
		if minC, ok := valueAt(daily.Temperature2MMin, i); ok {
			day.MinC = minC
		}
		if i < len(daily.WeatherCode) && daily.WeatherCode[i] != nil {
			day.Condition = conditions.FromWMO(*daily.WeatherCode[i])
		}
		days = append(days, day)
	}
	return days
}

func indexOf(values []string, target string) int {
	if target == "" {
		return -1
	}
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// hourlyValue reads the hour at i, or the latest earlier hour that has a
// value when Open-Meteo reports null for it.
func hourlyValue(values []*float64, i int) (float64, bool) {
	if i >= len(values) {
		i = len(values) - 1
	}
	for ; i >= 0; i-- {
		if values[i] != nil {
			return *values[i], true
		}
	}
	return 0, false
}

func valueAt(values []*float64, i int) (float64, bool) {
	if i < 0 || i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
