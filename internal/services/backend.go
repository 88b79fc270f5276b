package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/config"
	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
)

const (
	ProviderOpenMeteo   = "open-meteo"
	ProviderOpenWeather = "openweathermap"
)

// Backend adapts one weather provider to the resolve-then-fetch pipeline.
// Providers differ in units, codes and forecast depth; each backend
// normalises its own answers into models.WeatherReport.
type Backend interface {
	Name() string
	Resolve(ctx context.Context, query models.LocationQuery) (models.ResolvedLocation, error)
	Fetch(ctx context.Context, loc models.ResolvedLocation) (*models.WeatherReport, error)
}

// NewBackend builds the backend selected in configuration.
func NewBackend(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	clientConfig := client.ClientConfig{
		Timeout:          cfg.Provider.Timeout,
		BreakerThreshold: cfg.CircuitBreaker.Threshold,
		BreakerInterval:  cfg.CircuitBreaker.Interval,
		BreakerTimeout:   cfg.CircuitBreaker.Timeout,
	}

	switch strings.ToLower(cfg.Provider.Name) {
	case "", ProviderOpenMeteo:
		c := client.NewOpenMeteoClient(cfg.Provider.OpenMeteoURL, cfg.Provider.GeocodingURL, clientConfig, logger)
		logger.Info("Open-Meteo backend initialized")
		return NewOpenMeteoBackend(c), nil
	case ProviderOpenWeather:
		if cfg.Provider.OpenWeatherAPIKey == "" {
			return nil, fmt.Errorf("provider %s requires OPENWEATHER_API_KEY", ProviderOpenWeather)
		}
		c := client.NewOpenWeatherClient(cfg.Provider.OpenWeatherAPIKey, cfg.Provider.OpenWeatherURL, clientConfig, logger)
		logger.Info("OpenWeatherMap backend initialized")
		return NewOpenWeatherBackend(c), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider.Name)
	}
}

type clock func() time.Time

func resolveCoordinates(query models.LocationQuery) models.ResolvedLocation {
	return models.ResolvedLocation{
		DisplayName: query.DisplayLabel(),
		Latitude:    query.Coords.Latitude,
		Longitude:   query.Coords.Longitude,
	}
}
