package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
)

type mockOpenMeteoAPI struct {
	mock.Mock
}

func (m *mockOpenMeteoAPI) Geocode(ctx context.Context, name string) (*client.GeocodingResult, error) {
	args := m.Called(ctx, name)
	res, _ := args.Get(0).(*client.GeocodingResult)
	return res, args.Error(1)
}

func (m *mockOpenMeteoAPI) Forecast(ctx context.Context, lat, lon float64) (*client.OpenMeteoForecastResponse, error) {
	args := m.Called(ctx, lat, lon)
	res, _ := args.Get(0).(*client.OpenMeteoForecastResponse)
	return res, args.Error(1)
}

type mockOpenWeatherAPI struct {
	mock.Mock
}

func (m *mockOpenWeatherAPI) CurrentByCity(ctx context.Context, city string) (*client.OpenWeatherCurrentResponse, error) {
	args := m.Called(ctx, city)
	res, _ := args.Get(0).(*client.OpenWeatherCurrentResponse)
	return res, args.Error(1)
}

func (m *mockOpenWeatherAPI) CurrentByCoords(ctx context.Context, lat, lon float64) (*client.OpenWeatherCurrentResponse, error) {
	args := m.Called(ctx, lat, lon)
	res, _ := args.Get(0).(*client.OpenWeatherCurrentResponse)
	return res, args.Error(1)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Resolve(ctx context.Context, query models.LocationQuery) (models.ResolvedLocation, error) {
	args := m.Called(ctx, query)
	loc, _ := args.Get(0).(models.ResolvedLocation)
	return loc, args.Error(1)
}

func (m *mockBackend) Fetch(ctx context.Context, loc models.ResolvedLocation) (*models.WeatherReport, error) {
	args := m.Called(ctx, loc)
	report, _ := args.Get(0).(*models.WeatherReport)
	return report, args.Error(1)
}

type recordedLookup struct {
	provider string
	outcome  string
}

type fakeRecorder struct {
	mu      sync.Mutex
	lookups []recordedLookup
	stages  []string
}

func (r *fakeRecorder) ObserveLookup(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, recordedLookup{provider, outcome})
}

func (r *fakeRecorder) ObserveStage(_, stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}
