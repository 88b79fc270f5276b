package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/pkg/client"
)

func londonResponse(t *testing.T) *client.OpenWeatherCurrentResponse {
	t.Helper()
	var resp client.OpenWeatherCurrentResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"coord":{"lon":-0.1257,"lat":51.5085},
		"name":"London",
		"sys":{"country":"GB"},
		"main":{"temp":15.4,"temp_min":12.0,"temp_max":18.0,"humidity":72,"feels_like":14.6,"pressure":1012},
		"wind":{"speed":5},
		"weather":[{"main":"Clouds"}]
	}`), &resp))
	return &resp
}

func TestOpenWeatherBackend_ResolveIsImplicit(t *testing.T) {
	loc, err := NewOpenWeatherBackend(&mockOpenWeatherAPI{}).Resolve(context.Background(), models.CityQuery(" London "))
	require.NoError(t, err)
	assert.Equal(t, "London", loc.Query)
	assert.Equal(t, "London", loc.DisplayName)
}

func TestOpenWeatherBackend_FetchByCity(t *testing.T) {
	api := &mockOpenWeatherAPI{}
	api.On("CurrentByCity", mock.Anything, "London").Return(londonResponse(t), nil).Once()
	t.Cleanup(func() { api.AssertExpectations(t) })

	report, err := NewOpenWeatherBackend(api).Fetch(context.Background(), models.ResolvedLocation{DisplayName: "London", Query: "London"})
	require.NoError(t, err)

	cur := report.Current
	assert.Equal(t, 15.4, cur.TemperatureC)
	assert.Equal(t, 12.0, cur.MinC)
	assert.Equal(t, 18.0, cur.MaxC)
	assert.Equal(t, 72, cur.HumidityPct)
	assert.InDelta(t, 18.0, cur.WindSpeedKmh, 1e-9, "m/s is converted to km/h")
	assert.Equal(t, "Cloudy", cur.Condition.Label)
	assert.Equal(t, "Clouds", cur.Condition.Code)
	assert.Equal(t, "London, GB", report.Location.DisplayName)
	assert.Empty(t, report.Forecast)
	assert.Equal(t, ProviderOpenWeather, report.Provider)
}

func TestOpenWeatherBackend_FetchByCoordsKeepsLabel(t *testing.T) {
	api := &mockOpenWeatherAPI{}
	api.On("CurrentByCoords", mock.Anything, 51.5, -0.12).Return(londonResponse(t), nil).Once()
	t.Cleanup(func() { api.AssertExpectations(t) })

	backend := NewOpenWeatherBackend(api)
	loc, err := backend.Resolve(context.Background(), models.CoordsQuery(51.5, -0.12, ""))
	require.NoError(t, err)

	report, err := backend.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, "Your Location", report.Location.DisplayName)
}

func TestOpenWeatherBackend_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		resp    *client.OpenWeatherCurrentResponse
		kind    Kind
		message string
	}{
		{
			name:    "provider message",
			err:     &client.StatusError{StatusCode: 404, Body: []byte(`{"cod":"404","message":"city not found"}`)},
			kind:    KindNotFound,
			message: "city not found",
		},
		{
			name:    "empty message falls back",
			err:     &client.StatusError{StatusCode: 404, Body: []byte(`{"cod":"404","message":""}`)},
			kind:    KindNotFound,
			message: MsgCityNotFoundByName,
		},
		{
			name:    "non json body",
			err:     &client.StatusError{StatusCode: 401, Body: []byte(`<html>nope</html>`)},
			kind:    KindNotFound,
			message: MsgCityNotFoundByName,
		},
		{
			name:    "network",
			err:     &client.TransportError{Err: errors.New("dial tcp: timeout")},
			kind:    KindUnavailable,
			message: MsgUnavailable,
		},
		{
			name:    "missing main",
			resp:    &client.OpenWeatherCurrentResponse{Name: "London"},
			kind:    KindUnavailable,
			message: MsgUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockOpenWeatherAPI{}
			api.On("CurrentByCity", mock.Anything, "London").Return(tt.resp, tt.err).Once()

			_, err := NewOpenWeatherBackend(api).Fetch(context.Background(), models.ResolvedLocation{Query: "London"})

			var lookupErr *LookupError
			require.True(t, errors.As(err, &lookupErr))
			assert.Equal(t, tt.kind, lookupErr.Kind)
			assert.Equal(t, tt.message, lookupErr.Message)
		})
	}
}
