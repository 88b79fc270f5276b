package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/conditions"
	"github.com/bobby-s-dev/weather-widget/internal/metrics"
	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/services"
	"github.com/bobby-s-dev/weather-widget/internal/widget"
)

type mockLooker struct {
	mock.Mock
}

func (m *mockLooker) Lookup(ctx context.Context, query models.LocationQuery) (*models.WeatherReport, error) {
	args := m.Called(ctx, query)
	report, _ := args.Get(0).(*models.WeatherReport)
	return report, args.Error(1)
}

func (m *mockLooker) Provider() string {
	return "mock"
}

func report(name string, temp float64) *models.WeatherReport {
	return &models.WeatherReport{
		Location: models.ResolvedLocation{DisplayName: name},
		Current: models.CurrentConditions{
			TemperatureC: temp,
			MinC:         12,
			MaxC:         18,
			Condition:    conditions.FromWMO(3),
		},
		Provider: "mock",
	}
}

func setupApp(t *testing.T, looker *mockLooker) (*fiber.App, *widget.Registry) {
	t.Helper()

	logger := zap.NewNop()
	factory := func(id string) *widget.Widget {
		return widget.New(id, looker, widget.NewPresenter(40), widget.Options{DefaultCity: "London"}, logger)
	}
	registry := widget.NewRegistry(factory, time.Hour, 100, nil, logger)
	handler := NewHandler(looker, registry, nil, 5*time.Second, "", logger)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, handler, metrics.NewMetrics("test"), "", logger)
	return app, registry
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestGetWeather(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CityQuery("London")).Return(report("London", 15.4), nil)
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/weather?city=London", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode(t, resp)
		assert.Equal(t, "London", body["location"].(map[string]interface{})["display_name"])
	})

	t.Run("Coordinates", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CoordsQuery(48.85, 2.35, models.DefaultLocationLabel)).
			Return(report(models.DefaultLocationLabel, 20), nil)
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=48.85&lon=2.35", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		looker.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		url        string
		lookupErr  error
		wantStatus int
		wantError  string
	}{
		{"NotFound", "/api/v1/weather?city=Nonexistentville", services.NotFound(services.MsgCityNotFound, nil), http.StatusNotFound, "City not found."},
		{"Unavailable", "/api/v1/weather?city=London", services.Unavailable(nil), http.StatusBadGateway, services.MsgUnavailable},
		{"EmptyCity", "/api/v1/weather?city=", services.NotFound(services.MsgEmptyQuery, services.ErrInvalidQuery), http.StatusBadRequest, services.MsgEmptyQuery},
		{"MissingParams", "/api/v1/weather", nil, http.StatusBadRequest, "City or lat/lon parameters are required"},
		{"BadLatitude", "/api/v1/weather?lat=north&lon=2", nil, http.StatusBadRequest, services.MsgInvalidCoords},
		{"NaNLongitude", "/api/v1/weather?lat=51.5&lon=NaN", nil, http.StatusBadRequest, services.MsgInvalidCoords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looker := new(mockLooker)
			if tt.lookupErr != nil {
				looker.On("Lookup", mock.Anything, mock.Anything).Return(nil, tt.lookupErr)
			}
			app, _ := setupApp(t, looker)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tt.wantError, body["error"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestWidgetLifecycle(t *testing.T) {
	looker := new(mockLooker)
	looker.On("Lookup", mock.Anything, models.CityQuery("London")).Return(report("London", 15.4), nil)
	app, registry := setupApp(t, looker)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/widgets", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode(t, resp)
	id := created["id"].(string)
	assert.Equal(t, "idle", created["state"])
	assert.Equal(t, 1, registry.Len())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/widgets/"+id+"/lookup", strings.NewReader(`{"city":"London"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	assert.Eventually(t, func() bool {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/widgets/"+id, nil))
		if err != nil || resp.StatusCode != http.StatusOK {
			return false
		}
		body := decode(t, resp)
		return body["state"] == "content"
	}, 2*time.Second, 20*time.Millisecond)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/widgets/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/widgets/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStartLookup_RejectsHalfCoordinates(t *testing.T) {
	app, registry := setupApp(t, new(mockLooker))
	w := registry.Create()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/widgets/"+w.ID()+"/lookup", strings.NewReader(`{"lat":51.5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPage(t *testing.T) {
	t.Run("FirstVisitAsksForLocation", func(t *testing.T) {
		looker := new(mockLooker)
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		html, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(html), `data-state="idle"`)
		assert.Contains(t, string(html), "navigator.geolocation.getCurrentPosition")
		assert.Contains(t, string(html), "locate=denied")
		looker.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	})

	t.Run("ReportedPositionIsLookedUp", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CoordsQuery(51.5, -0.12, models.DefaultLocationLabel)).
			Return(report(models.DefaultLocationLabel, 15.4), nil).Once()
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?lat=51.5&lon=-0.12", nil))
		require.NoError(t, err)

		html, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(html), `<div id="city">Your Location</div>`)
		assert.NotContains(t, string(html), "navigator.geolocation")
		looker.AssertExpectations(t)
	})

	t.Run("DeniedLocationFallsBackToDefaultCity", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CityQuery("London")).Return(report("London", 15.4), nil)
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?locate=denied", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == widgetCookie {
				cookie = c
			}
		}
		require.NotNil(t, cookie)

		html, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(html), `<div id="temp">15°C</div>`)
		assert.Contains(t, string(html), `<div id="hi-low">12°C / 18°C</div>`)
		assert.Contains(t, string(html), `data-state="content"`)
		assert.NotContains(t, string(html), "navigator.geolocation")
		looker.AssertExpectations(t)
	})

	t.Run("CityNotFound", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CityQuery("Nonexistentville")).
			Return(nil, services.NotFound(services.MsgCityNotFound, nil))
		app, _ := setupApp(t, looker)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?city=Nonexistentville", nil))
		require.NoError(t, err)

		html, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(html), `<span id="error-text">City not found.</span>`)
		assert.Contains(t, string(html), `data-state="error"`)
	})

	t.Run("ReusesWidgetFromCookie", func(t *testing.T) {
		looker := new(mockLooker)
		looker.On("Lookup", mock.Anything, models.CityQuery("Paris")).Return(report("Paris", 21), nil).Once()
		app, registry := setupApp(t, looker)

		w := registry.Create()
		req := httptest.NewRequest(http.MethodGet, "/?city=Paris", nil)
		req.AddCookie(&http.Cookie{Name: widgetCookie, Value: w.ID()})
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "Paris", w.View().City)
		assert.Equal(t, 1, registry.Len())
	})
}

func TestGetHealth(t *testing.T) {
	app, _ := setupApp(t, new(mockLooker))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mock", body["provider"])
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setupApp(t, new(mockLooker))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_widget_instances")
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupApp(t, new(mockLooker))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
