package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultOpenMeteoURL          = "https://api.open-meteo.com/v1"
	DefaultOpenMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
)

// ErrNoResults is returned by Geocode when the search matched nothing.
var ErrNoResults = errors.New("no geocoding results")

type OpenMeteoClient struct {
	*BaseClient
	baseURL      string
	geocodingURL string
}

type GeocodingResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

type OpenMeteoGeocodingResponse struct {
	Results []GeocodingResult `json:"results"`
}

type OpenMeteoCurrentWeather struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

type OpenMeteoForecastResponse struct {
	Latitude       float64                  `json:"latitude"`
	Longitude      float64                  `json:"longitude"`
	Timezone       string                   `json:"timezone"`
	CurrentWeather *OpenMeteoCurrentWeather `json:"current_weather"`
	// Series entries are null where Open-Meteo has no value.
	Daily struct {
		Time             []string   `json:"time"`
		Temperature2MMax []*float64 `json:"temperature_2m_max"`
		Temperature2MMin []*float64 `json:"temperature_2m_min"`
		WeatherCode      []*int     `json:"weathercode"`
	} `json:"daily"`
	Hourly struct {
		Time                []string   `json:"time"`
		RelativeHumidity2M  []*float64 `json:"relativehumidity_2m"`
		PressureMSL         []*float64 `json:"pressure_msl"`
		ApparentTemperature []*float64 `json:"apparent_temperature"`
		WindSpeed10M        []*float64 `json:"windspeed_10m"`
	} `json:"hourly"`
}

// OpenMeteoError is the body Open-Meteo sends with a 4xx.
type OpenMeteoError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func NewOpenMeteoClient(baseURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	if geocodingURL == "" {
		geocodingURL = DefaultOpenMeteoGeocodingURL
	}
	return &OpenMeteoClient{
		BaseClient:   NewBaseClient("open-meteo", config, logger),
		baseURL:      strings.TrimRight(baseURL, "/"),
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
	}
}

// Geocode returns the best match for a place name.
func (c *OpenMeteoClient) Geocode(ctx context.Context, name string) (*GeocodingResult, error) {
	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")
	values.Set("format", "json")

	var response OpenMeteoGeocodingResponse
	if err := c.GetJSON(ctx, c.geocodingURL+"/search?"+values.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", name, err)
	}

	if len(response.Results) == 0 {
		return nil, ErrNoResults
	}
	return &response.Results[0], nil
}

// Forecast fetches current weather, the daily forecast and the hourly series
// in one request.
func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (*OpenMeteoForecastResponse, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("current_weather", "true")
	values.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	values.Set("hourly", "relativehumidity_2m,pressure_msl,apparent_temperature,windspeed_10m")
	values.Set("timezone", "auto")

	var response OpenMeteoForecastResponse
	if err := c.GetJSON(ctx, c.baseURL+"/forecast?"+values.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	return &response, nil
}
