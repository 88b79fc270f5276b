package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type OpenWeatherCurrentResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

// OpenWeatherError is the body OpenWeatherMap sends with a non-2xx. Cod is a
// number or a string depending on the endpoint, so it is left undecoded.
type OpenWeatherError struct {
	Message string `json:"message"`
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	return &OpenWeatherClient{
		BaseClient: NewBaseClient("openweathermap", config, logger),
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *OpenWeatherClient) CurrentByCity(ctx context.Context, city string) (*OpenWeatherCurrentResponse, error) {
	values := url.Values{}
	values.Set("q", city)
	return c.current(ctx, values)
}

func (c *OpenWeatherClient) CurrentByCoords(ctx context.Context, lat, lon float64) (*OpenWeatherCurrentResponse, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.current(ctx, values)
}

func (c *OpenWeatherClient) current(ctx context.Context, values url.Values) (*OpenWeatherCurrentResponse, error) {
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)

	var response OpenWeatherCurrentResponse
	if err := c.GetJSON(ctx, c.baseURL+"/weather?"+values.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	return &response, nil
}
