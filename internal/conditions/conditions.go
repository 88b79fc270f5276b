// Package conditions maps provider weather codes to the labels, glyphs and
// background images the widget displays. Every lookup is total: unknown
// inputs fall back to a fixed placeholder.
package conditions

import (
	"strconv"
	"strings"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

const (
	UnknownLabel = "Unknown"
	UnknownIcon  = "❓"

	FallbackBackground = "/static/bg.jpg"
)

type entry struct {
	label string
	icon  string
}

// WMO weather interpretation codes as reported by Open-Meteo.
var wmoCodes = map[int]entry{
	0:  {"Clear", "☀️"},
	1:  {"Mainly Clear", "🌤️"},
	2:  {"Partly Cloudy", "⛅"},
	3:  {"Cloudy", "☁️"},
	45: {"Fog", "🌫️"},
	48: {"Icy Fog", "🌫️"},
	51: {"Light Drizzle", "🌦️"},
	53: {"Drizzle", "🌦️"},
	55: {"Heavy Drizzle", "🌦️"},
	61: {"Light Rain", "🌧️"},
	63: {"Rain", "🌧️"},
	65: {"Heavy Rain", "🌧️"},
	71: {"Snow", "❄️"},
	73: {"Snow", "❄️"},
	75: {"Heavy Snow", "❄️"},
	80: {"Rain Showers", "🌧️"},
	81: {"Rain Showers", "🌧️"},
	82: {"Heavy Rain Showers", "🌧️"},
	95: {"Thunderstorm", "🌩️"},
	96: {"Thunderstorm", "🌩️"},
	99: {"Thunderstorm", "🌩️"},
}

// OpenWeatherMap "weather[0].main" groups, keyed lower-case.
var openWeatherGroups = map[string]entry{
	"clear":        {"Clear", "☀️"},
	"clouds":       {"Cloudy", "☁️"},
	"drizzle":      {"Light Drizzle", "🌦️"},
	"rain":         {"Rain", "🌧️"},
	"snow":         {"Snow", "❄️"},
	"thunderstorm": {"Thunderstorm", "🌩️"},
	"mist":         {"Mist", "🌫️"},
	"haze":         {"Haze", "🌫️"},
	"fog":          {"Fog", "🌫️"},
}

func FromWMO(code int) models.Condition {
	e, ok := wmoCodes[code]
	if !ok {
		e = entry{UnknownLabel, UnknownIcon}
	}
	return models.Condition{Code: strconv.Itoa(code), Label: e.label, Icon: e.icon}
}

func FromOpenWeather(main string) models.Condition {
	e, ok := openWeatherGroups[strings.ToLower(strings.TrimSpace(main))]
	if !ok {
		e = entry{UnknownLabel, UnknownIcon}
	}
	return models.Condition{Code: main, Label: e.label, Icon: e.icon}
}

type bucket struct {
	keywords []string
	image    string
}

// Order matters: the first bucket with a matching keyword wins.
var backgrounds = []bucket{
	{[]string{"rain"}, "https://images.unsplash.com/photo-1526676037777-3490f52a3e59"},
	{[]string{"cloud"}, "https://images.unsplash.com/photo-1499346030926-9a72daac6c63"},
	{[]string{"clear", "sun"}, "https://images.unsplash.com/photo-1501973801540-537f08ccae7b"},
	{[]string{"snow"}, "https://images.unsplash.com/photo-1516455207990-7a41ce80f7ee"},
	{[]string{"mist", "haze", "fog"}, "https://images.unsplash.com/photo-1482192596544-9eb780fc7f66"},
}

// Background picks the page background for a condition label.
func Background(label string) string {
	c := strings.ToLower(label)
	for _, b := range backgrounds {
		for _, kw := range b.keywords {
			if strings.Contains(c, kw) {
				return b.image
			}
		}
	}
	return FallbackBackground
}
