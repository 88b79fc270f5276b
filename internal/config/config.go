package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port         string        `envconfig:"FIBER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"FIBER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"FIBER_WRITE_TIMEOUT" default:"10s"`
	StaticDir    string        `envconfig:"STATIC_DIR" default:"./web/static"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`
}

type ProviderConfig struct {
	Name              string        `envconfig:"WEATHER_PROVIDER" default:"open-meteo"`
	OpenWeatherAPIKey string        `envconfig:"OPENWEATHER_API_KEY"`
	OpenWeatherURL    string        `envconfig:"OPENWEATHER_URL" default:"https://api.openweathermap.org/data/2.5"`
	OpenMeteoURL      string        `envconfig:"OPENMETEO_URL" default:"https://api.open-meteo.com/v1"`
	GeocodingURL      string        `envconfig:"OPENMETEO_GEOCODING_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	Timeout           time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
}

type WidgetConfig struct {
	DefaultCity   string        `envconfig:"DEFAULT_CITY" default:"London"`
	LocationLabel string        `envconfig:"LOCATION_LABEL" default:"Your Location"`
	ExtremeTempC  float64       `envconfig:"EXTREME_TEMP_C" default:"40"`
	LookupTimeout time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"30s"`
	IdleTTL       time.Duration `envconfig:"WIDGET_IDLE_TTL" default:"30m"`
	MaxInstances  int           `envconfig:"WIDGET_MAX_INSTANCES" default:"1000"`
	SweepSchedule string        `envconfig:"WIDGET_SWEEP_SCHEDULE" default:"@every 1m"`
}

type CircuitBreakerConfig struct {
	Threshold uint32        `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
	Interval  time.Duration `envconfig:"CIRCUIT_BREAKER_INTERVAL" default:"1m"`
	Timeout   time.Duration `envconfig:"CIRCUIT_BREAKER_TIMEOUT" default:"30s"`
}

type TelemetryConfig struct {
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"weather-widget"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
}

type Config struct {
	Server         ServerConfig
	Log            LogConfig
	Provider       ProviderConfig
	Widget         WidgetConfig
	CircuitBreaker CircuitBreakerConfig
	Telemetry      TelemetryConfig
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider.Name) {
	case "open-meteo":
	case "openweathermap":
		if c.Provider.OpenWeatherAPIKey == "" {
			return fmt.Errorf("WEATHER_PROVIDER=openweathermap requires OPENWEATHER_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported WEATHER_PROVIDER %q", c.Provider.Name)
	}

	if strings.TrimSpace(c.Widget.DefaultCity) == "" {
		return fmt.Errorf("DEFAULT_CITY must not be empty")
	}
	if c.Widget.MaxInstances <= 0 {
		return fmt.Errorf("WIDGET_MAX_INSTANCES must be positive")
	}
	if c.Widget.IdleTTL <= 0 {
		return fmt.Errorf("WIDGET_IDLE_TTL must be positive")
	}
	return nil
}
