package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

const tracerName = "github.com/bobby-s-dev/weather-widget/internal/services"

var validate = validator.New()

// Recorder receives pipeline measurements.
type Recorder interface {
	ObserveLookup(provider, outcome string, d time.Duration)
	ObserveStage(provider, stage string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLookup(string, string, time.Duration) {}
func (nopRecorder) ObserveStage(string, string, time.Duration)  {}

// Pipeline runs one lookup: validate, resolve, fetch.
type Pipeline struct {
	backend  Backend
	logger   *zap.Logger
	recorder Recorder
	tracer   trace.Tracer
}

func NewPipeline(backend Backend, recorder Recorder, logger *zap.Logger) *Pipeline {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Pipeline{
		backend:  backend,
		logger:   logger,
		recorder: recorder,
		tracer:   otel.Tracer(tracerName),
	}
}

func (p *Pipeline) Provider() string {
	return p.backend.Name()
}

// Lookup returns a report or a *LookupError.
func (p *Pipeline) Lookup(ctx context.Context, query models.LocationQuery) (*models.WeatherReport, error) {
	startTime := time.Now()
	provider := p.backend.Name()

	ctx, span := p.tracer.Start(ctx, "weather.lookup", trace.WithAttributes(
		attribute.String("weather.provider", provider),
		attribute.Bool("weather.by_coordinates", query.IsCoordinates()),
	))
	defer span.End()

	report, err := p.lookup(ctx, query)

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, UserMessage(err))
	}
	p.recorder.ObserveLookup(provider, outcome, time.Since(startTime))

	if err != nil {
		p.logger.Warn("Weather lookup failed",
			zap.String("provider", provider),
			zap.String("city", query.City),
			zap.String("outcome", outcome),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return nil, err
	}

	p.logger.Info("Weather lookup completed",
		zap.String("provider", provider),
		zap.String("location", report.Location.DisplayName),
		zap.Int("forecast_days", len(report.Forecast)),
		zap.Duration("duration", time.Since(startTime)))

	return report, nil
}

func (p *Pipeline) lookup(ctx context.Context, query models.LocationQuery) (*models.WeatherReport, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	loc, err := p.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.fetch(ctx, loc)
}

func (p *Pipeline) resolve(ctx context.Context, query models.LocationQuery) (models.ResolvedLocation, error) {
	ctx, span := p.tracer.Start(ctx, "weather.resolve")
	defer span.End()

	start := time.Now()
	loc, err := p.backend.Resolve(ctx, query)
	p.recorder.ObserveStage(p.backend.Name(), "resolve", time.Since(start))
	if err != nil {
		span.RecordError(err)
		return models.ResolvedLocation{}, classify(err, MsgCityNotFound)
	}

	span.SetAttributes(
		attribute.String("weather.location", loc.DisplayName),
		attribute.Float64("weather.latitude", loc.Latitude),
		attribute.Float64("weather.longitude", loc.Longitude),
	)
	return loc, nil
}

func (p *Pipeline) fetch(ctx context.Context, loc models.ResolvedLocation) (*models.WeatherReport, error) {
	ctx, span := p.tracer.Start(ctx, "weather.fetch")
	defer span.End()

	start := time.Now()
	report, err := p.backend.Fetch(ctx, loc)
	p.recorder.ObserveStage(p.backend.Name(), "fetch", time.Since(start))
	if err != nil {
		span.RecordError(err)
		return nil, classify(err, MsgCityNotFound)
	}
	return report, nil
}

func validateQuery(query models.LocationQuery) error {
	if query.IsCoordinates() {
		// NaN compares false against min and max, so the tags let it through.
		if math.IsNaN(query.Coords.Latitude) || math.IsNaN(query.Coords.Longitude) {
			return NotFound(MsgInvalidCoords, fmt.Errorf("%w: coordinates are NaN", ErrInvalidQuery))
		}
		if err := validate.Struct(query.Coords); err != nil {
			return NotFound(MsgInvalidCoords, fmt.Errorf("%w: %v", ErrInvalidQuery, err))
		}
		return nil
	}
	if strings.TrimSpace(query.City) == "" {
		return NotFound(MsgEmptyQuery, ErrInvalidQuery)
	}
	return nil
}
