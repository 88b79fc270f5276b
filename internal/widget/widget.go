package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/services"
)

// ErrStaleLookup is returned by a lookup whose result was discarded because
// a newer lookup started on the same widget.
var ErrStaleLookup = errors.New("lookup superseded by a newer one")

const DefaultCity = "London"

type Pipeline interface {
	Lookup(ctx context.Context, query models.LocationQuery) (*models.WeatherReport, error)
}

type Options struct {
	DefaultCity   string
	LocationLabel string
	// OnStale is called each time a stale result is dropped.
	OnStale func()
}

// Widget is one widget instance. Lookups may overlap; only the most
// recently started one writes to the view.
type Widget struct {
	id        string
	pipeline  Pipeline
	presenter *Presenter
	opts      Options
	logger    *zap.Logger

	mu         sync.Mutex
	view       View
	generation uint64
}

func New(id string, pipeline Pipeline, presenter *Presenter, opts Options, logger *zap.Logger) *Widget {
	if opts.DefaultCity == "" {
		opts.DefaultCity = DefaultCity
	}
	if opts.LocationLabel == "" {
		opts.LocationLabel = models.DefaultLocationLabel
	}
	return &Widget{
		id:        id,
		pipeline:  pipeline,
		presenter: presenter,
		opts:      opts,
		logger:    logger.With(zap.String("widget_id", id)),
	}
}

func (w *Widget) ID() string {
	return w.id
}

// View returns a copy of the current view.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view.clone()
}

// Begin enters the loading state and returns the generation of the new
// lookup. Callers that run the lookup asynchronously pass it to Run.
func (w *Widget) Begin() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.view.showLoading()
	return w.generation
}

// Lookup runs one lookup to completion on the caller's goroutine.
func (w *Widget) Lookup(ctx context.Context, query models.LocationQuery) error {
	return w.Run(ctx, w.Begin(), query)
}

// Run completes the lookup started by Begin. Loading is left exactly once,
// on every exit path, unless a newer lookup has taken over the view.
func (w *Widget) Run(ctx context.Context, gen uint64, query models.LocationQuery) (err error) {
	var report *models.WeatherReport

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Weather lookup panicked", zap.Any("panic", r))
			report, err = nil, services.Unavailable(fmt.Errorf("lookup panic: %v", r))
		}
		if !w.commit(gen, report, err) {
			err = ErrStaleLookup
		}
	}()

	report, err = w.pipeline.Lookup(ctx, query)
	return err
}

// Load is the page-load path: the caller's position when the locator
// grants it, the default city otherwise.
func (w *Widget) Load(ctx context.Context, locator Locator) error {
	coords, err := locator.Locate(ctx)
	if err != nil {
		w.logger.Info("Location unavailable, using default city",
			zap.String("city", w.opts.DefaultCity),
			zap.Error(err))
		return w.Lookup(ctx, models.CityQuery(w.opts.DefaultCity))
	}
	return w.Lookup(ctx, models.CoordsQuery(coords.Latitude, coords.Longitude, w.opts.LocationLabel))
}

func (w *Widget) commit(gen uint64, report *models.WeatherReport, err error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		w.logger.Debug("Dropping stale lookup result",
			zap.Uint64("generation", gen),
			zap.Uint64("current", w.generation))
		if w.opts.OnStale != nil {
			w.opts.OnStale()
		}
		return false
	}

	if err != nil {
		ReportError(&w.view, services.UserMessage(err))
	} else if w.presenter.Present(&w.view, report) {
		w.logger.Warn("Extreme temperature alert",
			zap.String("location", report.Location.DisplayName),
			zap.Float64("temperature_c", report.Current.TemperatureC))
	}
	w.view.hideLoading()
	return true
}
