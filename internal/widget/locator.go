package widget

import (
	"context"
	"errors"

	"github.com/bobby-s-dev/weather-widget/internal/models"
)

var ErrLocationDenied = errors.New("location access denied")

// Locator yields the caller's position, or ErrLocationDenied.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

type StaticLocator models.Coordinates

func (l StaticLocator) Locate(context.Context) (models.Coordinates, error) {
	return models.Coordinates(l), nil
}

type DeniedLocator struct{}

func (DeniedLocator) Locate(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrLocationDenied
}
