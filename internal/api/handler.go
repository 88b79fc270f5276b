package api

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-widget/internal/models"
	"github.com/bobby-s-dev/weather-widget/internal/services"
	"github.com/bobby-s-dev/weather-widget/internal/widget"
)

const (
	widgetCookie = "widget_id"

	locateParam  = "locate"
	locateDenied = "denied"
)

type Looker interface {
	Lookup(ctx context.Context, query models.LocationQuery) (*models.WeatherReport, error)
	Provider() string
}

type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type Handler struct {
	pipeline      Looker
	registry      *widget.Registry
	scheduler     StatusReporter
	logger        *zap.Logger
	lookupTimeout time.Duration
	locationLabel string
}

func NewHandler(pipeline Looker, registry *widget.Registry, scheduler StatusReporter, lookupTimeout time.Duration, locationLabel string, logger *zap.Logger) *Handler {
	if locationLabel == "" {
		locationLabel = models.DefaultLocationLabel
	}
	return &Handler{
		pipeline:      pipeline,
		registry:      registry,
		scheduler:     scheduler,
		logger:        logger,
		lookupTimeout: lookupTimeout,
		locationLabel: locationLabel,
	}
}

type lookupRequest struct {
	City  string   `json:"city"`
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Label string   `json:"label"`
}

type widgetResponse struct {
	ID    string       `json:"id"`
	State widget.State `json:"state"`
	View  widget.View  `json:"view"`
}

func newWidgetResponse(w *widget.Widget) widgetResponse {
	v := w.View()
	return widgetResponse{ID: w.ID(), State: v.State(), View: v}
}

// GetPage handles GET /. An idle widget is rendered with a script that asks
// the browser for its position and comes back with ?lat=&lon=, or with
// ?locate=denied when the position is refused or unsupported.
func (h *Handler) GetPage(c *fiber.Ctx) error {
	w := h.widgetFromCookie(c)

	city, hasCity := queryValue(c, "city")
	locator, hasCoords, err := locatorFromRequest(c)
	if err != nil {
		return err
	}
	denied := c.Query(locateParam) == locateDenied

	ctx, cancel := h.lookupContext(c.UserContext())
	defer cancel()

	switch {
	case hasCity:
		err = w.Lookup(ctx, models.CityQuery(city))
	case hasCoords:
		err = w.Load(ctx, locator)
	case denied && w.View().State() == widget.StateIdle:
		err = w.Load(ctx, widget.DeniedLocator{})
	}
	if err != nil && !errors.Is(err, widget.ErrStaleLookup) {
		h.logger.Debug("Page lookup finished with error",
			zap.String("widget_id", w.ID()),
			zap.Error(err))
	}

	html, err := renderPage(w)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

// CreateWidget handles POST /api/v1/widgets
func (h *Handler) CreateWidget(c *fiber.Ctx) error {
	w := h.registry.Create()
	return c.Status(fiber.StatusCreated).JSON(newWidgetResponse(w))
}

// GetWidget handles GET /api/v1/widgets/:id
func (h *Handler) GetWidget(c *fiber.Ctx) error {
	w, err := h.widget(c)
	if err != nil {
		return err
	}
	return c.JSON(newWidgetResponse(w))
}

// DeleteWidget handles DELETE /api/v1/widgets/:id
func (h *Handler) DeleteWidget(c *fiber.Ctx) error {
	if !h.registry.Remove(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "Widget not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartLookup handles POST /api/v1/widgets/:id/lookup. The lookup runs in
// the background; poll GET /api/v1/widgets/:id for the result.
func (h *Handler) StartLookup(c *fiber.Ctx) error {
	w, err := h.widget(c)
	if err != nil {
		return err
	}

	var req lookupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	var query models.LocationQuery
	switch {
	case req.Lat != nil && req.Lon != nil:
		label := req.Label
		if label == "" {
			label = h.locationLabel
		}
		query = models.CoordsQuery(*req.Lat, *req.Lon, label)
	case req.Lat != nil || req.Lon != nil:
		return fiber.NewError(fiber.StatusBadRequest, "Both lat and lon are required")
	default:
		query = models.CityQuery(req.City)
	}

	gen := w.Begin()
	go func() {
		ctx, cancel := h.lookupContext(context.Background())
		defer cancel()

		if err := w.Run(ctx, gen, query); err != nil && !errors.Is(err, widget.ErrStaleLookup) {
			h.logger.Debug("Background lookup finished with error",
				zap.String("widget_id", w.ID()),
				zap.Error(err))
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(newWidgetResponse(w))
}

// GetWeather handles GET /api/v1/weather
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	query, ok, err := h.parseQuery(c)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "City or lat/lon parameters are required")
	}

	ctx, cancel := h.lookupContext(c.UserContext())
	defer cancel()

	report, err := h.pipeline.Lookup(ctx, query)
	if err != nil {
		return fiber.NewError(statusFor(err), services.UserMessage(err))
	}
	return c.JSON(report)
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"provider":  h.pipeline.Provider(),
		"widgets":   h.registry.Stats(),
	}
	if h.scheduler != nil {
		resp["scheduler"] = h.scheduler.GetStatus()
	}
	return c.JSON(resp)
}

func (h *Handler) widget(c *fiber.Ctx) (*widget.Widget, error) {
	w, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Widget not found")
	}
	return w, nil
}

func (h *Handler) widgetFromCookie(c *fiber.Ctx) *widget.Widget {
	if id := c.Cookies(widgetCookie); id != "" {
		if w, ok := h.registry.Get(id); ok {
			return w
		}
	}

	w := h.registry.Create()
	c.Cookie(&fiber.Cookie{
		Name:     widgetCookie,
		Value:    w.ID(),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return w
}

func (h *Handler) lookupContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.lookupTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.lookupTimeout)
}

// parseQuery reads ?city= or ?lat=&lon=. ok is false when neither is given.
func (h *Handler) parseQuery(c *fiber.Ctx) (models.LocationQuery, bool, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr != "" || lonStr != "" {
		lat, lon, ok := parseCoords(latStr, lonStr)
		if !ok {
			return models.LocationQuery{}, false, fiber.NewError(fiber.StatusBadRequest, services.MsgInvalidCoords)
		}
		return models.CoordsQuery(lat, lon, c.Query("label", h.locationLabel)), true, nil
	}

	if city, exists := queryValue(c, "city"); exists {
		return models.CityQuery(city), true, nil
	}
	return models.LocationQuery{}, false, nil
}

// queryValue distinguishes an empty ?city= from an absent one.
func queryValue(c *fiber.Ctx, key string) (string, bool) {
	args := c.Context().QueryArgs()
	if !args.Has(key) {
		return "", false
	}
	return string(args.Peek(key)), true
}

// locatorFromRequest turns the position the page reports as ?lat=&lon= into
// a Locator. ok is false when neither is given.
func locatorFromRequest(c *fiber.Ctx) (widget.Locator, bool, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, false, nil
	}

	lat, lon, ok := parseCoords(latStr, lonStr)
	if !ok {
		return nil, false, fiber.NewError(fiber.StatusBadRequest, services.MsgInvalidCoords)
	}
	return widget.StaticLocator{Latitude: lat, Longitude: lon}, true, nil
}

// parseCoords accepts any float ParseFloat does except NaN.
func parseCoords(latStr, lonStr string) (float64, float64, bool) {
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		return fiber.StatusBadRequest
	case services.KindOf(err) == services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

var startTime = time.Now()
