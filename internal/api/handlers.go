package api

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/config"
	"github.com/easyrail/easyrail_core/internal/directory"
	"github.com/easyrail/easyrail_core/internal/erail"
	"github.com/easyrail/easyrail_core/internal/livestatus"
	"github.com/easyrail/easyrail_core/internal/models"
	"github.com/easyrail/easyrail_core/internal/pantry"
	"github.com/easyrail/easyrail_core/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

// Upstream fetches raw feed bodies
type Upstream interface {
	TrainsBetween(ctx context.Context, from, to string) (string, error)
	TrainByNumber(ctx context.Context, number string) (string, error)
	Route(ctx context.Context, trainID string) (string, error)
	AtStation(ctx context.Context, code string) ([]byte, error)
	PNR(ctx context.Context, pnr string) ([]byte, error)
	Availability(ctx context.Context, from, to, date string) ([]byte, error)
}

// Directory searches the station and train lists
type Directory interface {
	SearchStations(ctx context.Context, q string, limit int) ([]models.Station, error)
	SuggestTrains(ctx context.Context, q string, limit int) ([]models.TrainSuggestion, error)
}

// LiveStatus serves running status summaries
type LiveStatus interface {
	Get(ctx context.Context, number, date string) (livestatus.Summary, error)
	Watch(ctx context.Context, number, date string) (livestatus.Summary, error)
	Unwatch(number, date string) bool
	WatchCount() int
}

// Cache keeps raw feed bodies
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load cache.Loader) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Check reports the health of one dependency
type Check func(ctx context.Context) error

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	Upstream  Upstream
	Directory Directory
	Live      LiveStatus
	Cache     Cache
	Pantry    *pantry.Service
	TTL       config.CacheConfig
	Checks    map[string]Check
	Stats     map[string]func() map[string]interface{}
}

// Handler serves the HTTP API
type Handler struct {
	Deps
	now func() time.Time
}

func New(deps Deps) *Handler {
	if deps.Pantry == nil {
		deps.Pantry = pantry.NewService(pantry.DefaultMenu())
	}
	return &Handler{Deps: deps, now: time.Now}
}

// Register mounts every route on app
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	v1 := app.Group("/v1")
	v1.Get("/trains/between", h.TrainsBetween)
	v1.Get("/trains/suggest", h.SuggestTrains)
	v1.Get("/trains/:number", h.TrainByNumber)
	v1.Get("/routes/:trainId", h.Route)

	v1.Get("/stations/search", h.SearchStations)
	v1.Get("/stations/:code/trains", h.AtStation)

	v1.Get("/live-status/:number", h.LiveStatus)
	v1.Post("/live-status/:number/watch", h.WatchLiveStatus)
	v1.Delete("/live-status/:number/watch", h.UnwatchLiveStatus)

	v1.Get("/pnr/:pnr", h.PNRStatus)
	v1.Get("/availability", h.Availability)
	v1.Get("/seats", h.Seats)

	v1.Get("/pantry/menu", h.PantryMenu)
	v1.Post("/pantry/orders", h.PlaceOrder)
	v1.Post("/disha/messages", h.AskDisha)
}

// Health handles the /health endpoint
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()

	status := "healthy"
	httpStatus := fiber.StatusOK
	checks := fiber.Map{}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = "unhealthy"
			httpStatus = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	stats := fiber.Map{}
	for name, stat := range h.Stats {
		stats[name] = stat()
	}
	if h.Live != nil {
		stats["live_watches"] = h.Live.WatchCount()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"stats":  stats,
	})
}

// TrainsBetween handles GET /v1/trains/between
func (h *Handler) TrainsBetween(c *fiber.Ctx) error {
	from, err := stationCode(c.Query("from"), "from")
	if err != nil {
		return badRequest(c, err)
	}
	to, err := stationCode(c.Query("to"), "to")
	if err != nil {
		return badRequest(c, err)
	}

	var date time.Time
	dateStr := c.Query("date")
	if dateStr != "" {
		if date, _, err = journeyDate(dateStr, h.now()); err != nil {
			return badRequest(c, err)
		}
	}

	ctx := c.UserContext()
	key := cache.FeedKey("between", from, to)
	raw, err := h.fetchText(ctx, key, h.TTL.SearchTTL(), func(ctx context.Context) (string, error) {
		return h.Upstream.TrainsBetween(ctx, from, to)
	})
	if err != nil {
		return upstreamFailure(c, "between", err)
	}

	res := erail.DecodeTrainsBetween(raw)
	if res.Success() && dateStr != "" {
		res.Data = erail.FilterRunningOn(res.Data, date)
	}
	return h.sendResult(c, key, res.Outcome, res.Message, res)
}

// TrainResponse is a train with its route when the route could be fetched
type TrainResponse struct {
	Train models.TrainDetailRecord    `json:"train"`
	Route []models.RouteStationRecord `json:"route,omitempty"`
}

// TrainByNumber handles GET /v1/trains/:number
func (h *Handler) TrainByNumber(c *fiber.Ctx) error {
	number, err := trainQuery(c.Params("number"))
	if err != nil {
		return badRequest(c, err)
	}

	ctx := c.UserContext()
	key := cache.FeedKey("train", number)
	raw, err := h.fetchText(ctx, key, h.TTL.TrainTTL(), func(ctx context.Context) (string, error) {
		return h.Upstream.TrainByNumber(ctx, number)
	})
	if err != nil {
		return upstreamFailure(c, "train", err)
	}

	res := erail.DecodeTrainByNumber(raw)
	if !res.Success() {
		return h.sendResult(c, key, res.Outcome, res.Message, res)
	}

	resp := TrainResponse{Train: res.Data}
	if id := res.Data.TrainID; id != "" {
		route, err := h.route(ctx, id)
		switch {
		case err != nil:
			log.Printf("Warning: route of train %s unavailable: %v", number, err)
		case route.Success():
			resp.Route = route.Data
		default:
			log.Printf("Warning: route of train %s not decoded: %s", number, route.Message)
			if route.Outcome == erail.OutcomeParseError {
				h.evict(ctx, cache.FeedKey("route", id))
			}
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": resp})
}

// Route handles GET /v1/routes/:trainId
func (h *Handler) Route(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("trainId"))
	if !trainIDPattern.MatchString(id) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid train id"})
	}

	res, err := h.route(c.UserContext(), id)
	if err != nil {
		return upstreamFailure(c, "route", err)
	}
	return h.sendResult(c, cache.FeedKey("route", id), res.Outcome, res.Message, res)
}

func (h *Handler) route(ctx context.Context, id string) (erail.Result[[]models.RouteStationRecord], error) {
	raw, err := h.fetchText(ctx, cache.FeedKey("route", id), h.TTL.RouteTTL(), func(ctx context.Context) (string, error) {
		return h.Upstream.Route(ctx, id)
	})
	if err != nil {
		return erail.Result[[]models.RouteStationRecord]{}, err
	}
	return erail.DecodeRoute(raw), nil
}

// SuggestTrains handles GET /v1/trains/suggest
func (h *Handler) SuggestTrains(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required parameter: q"})
	}

	trains, err := h.Directory.SuggestTrains(c.UserContext(), q, directory.TrainLimit)
	if err != nil {
		log.Printf("Train suggest error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"trains": trains, "total": len(trains)})
}

// SearchStations handles GET /v1/stations/search
func (h *Handler) SearchStations(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required parameter: q"})
	}

	stations, err := h.Directory.SearchStations(c.UserContext(), q, directory.StationLimit)
	if err != nil {
		log.Printf("Station search error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(fiber.Map{"stations": stations, "total": len(stations)})
}

// fetchText loads a text feed through the cache
func (h *Handler) fetchText(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (string, error)) (string, error) {
	data, err := h.Cache.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		raw, err := fetch(ctx)
		return []byte(raw), err
	})
	return string(data), err
}

// sendResult writes a decoder result. Transient upstream answers and bodies
// that did not decode are evicted from the cache so the next request asks again.
func (h *Handler) sendResult(c *fiber.Ctx, key string, outcome erail.Outcome, message string, res interface{}) error {
	status := fiber.StatusOK
	switch outcome {
	case erail.OutcomeUpstream:
		status = fiber.StatusNotFound
		if erail.Transient(message) {
			status = fiber.StatusServiceUnavailable
			h.evict(c.UserContext(), key)
		}
	case erail.OutcomeParseError:
		status = fiber.StatusBadGateway
		h.evict(c.UserContext(), key)
	}
	return c.Status(status).JSON(res)
}

func (h *Handler) evict(ctx context.Context, key string) {
	if err := h.Cache.Delete(ctx, key); err != nil {
		log.Printf("Warning: failed to evict %s: %v", key, err)
	}
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// upstreamFailure answers 502, passing on the upstream's own message
func upstreamFailure(c *fiber.Ctx, feed string, err error) error {
	log.Printf("Warning: %s upstream failed: %v", feed, err)

	message := "upstream service unavailable"
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr.Message() != "" {
		message = statusErr.Message()
	}
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": message})
}
