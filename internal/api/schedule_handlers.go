package api

import (
	"context"
	"errors"

	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/livestatus"
	"github.com/easyrail/easyrail_core/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

// AtStation handles GET /v1/stations/:code/trains
func (h *Handler) AtStation(c *fiber.Ctx) error {
	code, err := atStationCode(c.Params("code"))
	if err != nil {
		return badRequest(c, err)
	}

	ctx := c.UserContext()
	body, err := h.Cache.GetOrLoad(ctx, cache.FeedKey("station", code), h.TTL.StationTTL(), func(ctx context.Context) ([]byte, error) {
		return h.Upstream.AtStation(ctx, code)
	})
	if err != nil {
		return upstreamFailure(c, "at-station", err)
	}

	trains, err := upstream.DecodeAtStation(body)
	if errors.Is(err, upstream.ErrNoTrains) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No trains found at station: " + code})
	}
	if err != nil {
		return upstreamFailure(c, "at-station", err)
	}

	return c.JSON(fiber.Map{
		"station": code,
		"trains":  trains,
		"total":   len(trains),
	})
}

// LiveStatus handles GET /v1/live-status/:number
func (h *Handler) LiveStatus(c *fiber.Ctx) error {
	number, date, err := h.liveParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	summary, err := h.Live.Get(c.UserContext(), number, date)
	if err != nil {
		return liveFailure(c, err)
	}
	return c.JSON(summary)
}

// WatchLiveStatus handles POST /v1/live-status/:number/watch
func (h *Handler) WatchLiveStatus(c *fiber.Ctx) error {
	number, date, err := h.liveParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	summary, err := h.Live.Watch(c.UserContext(), number, date)
	if errors.Is(err, livestatus.ErrTooManyWatches) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return liveFailure(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"watching": true,
		"status":   summary,
	})
}

// UnwatchLiveStatus handles DELETE /v1/live-status/:number/watch
func (h *Handler) UnwatchLiveStatus(c *fiber.Ctx) error {
	number, date, err := h.liveParams(c)
	if err != nil {
		return badRequest(c, err)
	}

	return c.JSON(fiber.Map{
		"watching": false,
		"stopped":  h.Live.Unwatch(number, date),
	})
}

func (h *Handler) liveParams(c *fiber.Ctx) (string, string, error) {
	number, err := trainNumber(c.Params("number"))
	if err != nil {
		return "", "", err
	}
	_, date, err := journeyDate(c.Query("date"), h.now())
	if err != nil {
		return "", "", err
	}
	return number, date, nil
}

func liveFailure(c *fiber.Ctx, err error) error {
	if errors.Is(err, livestatus.ErrNoDetails) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return upstreamFailure(c, "live-status", err)
}
