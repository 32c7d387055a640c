package api

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/easyrail/easyrail_core/internal/availability"
	"github.com/easyrail/easyrail_core/internal/cache"
	"github.com/easyrail/easyrail_core/internal/disha"
	"github.com/easyrail/easyrail_core/internal/pantry"
	"github.com/easyrail/easyrail_core/internal/seats"
	"github.com/easyrail/easyrail_core/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

const maxCoachSeats = 200

// PNRStatus handles GET /v1/pnr/:pnr
func (h *Handler) PNRStatus(c *fiber.Ctx) error {
	pnr, err := pnrNumber(c.Params("pnr"))
	if err != nil {
		return badRequest(c, err)
	}

	body, err := h.Upstream.PNR(c.UserContext(), pnr)
	if err != nil {
		return upstreamFailure(c, "pnr", err)
	}

	status, err := upstream.DecodePNR(body)
	if errors.Is(err, upstream.ErrPNRNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return upstreamFailure(c, "pnr", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    status,
		"chart":   upstream.ChartState(status.ChartStatus),
	})
}

// Availability handles GET /v1/availability
func (h *Handler) Availability(c *fiber.Ctx) error {
	from, err := stationCode(c.Query("from"), "from")
	if err != nil {
		return badRequest(c, err)
	}
	to, err := stationCode(c.Query("to"), "to")
	if err != nil {
		return badRequest(c, err)
	}
	if c.Query("date") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing required parameter: date"})
	}
	date, err := availability.UpstreamDate(c.Query("date"))
	if err != nil {
		return badRequest(c, err)
	}

	ctx := c.UserContext()
	body, err := h.Cache.GetOrLoad(ctx, cache.FeedKey("availability", from, to, date), h.TTL.AvailabilityTTL(), func(ctx context.Context) ([]byte, error) {
		return h.Upstream.Availability(ctx, from, to, date)
	})
	if err != nil {
		return upstreamFailure(c, "availability", err)
	}

	trains, err := availability.Decode(body)
	if errors.Is(err, availability.ErrNoData) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return upstreamFailure(c, "availability", err)
	}

	return c.JSON(fiber.Map{"trains": trains, "total": len(trains)})
}

// Seats handles GET /v1/seats
func (h *Handler) Seats(c *fiber.Ctx) error {
	req := seats.Request{
		Train: strings.TrimSpace(c.Query("train")),
		Class: strings.ToUpper(strings.TrimSpace(c.Query("class"))),
		Date:  strings.TrimSpace(c.Query("date")),
		Total: seats.DefaultTotal,
	}

	if raw := c.Query("total"); raw != "" {
		total, err := strconv.Atoi(raw)
		if err != nil || total < 1 || total > maxCoachSeats {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "total must be between 1 and 200"})
		}
		req.Total = total
	}

	booked := seats.BookedIDs(req)
	return c.JSON(fiber.Map{
		"seed":      req.Seed(),
		"total":     req.Total,
		"booked":    booked,
		"available": req.Total - len(booked),
	})
}

// PantryMenu handles GET /v1/pantry/menu
func (h *Handler) PantryMenu(c *fiber.Ctx) error {
	return c.JSON(h.Pantry.Menu())
}

// PlaceOrder handles POST /v1/pantry/orders
func (h *Handler) PlaceOrder(c *fiber.Ctx) error {
	var req pantry.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	order, err := h.Pantry.PlaceOrder(req)
	if err != nil {
		return badRequest(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// DishaRequest is one chat message
type DishaRequest struct {
	Message string `json:"message"`
}

// AskDisha handles POST /v1/disha/messages
func (h *Handler) AskDisha(c *fiber.Ctx) error {
	var req DishaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	reply, err := disha.Respond(req.Message)
	if err != nil {
		return badRequest(c, err)
	}
	return c.JSON(reply)
}
