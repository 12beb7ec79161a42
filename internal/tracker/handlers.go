package tracker

import (
	"errors"
	"strconv"
	"time"

	"backend-globetrekker/internal/journey"
	"backend-globetrekker/internal/routing"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Put("/", func(c *fiber.Ctx) error {
		var req RouteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		view, err := svc.SetRoute(c.Context(), userIDFrom(c), req)
		if errors.Is(err, routing.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(view)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		view, err := svc.View(c.Context(), userIDFrom(c))
		return respond(c, view, err)
	})

	r.Get("/progress", func(c *fiber.Ctx) error {
		progress, err := svc.Progress(c.Context(), userIDFrom(c))
		return respond(c, progress, err)
	})

	r.Get("/checkpoints", func(c *fiber.Ctx) error {
		mode := journey.PeriodMode(c.Query("mode", string(journey.PeriodAll)))
		days, _ := strconv.Atoi(c.Query("days", "7"))

		var custom journey.DateRange
		if mode == journey.PeriodCustom {
			start, startErr := time.Parse(journey.DateFormat, c.Query("start"))
			end, endErr := time.Parse(journey.DateFormat, c.Query("end"))
			if startErr != nil || endErr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start and end must be YYYY-MM-DD")
			}
			custom = journey.DateRange{Start: start, End: end}
		}

		resp, err := svc.Checkpoints(c.Context(), userIDFrom(c), mode, days, custom, time.Now())
		if errors.Is(err, journey.ErrInvalidRange) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c, resp, err)
	})

	r.Get("/segment", func(c *fiber.Ctx) error {
		startKm, startErr := strconv.ParseFloat(c.Query("start_km", "0"), 64)
		endKm, endErr := strconv.ParseFloat(c.Query("end_km"), 64)
		if startErr != nil || endErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_km and end_km must be numbers")
		}
		segment, err := svc.Segment(c.Context(), userIDFrom(c), startKm, endKm)
		if errors.Is(err, ErrNotRouted) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return respond(c, segment, err)
	})
}

func respond(c *fiber.Ctx, body interface{}, err error) error {
	if errors.Is(err, ErrNoJourney) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(body)
}

func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
