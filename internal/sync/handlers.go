package sync

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/walks", func(c *fiber.Ctx) error {
		var req PushRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		result, err := svc.Push(c.Context(), userIDFrom(c), req.Walks)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})

	r.Get("/walks", func(c *fiber.Ctx) error {
		var since time.Time
		if raw := c.Query("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "since must be RFC3339")
			}
			since = parsed
		}
		result, err := svc.Pull(c.Context(), userIDFrom(c), since)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(result)
	})
}

func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
