package walk

import (
	"errors"

	"backend-globetrekker/internal/journey"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/", func(c *fiber.Ctx) error {
		var req WalkInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		entry, err := svc.Log(c.Context(), userIDFrom(c), req)
		if errors.Is(err, journey.ErrDuplicateID) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		entries, err := svc.History(c.Context(), userIDFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if entries == nil {
			entries = []journey.Entry{}
		}
		return c.JSON(entries)
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), userIDFrom(c), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/import", func(c *fiber.Ctx) error {
		var req ImportRequest
		if err := c.BodyParser(&req); err != nil || req.Data == "" {
			return fiber.NewError(fiber.StatusBadRequest, "data required")
		}
		report, err := svc.Import(c.Context(), userIDFrom(c), req.Data)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(report)
	})

	r.Get("/export", func(c *fiber.Ctx) error {
		snap, err := svc.Export(c.Context(), userIDFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(snap)
	})

	r.Get("/exports", func(c *fiber.Ctx) error {
		records, err := svc.Exports(c.Context(), userIDFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if records == nil {
			records = []ExportRecord{}
		}
		return c.JSON(records)
	})

	r.Post("/restore", func(c *fiber.Ctx) error {
		var snap Snapshot
		if err := c.BodyParser(&snap); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		count, err := svc.Restore(c.Context(), userIDFrom(c), snap)
		if errors.Is(err, ErrSnapshotVersion) {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"restored_count": count})
	})

	r.Post("/exports/:id/restore", func(c *fiber.Ctx) error {
		count, err := svc.RestoreExport(c.Context(), userIDFrom(c), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(fiber.Map{"restored_count": count})
	})
}

func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
