package places

import (
	"strconv"

	"backend-globetrekker/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, client *Client, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		radius, _ := strconv.ParseFloat(c.Query("radius_km", "5"), 64)

		results, err := client.Nearby(c.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if results == nil {
			results = []Place{}
		}
		return c.JSON(results)
	})
}
