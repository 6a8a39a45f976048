package profile

import (
	"errors"

	"github.com/zoonmattau/healthtracker-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(status(err), err.Error())
		}
		return c.JSON(p)
	})

	r.Put("/", authMiddleware, func(c *fiber.Ctx) error {
		var patch Profile
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		p, err := svc.Update(c.Context(), auth.UserID(c), patch)
		if err != nil {
			return fiber.NewError(status(err), err.Error())
		}
		return c.JSON(p)
	})
}

func status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidUnit), errors.Is(err, ErrInvalid):
		return fiber.StatusBadRequest
	}
	return fiber.StatusBadGateway
}
