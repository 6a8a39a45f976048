package timer

import (
	"errors"

	"github.com/zoonmattau/healthtracker-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	controller := func(c *fiber.Ctx) *Controller {
		return svc.For(c.Context(), auth.UserID(c))
	}

	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(controller(c).State())
	})

	r.Post("/start", func(c *fiber.Ctx) error {
		var body struct {
			DurationSeconds int `json:"duration_seconds"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
		}
		if body.DurationSeconds < 0 {
			return fiber.NewError(fiber.StatusBadRequest, ErrInvalidDuration.Error())
		}
		return c.JSON(controller(c).Start(body.DurationSeconds))
	})

	r.Post("/pause", func(c *fiber.Ctx) error {
		return c.JSON(controller(c).Pause())
	})

	r.Post("/resume", func(c *fiber.Ctx) error {
		return c.JSON(controller(c).Resume())
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		return c.JSON(controller(c).Stop())
	})

	r.Post("/add", func(c *fiber.Ctx) error {
		var body struct {
			DeltaSeconds *int `json:"delta_seconds"`
		}
		if err := c.BodyParser(&body); err != nil || body.DeltaSeconds == nil {
			return fiber.NewError(fiber.StatusBadRequest, "delta_seconds required")
		}
		return c.JSON(controller(c).AddTime(*body.DeltaSeconds))
	})

	r.Post("/set-complete", func(c *fiber.Ctx) error {
		started, state := controller(c).CompleteSet()
		return c.JSON(fiber.Map{"autoStarted": started, "state": state})
	})

	r.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(controller(c).Preferences())
	})

	r.Put("/preferences", func(c *fiber.Ctx) error {
		var patch PreferencesPatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		prefs, err := controller(c).ApplyPreferences(patch)
		switch {
		case errors.Is(err, ErrInvalidDuration):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotPersisted):
			return c.JSON(fiber.Map{"preferences": prefs, "persisted": false})
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"preferences": prefs, "persisted": true})
	})
}
