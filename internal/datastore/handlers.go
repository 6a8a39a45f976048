package datastore

import (
	"errors"

	"github.com/zoonmattau/healthtracker-sub000/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Get("/today", func(c *fiber.Ctx) error {
		return c.JSON(svc.Today(c.Context(), auth.UserID(c)))
	})

	r.Get("/weights", func(c *fiber.Ctx) error {
		return c.JSON(svc.Weights(c.Context(), auth.UserID(c)))
	})

	r.Post("/weights", func(c *fiber.Ctx) error {
		var body struct {
			WeightKg float64 `json:"weightKg"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		entry, err := svc.AddWeight(c.Context(), auth.UserID(c), body.WeightKg)
		return reply(c, fiber.StatusCreated, entry, err)
	})

	r.Get("/sleep", func(c *fiber.Ctx) error {
		return c.JSON(svc.Sleep(c.Context(), auth.UserID(c)))
	})

	r.Get("/sleep/average", func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 7)
		return c.JSON(fiber.Map{"days": days, "averageHours": svc.AverageSleep(c.Context(), auth.UserID(c), days)})
	})

	r.Post("/sleep", func(c *fiber.Ctx) error {
		var in SleepInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		entry, err := svc.AddSleep(c.Context(), auth.UserID(c), in)
		return reply(c, fiber.StatusCreated, entry, err)
	})

	r.Delete("/sleep/:id", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.RemoveSleep(c.Context(), auth.UserID(c), pathID(c)))
	})

	r.Get("/food", func(c *fiber.Ctx) error {
		return c.JSON(svc.TodayFood(c.Context(), auth.UserID(c)))
	})

	r.Get("/food/nutrition", func(c *fiber.Ctx) error {
		return c.JSON(svc.TodayNutrition(c.Context(), auth.UserID(c)))
	})

	r.Post("/food", func(c *fiber.Ctx) error {
		var entry FoodEntry
		if err := c.BodyParser(&entry); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		saved, err := svc.AddFoodEntry(c.Context(), auth.UserID(c), entry)
		return reply(c, fiber.StatusCreated, saved, err)
	})

	r.Delete("/food/:id", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.RemoveFoodEntry(c.Context(), auth.UserID(c), pathID(c)))
	})

	r.Get("/water", func(c *fiber.Ctx) error {
		return c.JSON(svc.Water(c.Context(), auth.UserID(c)))
	})

	r.Post("/water", func(c *fiber.Ctx) error {
		var body struct {
			DeltaMl *int `json:"deltaMl"`
		}
		if err := c.BodyParser(&body); err != nil || body.DeltaMl == nil {
			return fiber.NewError(fiber.StatusBadRequest, "deltaMl required")
		}
		intake, err := svc.AddWater(c.Context(), auth.UserID(c), *body.DeltaMl)
		return reply(c, fiber.StatusOK, intake, err)
	})

	r.Get("/supplements", func(c *fiber.Ctx) error {
		return c.JSON(svc.Supplements(c.Context(), auth.UserID(c)))
	})

	r.Post("/supplements", func(c *fiber.Ctx) error {
		var sup Supplement
		if err := c.BodyParser(&sup); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		saved, err := svc.AddSupplement(c.Context(), auth.UserID(c), sup)
		return reply(c, fiber.StatusCreated, saved, err)
	})

	r.Delete("/supplements/:id", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.RemoveSupplement(c.Context(), auth.UserID(c), pathID(c)))
	})

	r.Post("/supplements/:id/toggle", func(c *fiber.Ctx) error {
		taken, err := svc.ToggleSupplement(c.Context(), auth.UserID(c), pathID(c))
		return reply(c, fiber.StatusOK, fiber.Map{"id": pathID(c), "taken": taken}, err)
	})

	r.Get("/workouts", func(c *fiber.Ctx) error {
		return c.JSON(svc.Workouts(c.Context(), auth.UserID(c)))
	})

	r.Get("/workouts/stats", func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		return c.JSON(fiber.Map{
			"streak":   svc.WorkoutStreak(c.Context(), userID),
			"thisWeek": svc.WorkoutsThisWeek(c.Context(), userID),
		})
	})

	r.Post("/workouts", func(c *fiber.Ctx) error {
		var rec WorkoutRecord
		if err := c.BodyParser(&rec); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		saved, err := svc.SaveWorkout(c.Context(), auth.UserID(c), rec)
		return reply(c, fiber.StatusCreated, saved, err)
	})

	r.Delete("/workouts/:id", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.DeleteWorkout(c.Context(), auth.UserID(c), pathID(c)))
	})

	r.Get("/templates", func(c *fiber.Ctx) error {
		return c.JSON(svc.Templates(c.Context(), auth.UserID(c)))
	})

	r.Post("/templates", func(c *fiber.Ctx) error {
		var t WorkoutTemplate
		if err := c.BodyParser(&t); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t.ID = ""
		saved, err := svc.SaveTemplate(c.Context(), auth.UserID(c), t)
		return reply(c, fiber.StatusCreated, saved, err)
	})

	r.Put("/templates/:id", func(c *fiber.Ctx) error {
		var t WorkoutTemplate
		if err := c.BodyParser(&t); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		t.ID = pathID(c)
		saved, err := svc.SaveTemplate(c.Context(), auth.UserID(c), t)
		return reply(c, fiber.StatusOK, saved, err)
	})

	r.Delete("/templates/:id", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.DeleteTemplate(c.Context(), auth.UserID(c), pathID(c)))
	})

	r.Post("/templates/:id/use", func(c *fiber.Ctx) error {
		draft, err := svc.UseTemplate(c.Context(), auth.UserID(c), pathID(c))
		if err != nil {
			return fiber.NewError(status(err), err.Error())
		}
		return c.JSON(draft)
	})

	r.Get("/programs", func(c *fiber.Ctx) error {
		return c.JSON(svc.Programs())
	})

	r.Get("/program", func(c *fiber.Ctx) error {
		state, ok := svc.ActiveProgram(c.Context(), auth.UserID(c))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, ErrNoActiveProgram.Error())
		}
		return c.JSON(state)
	})

	r.Post("/program", func(c *fiber.Ctx) error {
		var body struct {
			ProgramID string `json:"programId"`
		}
		if err := c.BodyParser(&body); err != nil || body.ProgramID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "programId required")
		}
		state, err := svc.StartProgram(c.Context(), auth.UserID(c), body.ProgramID)
		return reply(c, fiber.StatusCreated, state, err)
	})

	r.Delete("/program", func(c *fiber.Ctx) error {
		return replyEmpty(c, svc.EndProgram(c.Context(), auth.UserID(c)))
	})

	r.Post("/program/complete", func(c *fiber.Ctx) error {
		var body struct {
			Week int `json:"week"`
			Day  int `json:"day"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		state, err := svc.CompleteWorkout(c.Context(), auth.UserID(c), body.Week, body.Day)
		return reply(c, fiber.StatusOK, state, err)
	})

	r.Get("/program/progress", func(c *fiber.Ctx) error {
		return c.JSON(svc.ProgramProgress(c.Context(), auth.UserID(c)))
	})

	r.Get("/goals", func(c *fiber.Ctx) error {
		return c.JSON(svc.Goals(c.Context(), auth.UserID(c)))
	})

	r.Put("/goals", func(c *fiber.Ctx) error {
		var patch GoalsPatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		goals, err := svc.UpdateGoals(c.Context(), auth.UserID(c), patch)
		return reply(c, fiber.StatusOK, goals, err)
	})
}

// pathID copies the :id param; fiber reuses the request buffer behind it
// and ids end up in long-lived snapshot state.
func pathID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

// reply writes a mutation result. A change that only failed to persist is
// still a success, flagged with "persisted": false.
func reply(c *fiber.Ctx, code int, data any, err error) error {
	if err != nil && !errors.Is(err, ErrNotPersisted) {
		return fiber.NewError(status(err), err.Error())
	}
	return c.Status(code).JSON(fiber.Map{"data": data, "persisted": err == nil})
}

func replyEmpty(c *fiber.Ctx, err error) error {
	if err != nil && !errors.Is(err, ErrNotPersisted) {
		return fiber.NewError(status(err), err.Error())
	}
	return c.JSON(fiber.Map{"persisted": err == nil})
}

func status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidEntry):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProgramNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDefaultTemplate):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNoActiveProgram):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
